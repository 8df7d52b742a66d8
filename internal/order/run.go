package order

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"table-order/internal/order/api/http"
	"table-order/internal/order/app/core"
	"table-order/internal/xpkg/apperr"
	"table-order/internal/xpkg/config"
	"table-order/internal/xpkg/logger"
	"table-order/internal/xpkg/models"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

type params struct {
	orderParams *core.OrderParams
	configPath  string
	cfg         *config.Config
	seed        []models.MenuItem
}

// Execute starts the order service.
func Execute(ctx context.Context, mylog logger.Logger, args []string) error {
	newCtx, stop := signal.NotifyContext(ctx, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mylog = mylog.With("service", core.ServiceName)

	params, err := parseParams(args)
	if err != nil {
		if !errors.Is(err, apperr.ErrHelp) {
			mylog.Action("command_parse_failed").Error("Invalid command received", err)
		}
		return err
	}
	if err = validateParams(params); err != nil {
		mylog.Action("command_validation_failed").Error("Invalid command received", err)
		return err
	}
	mylog.Action("command_validation_completed").Info("Successfully validate params")

	server := http.NewServer(params.cfg, params.orderParams, params.seed, mylog)

	g, gCtx := errgroup.WithContext(newCtx)
	g.Go(func() error {
		return server.Run(gCtx)
	})
	g.Go(func() error {
		<-gCtx.Done()
		mylog.Action("shutdown_signal_received").Info("Shutdown signal received")
		return server.Stop(context.Background())
	})
	return g.Wait()
}

func parseParams(args []string) (*params, error) {
	fs := pflag.NewFlagSet(core.ServiceName, pflag.ContinueOnError)
	showHelp := fs.Bool("help", false, "Show help")
	configPath := fs.String("config-path", "config.yaml", "path for config yaml")
	seedMenu := fs.String("seed-menu", "", "yaml file with menu items to upsert on start")
	port := fs.Int("port", core.DefaultPort, "port to run the order service")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrParseCmd, err)
	}
	if *showHelp {
		fs.Usage()
		return nil, apperr.ErrHelp
	}

	return &params{
		orderParams: &core.OrderParams{
			Port:     *port,
			SeedMenu: *seedMenu,
		},
		configPath: *configPath,
	}, nil
}

func validateParams(params *params) error {
	cfg, err := config.LoadConfig(params.configPath)
	if err != nil {
		return err
	}
	params.cfg = cfg
	params.orderParams.ConfirmWait = cfg.Payment.ConfirmWait()

	if p := params.orderParams.Port; p <= 0 || p >= 65536 {
		return fmt.Errorf("port must be in [1: 65,535]: %d", p)
	}

	if params.orderParams.SeedMenu != "" {
		seed, err := loadMenu(params.orderParams.SeedMenu)
		if err != nil {
			return err
		}
		params.seed = seed
	}
	return nil
}

type menuFile struct {
	Items []models.MenuItem `yaml:"items"`
}

func loadMenu(path string) ([]models.MenuItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read menu %s: %w", path, err)
	}
	return parseMenu(data)
}

func parseMenu(data []byte) ([]models.MenuItem, error) {
	var f menuFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse menu: %w", err)
	}
	for i, it := range f.Items {
		if it.ID == "" || it.Name == "" {
			return nil, fmt.Errorf("menu item %d: id and name are required", i)
		}
		if it.Price < 0 || it.Stock < 0 {
			return nil, fmt.Errorf("menu item %s: price and stock must not be negative", it.ID)
		}
	}
	return f.Items, nil
}
