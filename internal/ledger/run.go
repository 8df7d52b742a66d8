package ledger

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"table-order/internal/ledger/api/http"
	"table-order/internal/ledger/app/core"
	"table-order/internal/xpkg/apperr"
	"table-order/internal/xpkg/config"
	"table-order/internal/xpkg/logger"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

type params struct {
	ledgerParams *core.LedgerParams
	configPath   string
	cfg          *config.Config
}

// Execute starts the ledger service.
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

	server := http.NewServer(params.cfg, params.ledgerParams, mylog)

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
	port := fs.Int("port", core.DefaultPort, "port to run the ledger service")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrParseCmd, err)
	}
	if *showHelp {
		fs.Usage()
		return nil, apperr.ErrHelp
	}

	return &params{
		ledgerParams: &core.LedgerParams{Port: *port},
		configPath:   *configPath,
	}, nil
}

func validateParams(params *params) error {
	cfg, err := config.LoadConfig(params.configPath)
	if err != nil {
		return err
	}
	params.cfg = cfg

	if p := params.ledgerParams.Port; p <= 0 || p >= 65536 {
		return fmt.Errorf("port must be in [1: 65,535]: %d", p)
	}

	loc, err := cfg.Ledger.Location()
	if err != nil {
		return err
	}
	params.ledgerParams.Location = loc
	return nil
}
