package notsub

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"table-order/internal/notsub/adapter/consumer"
	"table-order/internal/notsub/app/core"
	"table-order/internal/xpkg/apperr"
	"table-order/internal/xpkg/config"
	"table-order/internal/xpkg/logger"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

type params struct {
	configPath string
	cfg        *config.Config
}

// Execute starts the notification subscriber.
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
	cfg, err := config.LoadConfig(params.configPath)
	if err != nil {
		mylog.Action("config_load_failed").Error("Failed to load config", err)
		return err
	}
	params.cfg = cfg

	n := consumer.NewNotification(params.cfg, mylog)

	g, gCtx := errgroup.WithContext(newCtx)
	g.Go(func() error {
		return n.Run(gCtx)
	})
	g.Go(func() error {
		<-gCtx.Done()
		return n.Stop(context.Background())
	})
	return g.Wait()
}

func parseParams(args []string) (*params, error) {
	fs := pflag.NewFlagSet(core.ServiceName, pflag.ContinueOnError)
	showHelp := fs.Bool("help", false, "Show help")
	configPath := fs.String("config-path", "config.yaml", "path for config yaml")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrParseCmd, err)
	}
	if *showHelp {
		fs.Usage()
		return nil, apperr.ErrHelp
	}
	return &params{configPath: *configPath}, nil
}
