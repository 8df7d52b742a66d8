package kitchen

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"table-order/internal/kitchen/adapter/worker"
	"table-order/internal/kitchen/app/core"
	"table-order/internal/xpkg/apperr"
	"table-order/internal/xpkg/config"
	"table-order/internal/xpkg/logger"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

type params struct {
	workerParams *core.WorkerParams
	configPath   string
	cfg          *config.Config
}

// Execute starts the kitchen worker.
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
	mylog.Action("command_parse_completed").Debug("Received params", "worker_name", params.workerParams.WorkerName, "config_path", params.configPath)

	if err := validateParams(params); err != nil {
		mylog.Action("command_validation_failed").Error("Invalid command received", err)
		return err
	}

	w := worker.NewWorker(params.cfg, params.workerParams, mylog)

	g, gCtx := errgroup.WithContext(newCtx)
	g.Go(func() error {
		return w.Run(gCtx)
	})
	g.Go(func() error {
		<-gCtx.Done()
		return w.Stop(context.Background())
	})
	return g.Wait()
}

func parseParams(args []string) (*params, error) {
	hostname, _ := os.Hostname()

	fs := pflag.NewFlagSet(core.ServiceName, pflag.ContinueOnError)
	showHelp := fs.Bool("help", false, "Show help")
	configPath := fs.String("config-path", "config.yaml", "path for config yaml")
	workerName := fs.String("worker-name", "kitchen-"+hostname, "unique name of this worker")
	prefetch := fs.Int("prefetch", core.DefaultPrefetch, "unacknowledged messages per worker")
	heartbeat := fs.Int("heartbeat-interval", core.DefaultHeartbeatInterval, "seconds between heartbeats")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrParseCmd, err)
	}
	if *showHelp {
		fs.Usage()
		return nil, apperr.ErrHelp
	}

	return &params{
		workerParams: &core.WorkerParams{
			WorkerName:        *workerName,
			Prefetch:          *prefetch,
			HeartbeatInterval: *heartbeat,
		},
		configPath: *configPath,
	}, nil
}

func validateParams(params *params) error {
	wp := params.workerParams
	if wp.WorkerName == "" {
		return errors.New("worker name is required")
	}
	if wp.Prefetch <= 0 {
		return fmt.Errorf("prefetch must be positive: %d", wp.Prefetch)
	}
	if wp.HeartbeatInterval <= 0 {
		return fmt.Errorf("heartbeat interval must be positive: %d", wp.HeartbeatInterval)
	}

	cfg, err := config.LoadConfig(params.configPath)
	if err != nil {
		return err
	}
	params.cfg = cfg
	wp.Workers = cfg.Kitchen.Workers
	wp.CookTime = cfg.Kitchen.CookTime()
	wp.ServeTime = cfg.Kitchen.ServeTime()
	return nil
}
