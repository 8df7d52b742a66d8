package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"table-order/internal/kitchen"
	"table-order/internal/ledger"
	"table-order/internal/notsub"
	"table-order/internal/order"
	"table-order/internal/xpkg/apperr"
	"table-order/internal/xpkg/logger"

	"github.com/spf13/pflag"
)

type service func(ctx context.Context, mylog logger.Logger, args []string) error

var services = map[string]service{
	"order-service":           order.Execute,
	"os":                      order.Execute,
	"ledger-service":          ledger.Execute,
	"ls":                      ledger.Execute,
	"kitchen-worker":          kitchen.Execute,
	"kw":                      kitchen.Execute,
	"notification-subscriber": notsub.Execute,
	"ns":                      notsub.Execute,
}

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		if errors.Is(err, apperr.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	global, rest := splitGlobal(args)

	fs := pflag.NewFlagSet("table-order", pflag.ContinueOnError)
	mode := fs.String("mode", "", "service to run: order-service (os), ledger-service (ls), kitchen-worker (kw), notification-subscriber (ns)")
	level := fs.String("log-level", os.Getenv("LOG_LEVEL"), "DEBUG, INFO, WARN or ERROR")
	if err := fs.Parse(global); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrParseCmd, err)
	}

	if *mode == "" {
		if hasHelp(rest) {
			printUsage(fs)
			return apperr.ErrHelp
		}
		printUsage(fs)
		return apperr.ErrModeFlag
	}
	svc, ok := services[*mode]
	if !ok {
		return fmt.Errorf("%w: %s", apperr.ErrUnknownService, *mode)
	}

	mylog, err := logger.New(*level)
	if err != nil {
		return err
	}
	return svc(ctx, mylog, rest)
}

// splitGlobal separates the dispatcher flags from the ones handed to the
// selected service.
func splitGlobal(args []string) (global, rest []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case strings.HasPrefix(arg, "--mode="), strings.HasPrefix(arg, "--log-level="):
			global = append(global, arg)
		case (arg == "--mode" || arg == "--log-level") && i+1 < len(args):
			global = append(global, arg, args[i+1])
			i++
		default:
			rest = append(rest, arg)
		}
	}
	return global, rest
}

func hasHelp(args []string) bool {
	for _, a := range args {
		if a == "--help" || a == "-h" {
			return true
		}
	}
	return false
}

func printUsage(fs *pflag.FlagSet) {
	fmt.Fprintln(os.Stderr, "Usage: table-order --mode=<service> [service flags]")
	fs.PrintDefaults()
}
