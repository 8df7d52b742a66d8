package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"table-order/internal/ledger/api/http/handle"
	"table-order/internal/ledger/app/core"
	"table-order/internal/ledger/app/services"
	"table-order/internal/xpkg/broker"
	"table-order/internal/xpkg/config"
	xdb "table-order/internal/xpkg/db"
	"table-order/internal/xpkg/feed"
	"table-order/internal/xpkg/logger"

	brokermessage "table-order/internal/ledger/adapter/broker_message"
	database "table-order/internal/ledger/adapter/db"

	"golang.org/x/sync/errgroup"
)

type Server struct {
	mux          *http.ServeMux
	cfg          *config.Config
	srv          *http.Server
	ledgerParams *core.LedgerParams
	mylog        logger.Logger
	db           *xdb.DB
	mb           *broker.RabbitMQ
	mu           sync.Mutex
}

func NewServer(cfg *config.Config, ledgerParams *core.LedgerParams, mylog logger.Logger) *Server {
	return &Server{
		cfg:          cfg,
		ledgerParams: ledgerParams,
		mylog:        mylog,
		mux:          http.NewServeMux(),
	}
}

// Run serves the admin views and keeps them current from the change feed
// until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	mylog := s.mylog.Action("server_started")

	db, err := xdb.Start(ctx, s.cfg.DB, s.mylog)
	if err != nil {
		mylog.Action("db_connection_failed").Error("Failed to connect to database", err)
		return err
	}
	s.db = db
	if err := db.Migrate(ctx); err != nil {
		return err
	}

	mb, err := broker.Dial(ctx, s.cfg.RMQ, 0, s.mylog)
	if err != nil {
		mylog.Action("mb_connection_failed").Error("Failed to connect to message broker", err)
		return err
	}
	s.mb = mb

	messages := brokermessage.New(mb)
	repo := database.NewLedgerRepo(db)
	ledgerService := services.NewLedgerService(repo, messages, s.ledgerParams.Location, s.mylog)
	handle.Register(s.mux, handle.NewLedgerHandler(ledgerService, s.mylog))
	handle.RegisterTracking(s.mux, handle.NewTrackingHandler(services.NewTrackingService(repo, s.mylog), s.mylog))

	events, err := messages.Changes(ctx)
	if err != nil {
		return fmt.Errorf("subscribe to changes: %w", err)
	}
	changes := feed.New(repo, s.mylog)
	ledgerService.OnChange(changes.Kick)

	s.mu.Lock()
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.ledgerParams.Port),
		Handler:           s.mux,
		ReadHeaderTimeout: core.WaitTime * time.Second,
	}
	s.mu.Unlock()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return changes.Run(gCtx, ledgerService.Apply)
	})
	g.Go(func() error {
		return changes.Follow(gCtx, events)
	})
	g.Go(func() error {
		// A failed feed stops the HTTP server too, so the service exits.
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gCtx), core.WaitTime*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		mylog.WithGroup("details").With("port", s.ledgerParams.Port).Info("server is running")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	return g.Wait()
}

func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mylog.Action("graceful_shutdown_started").Info("Shutting down HTTP server...")

	var errs []error
	if s.srv != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, core.WaitTime*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("http server shutdown: %w", err))
		}
	}
	if s.mb != nil {
		if err := s.mb.Close(); err != nil {
			errs = append(errs, fmt.Errorf("mb close: %w", err))
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("db close: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		s.mylog.Action("graceful_shutdown_failed").Error("Failed to shut down cleanly", err)
		return err
	}
	s.mylog.Action("graceful_shutdown_completed").Info("HTTP server shut down gracefully")
	return nil
}
