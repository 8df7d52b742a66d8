package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"table-order/internal/order/api/http/handle"
	"table-order/internal/order/app/core"
	"table-order/internal/order/app/services"
	"table-order/internal/xpkg/broker"
	"table-order/internal/xpkg/config"
	xdb "table-order/internal/xpkg/db"
	"table-order/internal/xpkg/logger"
	"table-order/internal/xpkg/models"

	brokermessage "table-order/internal/order/adapter/broker_message"
	database "table-order/internal/order/adapter/db"
	"table-order/internal/order/adapter/payment"
)

var ErrServerClosed = errors.New("Server closed")

type Server struct {
	mux         *http.ServeMux
	cfg         *config.Config
	srv         *http.Server
	orderParams *core.OrderParams
	seed        []models.MenuItem
	mylog       logger.Logger
	db          *xdb.DB
	mb          *broker.RabbitMQ
	mu          sync.Mutex
}

func NewServer(cfg *config.Config, orderParams *core.OrderParams, seed []models.MenuItem, mylog logger.Logger) *Server {
	return &Server{
		cfg:         cfg,
		orderParams: orderParams,
		seed:        seed,
		mylog:       mylog,
		mux:         http.NewServeMux(),
	}
}

// Run connects to the database and broker, registers routes and serves
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

	if err := s.Configure(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.orderParams.Port),
		Handler:           s.mux,
		ReadHeaderTimeout: core.WaitTime * time.Second,
	}
	s.mu.Unlock()

	if ctx.Err() != nil {
		return nil
	}
	mylog.WithGroup("details").With("port", s.orderParams.Port).Info("server is running")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Configure wires repositories, services and handlers.
func (s *Server) Configure(ctx context.Context) error {
	orderRepo := database.NewOrderRepo(s.db)
	messages := brokermessage.New(s.mb)
	upi := payment.NewUPI(s.mb, s.cfg.Payment)

	orderService := services.NewOrderService(orderRepo, messages, s.mylog)
	if len(s.seed) > 0 {
		if err := orderService.SeedMenu(ctx, s.seed); err != nil {
			return err
		}
	}
	engine := services.NewCheckoutEngine(orderRepo, messages, upi, s.orderParams.ConfirmWait, s.mylog)

	handle.Register(s.mux,
		handle.NewCartHandler(services.NewCarts(), engine, orderService, s.mylog),
		handle.NewOrderHandler(orderService, s.mylog),
	)
	return nil
}

// Stop shuts the HTTP server down and closes the connections.
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
