package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"tally/internal/audit"
	audithandler "tally/internal/audit/handler"
	auditpostgres "tally/internal/audit/store/postgres"
	catalogstore "tally/internal/catalog/store"
	employeestore "tally/internal/employee/store"
	jwttoken "tally/internal/jwt_token"
	ledgerhandler "tally/internal/ledger/handler"
	ledgerpostgres "tally/internal/ledger/store/postgres"
	ledgerservice "tally/internal/ledger/service"
	"tally/internal/platform/config"
	"tally/internal/platform/httpserver"
	"tally/internal/platform/logger"
	"tally/internal/platform/metrics"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := db.PingContext(pingCtx); err != nil {
		log.Error("failed to reach database", "error", err)
		os.Exit(1)
	}

	m := metrics.New()

	auditStore := auditpostgres.New(db)
	recorder := audit.NewRecorder(auditStore, log, cfg.AuditBuffer, audit.WithMetrics(m))
	auditService := audit.NewService(auditStore)

	purchases := ledgerpostgres.New(db)
	txRunner := ledgerpostgres.NewTxRunner(db)
	products := catalogstore.NewPostgres(db)
	employees := employeestore.NewPostgres(db)

	ledger := ledgerservice.New(purchases, products, employees, txRunner, recorder,
		ledgerservice.WithLogger(log),
		ledgerservice.WithMetrics(m),
	)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "tally")
	jwtValidator := jwttoken.NewJWTServiceAdapter(jwtService)

	router := chi.NewRouter()
	ledgerhandler.New(ledger, log, jwtValidator).Register(router)
	audithandler.New(auditService, log, jwtValidator).Register(router)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return recorder.Run(ctx)
	})

	g.Go(func() error {
		log.Info("starting tally", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	log.Info("tally stopped")
}
