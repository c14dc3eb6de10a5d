package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gestcom/internal/config"
	"gestcom/internal/infra"
	"gestcom/internal/repository"
	"gestcom/internal/router"
	"gestcom/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// Async workers are wired here (composition root) so that the pool has
	// full access to all infrastructure dependencies: cost allocation jobs,
	// receipt emails and the retry cron for pending allocations.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)

	compraRepo := repository.NewCompraRepository(db)
	creditoRepo := repository.NewCreditoRepository(db)
	recepcionRepo := repository.NewRecepcionRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	movFinRepo := repository.NewMovimientoFinancieroRepository(db)
	movStockRepo := repository.NewMovimientoStockRepository(db)

	handlers := worker.Handlers{
		Prorrateo: worker.NewProrrateoWorker(movFinRepo, compraRepo, recepcionRepo, productoRepo, movStockRepo, rdb),
		Email:     worker.NewEmailWorker(creditoRepo, compraRepo, mailer, rdb, cfg.PDFStoragePath, cfg.EmpresaNombre),
	}
	worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, handlers)

	worker.StartRetryCron(ctx, worker.RetryCronConfig{
		MovFinRepo: movFinRepo,
		Dispatcher: dispatcher,
		Interval:   30 * time.Second,
		BatchSize:  10,
	})

	r := router.New(cfg, db, rdb, mailer)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("GestCom backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
