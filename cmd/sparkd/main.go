package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/uhyunpark/spark/params"
	"github.com/uhyunpark/spark/pkg/api"
	"github.com/uhyunpark/spark/pkg/format"
	"github.com/uhyunpark/spark/pkg/state"
	"github.com/uhyunpark/spark/pkg/storage"
	"github.com/uhyunpark/spark/pkg/util"
)

func main() {
	// Load config from .env file and environment variables
	cfg := params.LoadFromEnv("") // "" means load from .env in current directory

	logger, err := util.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	logger.Info("logger_initialized", zap.String("log_file", cfg.Log.File))

	// ---- Storage ----
	store, err := storage.Open(cfg.Store)
	if err != nil {
		logger.Fatal("storage_open_failed", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("storage_close_failed", zap.Error(err))
		}
	}()
	logger.Info("storage_opened",
		zap.String("backend", cfg.Store.Backend),
		zap.String("key", cfg.Store.Key))

	codec := state.NewCodec(store, logger, state.WithKey(cfg.Store.Key))

	// Load once at startup; anything unusable means a fresh start.
	if snap, ok := codec.Load(); ok && snap.AccountAddress != nil {
		logger.Info("account_restored", zap.String("address", snap.AccountAddress.Hex()))
	}

	// ---- API Server ----
	apiServer := api.NewServer(codec, format.New(cfg.Format), cfg.API, logger)
	srv := &http.Server{
		Addr:              cfg.API.Addr,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("api_server_starting", zap.String("addr", cfg.API.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api_server_failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("api_shutdown_failed", zap.Error(err))
	}
}
