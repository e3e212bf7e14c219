package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	v1 "cht-gateway/cmd/api/router/v1"
	"cht-gateway/internal/infrastructure/config"
	"cht-gateway/internal/infrastructure/logger"
	"cht-gateway/internal/infrastructure/realtime"
	"cht-gateway/internal/infrastructure/security"
	chatController "cht-gateway/internal/pkg/chat/presentation/controller"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "api terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component and blocks until SIGINT/SIGTERM, then shuts down in order:
// stop accepting requests, close live sockets, wait for sessions, release stores.
func run() (int, error) {
	cfg, err := config.Load()
	if err != nil {
		return exitConfig, err
	}

	log, err := logger.New(cfg.LogLevel, cfg.Development())
	if err != nil {
		return exitConfig, fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bootCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	st, err := openStores(bootCtx, cfg, log)
	cancel()
	if err != nil {
		return exitRuntime, err
	}
	defer st.Close()

	tokens, err := security.NewTokenService(security.Options{Secret: []byte(cfg.JWTSecret), TTL: cfg.TokenTTL})
	if err != nil {
		return exitConfig, err
	}

	registry := realtime.NewRegistry(log)

	engine := v1.NewEngine(log)
	socketCtl := v1.RegisterRoutes(engine, v1.Dependencies{
		ChatRepo: st.chat,
		UserRepo: st.users,
		Registry: registry,
		Tokens:   tokens,
		Session: chatController.SessionConfig{
			ReadLimit:   int64(cfg.WSReadLimit),
			ReadTimeout: cfg.WSReadTimeout,
			SendBuffer:  cfg.WSSendBuffer,
		},
		History: chatController.HistoryLimits{Default: cfg.HistoryDefaultLimit, Max: cfg.HistoryMaxLimit},
		Logger:  log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", srv.Addr), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return exitRuntime, fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	// Sessions stop reading, finish the frame in hand, flush and close with 1001.
	socketCtl.Drain()
	if err := socketCtl.Wait(shutdownCtx); err != nil {
		log.Warn("sessions did not drain", zap.Error(err))
		registry.CloseAll(realtime.CloseGoingAway, "server shutdown")
	}
	log.Info("stopped")
	return exitOK, nil
}
