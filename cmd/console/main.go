package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/abduss/storefront/internal/app"
	"github.com/abduss/storefront/internal/config"
	"github.com/abduss/storefront/internal/logger"
	"github.com/abduss/storefront/internal/metrics"
	"github.com/abduss/storefront/internal/server"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type logNavigator struct {
	logger *zap.Logger
}

func (n logNavigator) Navigate(path string) {
	n.logger.Info("navigate", zap.String("to", path))
}

func (n logNavigator) Redirect(path string) {
	n.logger.Warn("redirect", zap.String("to", path))
}

func main() {
	_ = godotenv.Load()

	logg, err := logger.Init()
	if err != nil {
		panic("init logger: " + err.Error())
	}
	defer logg.Sync()

	cfg, err := config.Load()
	if err != nil {
		logg.Fatal("load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.InitMetrics()

	a, err := app.New(ctx, cfg, logg, logNavigator{logger: logg.Named("navigator")})
	if err != nil {
		logg.Fatal("start storefront client", zap.Error(err))
	}
	defer a.Close()

	router := server.NewRouter(a.Dependencies())

	httpServer := &http.Server{
		Addr:         cfg.Console.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Console.ReadTimeout,
		WriteTimeout: cfg.Console.WriteTimeout,
		IdleTimeout:  cfg.Console.IdleTimeout,
	}

	go func() {
		logg.Info("storefront console listening",
			zap.String("addr", cfg.Console.Address()),
			zap.String("api", a.Gateway.BaseURL()),
			zap.String("store", cfg.Store.Driver),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logg.Info("shutting down gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logg.Error("shutdown error", zap.Error(err))
	}
}
