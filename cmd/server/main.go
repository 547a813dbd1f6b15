package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/linemk/fanbase/internal/app"
	"github.com/linemk/fanbase/internal/config"
	"github.com/linemk/fanbase/internal/lib/logger"
	"github.com/linemk/fanbase/internal/payments"
	"github.com/linemk/fanbase/internal/service"
	"github.com/linemk/fanbase/internal/storage"
	"github.com/pkg/errors"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	// загружаем объект приложения, конфигом и подключением к БД
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", logger.Err(err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.DB.Close()

	// реализация слоев по работе с БД по каждому направлению
	userRepo := storage.NewUserRepository(application.DB)
	sellerRepo := storage.NewSellerRepository(application.DB)
	productRepo := storage.NewProductRepository(application.DB)
	orderRepo := storage.NewOrderRepository(application.DB)
	followRepo := storage.NewFollowRepository(application.DB)
	balanceRepo := storage.NewBalanceRepository(application.DB)

	// исходящие вызовы провайдера; ключ берётся только из окружения
	if cfg.Payments.SecretKey == "" {
		log.Warn("STRIPE_SECRET_KEY is not set, checkout and artist onboarding will fail")
	}
	provider := payments.NewStripeProvider(payments.Config{
		SecretKey:  cfg.Payments.SecretKey,
		SuccessURL: cfg.Payments.CheckoutSuccessURL,
		CancelURL:  cfg.Payments.CheckoutCancelURL,
		ReturnURL:  cfg.Payments.ConnectReturnURL,
		RefreshURL: cfg.Payments.ConnectRefreshURL,
	}, nil)

	limits := service.Limits{
		Default:        cfg.Pagination.DefaultLimit,
		MaxTransaction: cfg.Pagination.MaxTransactionLimit,
		MaxFeed:        cfg.Pagination.MaxFeedLimit,
	}

	services := app.Services{
		Auth:         service.NewAuthService(log, userRepo, time.Duration(cfg.JWT.TokenTTL)*time.Minute, cfg.JWT.Secret),
		Balance:      service.NewBalanceService(log, cfg.Payments.Currency, sellerRepo, productRepo, orderRepo, balanceRepo),
		Transactions: service.NewTransactionService(log, limits, sellerRepo, productRepo, orderRepo, userRepo),
		Feed:         service.NewFeedService(log, limits, followRepo, sellerRepo, productRepo),
		Artist:       service.NewArtistService(log, sellerRepo, productRepo, userRepo, provider),
		Follow:       service.NewFollowService(log, followRepo, sellerRepo),
		Checkout:     service.NewCheckoutService(log, cfg.Payments.Currency, userRepo, productRepo, orderRepo, provider),
		Payments:     service.NewPaymentEventService(log, orderRepo, sellerRepo, balanceRepo),
	}

	router := app.NewRouter(log, app.RouterConfig{
		JWTSecret:       cfg.JWT.Secret,
		WebhookMaxBytes: cfg.Payments.WebhookMaxBytes,
	}, services)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", logger.Err(err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", logger.Err(err))
	}
	log.Info("server gracefully stopped")
}
