package app

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/linemk/fanbase/internal/app/handlers"
	"github.com/linemk/fanbase/internal/domain/models"
	"github.com/linemk/fanbase/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/fanbase/internal/lib/logger/handlers/urllog"
	"github.com/linemk/fanbase/internal/service"
)

// Services - набор сервисов, которые обслуживает HTTP API
type Services struct {
	Auth         service.AuthServiceInterface
	Balance      service.BalanceService
	Transactions service.TransactionService
	Feed         service.FeedService
	Artist       service.ArtistService
	Follow       service.FollowService
	Checkout     service.CheckoutService
	Payments     service.PaymentEventService
}

// RouterConfig - параметры, которые роутеру нужны из конфига
type RouterConfig struct {
	JWTSecret       string
	WebhookMaxBytes int64
}

func NewRouter(log *slog.Logger, cfg RouterConfig, svc Services) *chi.Mux {
	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	// эндпоинт для аутентификации
	router.Post("/api/auth", handlers.AuthHandler(log, svc.Auth))
	// события платёжного провайдера, без JWT
	router.Post("/api/webhooks/payments", handlers.PaymentWebhookHandler(log, svc.Payments, cfg.WebhookMaxBytes))

	// лента доступна и без токена, тогда она пустая
	router.With(jwtmiddleware.NewOptionalJWTMiddleware(cfg.JWTSecret)).
		Get("/api/feed", handlers.FeedHandler(log, svc.Feed))

	router.Group(func(r chi.Router) {
		r.Use(jwtmiddleware.NewJWTMiddleware(cfg.JWTSecret))

		r.Post("/api/follow/{sellerID}", handlers.FollowHandler(log, svc.Follow))
		r.Delete("/api/follow/{sellerID}", handlers.UnfollowHandler(log, svc.Follow))
		r.Post("/api/checkout", handlers.CheckoutHandler(log, svc.Checkout))

		// кабинет артиста
		r.Route("/api/artist", func(r chi.Router) {
			r.Use(jwtmiddleware.RequireRole(models.RoleArtist))
			r.Get("/balance", handlers.BalanceHandler(log, svc.Balance))
			r.Get("/transactions", handlers.TransactionsHandler(log, svc.Transactions))
			r.Post("/profile", handlers.CreateProfileHandler(log, svc.Artist))
			r.Post("/products", handlers.CreateProductHandler(log, svc.Artist))
			r.Post("/connect", handlers.ConnectAccountHandler(log, svc.Artist))
		})
	})

	return router
}
