package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/linemk/fanbase/internal/domain/models"
	"github.com/linemk/fanbase/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/fanbase/internal/service"
	"github.com/shopspring/decimal"
)

type ProfileRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=64"`
	Slug        string `json:"slug" validate:"required,slug"`
	AvatarURL   string `json:"avatar_url" validate:"omitempty,url"`
	CoverURL    string `json:"cover_url" validate:"omitempty,url"`
}

type ProductRequest struct {
	Title      string           `json:"title" validate:"required,max=200"`
	Type       string           `json:"type" validate:"required,oneof=music video"`
	Price      *decimal.Decimal `json:"price" validate:"required"`
	Visibility string           `json:"visibility" validate:"omitempty,oneof=public private"`
}

// CreateProfileHandler обрабатывает POST /api/artist/profile
func CreateProfileHandler(log *slog.Logger, artistService service.ArtistService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateProfileHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req ProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			http.Error(w, "validation error", http.StatusBadRequest)
			return
		}

		seller, err := artistService.CreateProfile(r.Context(), userID, service.ProfileInput{
			DisplayName: req.DisplayName,
			Slug:        req.Slug,
			AvatarURL:   req.AvatarURL,
			CoverURL:    req.CoverURL,
		})
		if err != nil {
			logger.Error("failed to create profile", slog.Any("error", err))
			status, msg := errorStatus(err)
			http.Error(w, msg, status)
			return
		}

		writeJSON(w, logger, http.StatusCreated, seller)
	}
}

// CreateProductHandler обрабатывает POST /api/artist/products
func CreateProductHandler(log *slog.Logger, artistService service.ArtistService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateProductHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req ProductRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			http.Error(w, "validation error", http.StatusBadRequest)
			return
		}

		product, err := artistService.CreateProduct(r.Context(), userID, service.ProductInput{
			Title:      req.Title,
			Type:       models.ProductType(req.Type),
			Price:      *req.Price,
			Visibility: models.Visibility(req.Visibility),
		})
		if err != nil {
			logger.Error("failed to create product", slog.Any("error", err))
			status, msg := errorStatus(err)
			http.Error(w, msg, status)
			return
		}

		writeJSON(w, logger, http.StatusCreated, product)
	}
}

// ConnectAccountHandler обрабатывает POST /api/artist/connect
func ConnectAccountHandler(log *slog.Logger, artistService service.ArtistService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ConnectAccountHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		link, err := artistService.ConnectAccount(r.Context(), userID)
		if err != nil {
			logger.Error("failed to connect account", slog.Any("error", err))
			status, msg := errorStatus(err)
			http.Error(w, msg, status)
			return
		}

		writeJSON(w, logger, http.StatusOK, link)
	}
}
