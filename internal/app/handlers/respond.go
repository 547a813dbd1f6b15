package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/linemk/fanbase/internal/lib/paginate"
	"github.com/linemk/fanbase/internal/service"
	"github.com/linemk/fanbase/internal/storage"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// slug профиля артиста: правила те же, что в сервисе
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return service.ValidSlug(fl.Field().String())
	})
	return v
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response", slog.Any("error", err))
	}
}

// pageParams читает limit и cursor из query. Пустые значения допустимы
func pageParams(r *http.Request) (int, *time.Time, error) {
	q := r.URL.Query()

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, nil, errors.New("invalid limit")
		}
		limit = n
	}

	cursor, err := paginate.ParseCursor(q.Get("cursor"))
	if err != nil {
		return 0, nil, err
	}
	return limit, cursor, nil
}

// errorStatus сопоставляет ошибку сервиса с HTTP-статусом и текстом ответа
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, storage.ErrSellerNotFound):
		return http.StatusNotFound, "seller not found"
	case errors.Is(err, storage.ErrSlugTaken):
		return http.StatusConflict, "slug already taken"
	case errors.Is(err, storage.ErrSellerExists):
		return http.StatusConflict, "seller profile already exists"
	case errors.Is(err, storage.ErrProductNotFound):
		return http.StatusNotFound, "product not found"
	case errors.Is(err, service.ErrPaymentProvider):
		return http.StatusBadGateway, "payment provider unavailable"
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidSlug),
		errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrInvalidProduct):
		return http.StatusBadRequest, "validation error"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
