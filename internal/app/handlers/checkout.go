package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/linemk/fanbase/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/fanbase/internal/service"
)

type CheckoutRequest struct {
	ProductIDs []int64 `json:"product_ids" validate:"required,min=1,max=50,dive,gt=0"`
}

// CheckoutHandler обрабатывает POST /api/checkout.
// Возвращает адрес страницы оплаты, заказ остаётся pending до события провайдера
func CheckoutHandler(log *slog.Logger, checkoutService service.CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CheckoutHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req CheckoutRequest
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

		res, err := checkoutService.Checkout(r.Context(), userID, req.ProductIDs)
		if err != nil {
			logger.Error("checkout failed", slog.Any("error", err))
			status, msg := errorStatus(err)
			http.Error(w, msg, status)
			return
		}

		writeJSON(w, logger, http.StatusCreated, res)
	}
}
