package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/fanbase/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/fanbase/internal/service"
)

// BalanceHandler обрабатывает GET /api/artist/balance
func BalanceHandler(log *slog.Logger, balanceService service.BalanceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.BalanceHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		summary, err := balanceService.GetBalanceSummary(r.Context(), userID)
		if err != nil {
			logger.Error("failed to get balance summary", slog.Any("error", err))
			status, msg := errorStatus(err)
			http.Error(w, msg, status)
			return
		}

		writeJSON(w, logger, http.StatusOK, summary)
	}
}
