package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/fanbase/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/fanbase/internal/service"
)

// TransactionsHandler обрабатывает GET /api/artist/transactions?limit=&cursor=
func TransactionsHandler(log *slog.Logger, txService service.TransactionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.TransactionsHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		limit, cursor, err := pageParams(r)
		if err != nil {
			logger.Warn("invalid page parameters", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		page, err := txService.GetTransactions(r.Context(), userID, limit, cursor)
		if err != nil {
			logger.Error("failed to get transactions", slog.Any("error", err))
			status, msg := errorStatus(err)
			http.Error(w, msg, status)
			return
		}

		writeJSON(w, logger, http.StatusOK, page)
	}
}
