package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/fanbase/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/fanbase/internal/service"
)

// FeedHandler обрабатывает GET /api/feed. Без токена возвращает пустую ленту
func FeedHandler(log *slog.Logger, feedService service.FeedService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.FeedHandler"
		logger := log.With(slog.String("op", op))

		limit, cursor, err := pageParams(r)
		if err != nil {
			logger.Warn("invalid page parameters", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var viewerID *int64
		if id, ok := jwtmiddleware.FromContext(r.Context()); ok {
			viewerID = &id
		}

		page, err := feedService.GetFeedPage(r.Context(), viewerID, limit, cursor)
		if err != nil {
			logger.Error("failed to get feed", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, logger, http.StatusOK, page)
	}
}
