package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/fanbase/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/fanbase/internal/service"
)

// FollowHandler обрабатывает POST /api/follow/{sellerID}
func FollowHandler(log *slog.Logger, followService service.FollowService) http.HandlerFunc {
	return followAction(log.With(slog.String("op", "handlers.FollowHandler")), followService.Follow)
}

// UnfollowHandler обрабатывает DELETE /api/follow/{sellerID}
func UnfollowHandler(log *slog.Logger, followService service.FollowService) http.HandlerFunc {
	return followAction(log.With(slog.String("op", "handlers.UnfollowHandler")), followService.Unfollow)
}

func followAction(logger *slog.Logger, action func(ctx context.Context, viewerID, sellerID int64) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewerID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		sellerID, err := strconv.ParseInt(chi.URLParam(r, "sellerID"), 10, 64)
		if err != nil || sellerID <= 0 {
			logger.Error("invalid seller id", slog.String("sellerID", chi.URLParam(r, "sellerID")))
			http.Error(w, "invalid seller id", http.StatusBadRequest)
			return
		}

		if err := action(r.Context(), viewerID, sellerID); err != nil {
			logger.Error("follow action failed", slog.Any("error", err))
			status, msg := errorStatus(err)
			http.Error(w, msg, status)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
