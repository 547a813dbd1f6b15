package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/linemk/fanbase/internal/service"
	"github.com/stripe/stripe-go/v81"
)

type WebhookResponse struct {
	Message string `json:"message"`
	Event   string `json:"event,omitempty"`
}

// PaymentWebhookHandler обрабатывает POST /api/webhooks/payments.
// Тело ограничено maxBytes. Неизвестные события подтверждаются с 200,
// на ошибки хранилища отвечаем 500, провайдер повторит доставку
func PaymentWebhookHandler(log *slog.Logger, eventService service.PaymentEventService, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.PaymentWebhookHandler"
		logger := log.With(slog.String("op", op))

		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

		var event stripe.Event
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		err := eventService.HandleEvent(r.Context(), &event)
		switch {
		case err == nil:
			writeJSON(w, logger, http.StatusOK, WebhookResponse{Message: "event processed", Event: string(event.Type)})
		case errors.Is(err, service.ErrUnhandledEvent):
			writeJSON(w, logger, http.StatusOK, WebhookResponse{Message: "event type not handled", Event: string(event.Type)})
		case errors.Is(err, service.ErrMalformedEvent):
			logger.Error("malformed event", slog.Any("error", err))
			http.Error(w, "invalid event payload", http.StatusBadRequest)
		default:
			logger.Error("failed to handle event", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
	}
}
