package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/linemk/fanbase/internal/domain/models"
	"github.com/linemk/fanbase/internal/lib/logger"
	"github.com/linemk/fanbase/internal/storage"
	"github.com/stripe/stripe-go/v81"
)

const (
	eventCheckoutCompleted      stripe.EventType = "checkout.session.completed"
	eventCheckoutAsyncSucceeded stripe.EventType = "checkout.session.async_payment_succeeded"
	eventCheckoutAsyncFailed    stripe.EventType = "checkout.session.async_payment_failed"
	eventCheckoutExpired        stripe.EventType = "checkout.session.expired"
	eventChargeRefunded         stripe.EventType = "charge.refunded"
	eventAccountUpdated         stripe.EventType = "account.updated"
	eventBalanceAvailable       stripe.EventType = "balance.available"
	eventPayoutCreated          stripe.EventType = "payout.created"
	eventPayoutUpdated          stripe.EventType = "payout.updated"
	eventPayoutPaid             stripe.EventType = "payout.paid"
	eventPayoutFailed           stripe.EventType = "payout.failed"
)

// PaymentEventService применяет события платёжного провайдера к заказам,
// подключённым аккаунтам, балансам и выплатам
type PaymentEventService interface {
	HandleEvent(ctx context.Context, event *stripe.Event) error
}

type paymentEventService struct {
	log         *slog.Logger
	orderRepo   storage.OrderStorage
	sellerRepo  storage.SellerStorage
	balanceRepo storage.BalanceStorage
}

func NewPaymentEventService(
	log *slog.Logger,
	orderRepo storage.OrderStorage,
	sellerRepo storage.SellerStorage,
	balanceRepo storage.BalanceStorage,
) PaymentEventService {
	return &paymentEventService{
		log:         log,
		orderRepo:   orderRepo,
		sellerRepo:  sellerRepo,
		balanceRepo: balanceRepo,
	}
}

func (s *paymentEventService) HandleEvent(ctx context.Context, event *stripe.Event) error {
	const op = "service.PaymentEventService.HandleEvent"

	if event == nil {
		return fmt.Errorf("%s: %w: nil event", op, ErrMalformedEvent)
	}

	log := s.log.With(
		slog.String("op", op),
		slog.String("trace_id", uuid.NewString()),
		slog.String("event_id", event.ID),
		slog.String("event_type", string(event.Type)),
	)

	var err error
	switch event.Type {
	case eventCheckoutCompleted, eventCheckoutAsyncSucceeded:
		err = s.handleCheckout(ctx, log, event, models.OrderPaid)
	case eventCheckoutExpired, eventCheckoutAsyncFailed:
		err = s.handleCheckout(ctx, log, event, models.OrderFailed)
	case eventChargeRefunded:
		err = s.handleRefund(ctx, log, event)
	case eventAccountUpdated:
		err = s.handleAccount(ctx, log, event)
	case eventBalanceAvailable:
		err = s.handleBalance(ctx, log, event)
	case eventPayoutCreated, eventPayoutUpdated, eventPayoutPaid, eventPayoutFailed:
		err = s.handlePayout(ctx, log, event)
	default:
		log.Info("unhandled event type")
		return fmt.Errorf("%s: %w: %s", op, ErrUnhandledEvent, event.Type)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *paymentEventService) handleCheckout(ctx context.Context, log *slog.Logger, event *stripe.Event, to models.OrderStatus) error {
	var session stripe.CheckoutSession
	if err := decodeData(event, &session); err != nil {
		return err
	}
	if session.ID == "" {
		return fmt.Errorf("%w: checkout session without id", ErrMalformedEvent)
	}

	// completed приходит и для отложенных способов оплаты с payment_status=unpaid,
	// итог тогда придёт событием async_payment_succeeded/failed
	if to == models.OrderPaid &&
		session.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid &&
		session.PaymentStatus != stripe.CheckoutSessionPaymentStatusNoPaymentRequired {
		log.Info("checkout session not paid yet",
			slog.String("session_id", session.ID),
			slog.String("payment_status", string(session.PaymentStatus)),
		)
		return nil
	}

	order, err := s.orderRepo.GetOrderBySessionID(ctx, session.ID)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			log.Warn("no order for checkout session", slog.String("session_id", session.ID))
			return nil
		}
		return err
	}
	return s.transition(ctx, log, order, to)
}

func (s *paymentEventService) handleRefund(ctx context.Context, log *slog.Logger, event *stripe.Event) error {
	var charge stripe.Charge
	if err := decodeData(event, &charge); err != nil {
		return err
	}

	raw := charge.Metadata["order_id"]
	orderID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Warn("refund without order reference", slog.String("order_id", raw))
		return nil
	}

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			log.Warn("refunded order not found", slog.Int64("order_id", orderID))
			return nil
		}
		return err
	}
	return s.transition(ctx, log, order, models.OrderRefunded)
}

// transition применяет смену статуса. Повтор и недопустимый переход не ошибка:
// провайдер доставляет события повторно и не по порядку
func (s *paymentEventService) transition(ctx context.Context, log *slog.Logger, order *models.Order, to models.OrderStatus) error {
	log = log.With(slog.Int64("order_id", order.ID), slog.String("from", string(order.Status)), slog.String("to", string(to)))

	if order.Status == to {
		log.Debug("order already in target status")
		return nil
	}
	if !order.Status.CanTransition(to) {
		log.Warn("illegal order status transition ignored")
		return nil
	}

	if err := s.orderRepo.UpdateOrderStatus(ctx, order.ID, order.Status, to); err != nil {
		if errors.Is(err, storage.ErrStatusConflict) {
			log.Warn("order status changed concurrently")
			return nil
		}
		log.Error("failed to update order status", logger.Err(err))
		return err
	}

	log.Info("order status updated")
	return nil
}

func (s *paymentEventService) handleAccount(ctx context.Context, log *slog.Logger, event *stripe.Event) error {
	var account stripe.Account
	if err := decodeData(event, &account); err != nil {
		return err
	}
	if account.ID == "" {
		return fmt.Errorf("%w: account without id", ErrMalformedEvent)
	}

	upd := models.ConnectUpdate{
		AccountID:       account.ID,
		Status:          models.ConnectPending,
		ChargesEnabled:  account.ChargesEnabled,
		PayoutsEnabled:  account.PayoutsEnabled,
		RequirementsDue: []string{},
	}
	if account.ChargesEnabled && account.PayoutsEnabled {
		upd.Status = models.ConnectConnected
	}
	if account.Requirements != nil && account.Requirements.CurrentlyDue != nil {
		upd.RequirementsDue = account.Requirements.CurrentlyDue
	}

	if err := s.sellerRepo.UpdateConnect(ctx, upd); err != nil {
		if errors.Is(err, storage.ErrSellerNotFound) {
			log.Warn("no seller for connect account", slog.String("account", account.ID))
			return nil
		}
		log.Error("failed to update connect status", logger.Err(err))
		return err
	}

	log.Info("connect status updated", slog.String("account", account.ID), slog.String("status", string(upd.Status)))
	return nil
}

func (s *paymentEventService) sellerForAccount(ctx context.Context, log *slog.Logger, accountID string) (*models.Seller, error) {
	if accountID == "" {
		log.Warn("event without connected account")
		return nil, nil
	}
	seller, err := s.sellerRepo.GetSellerByConnectAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, storage.ErrSellerNotFound) {
			log.Warn("no seller for connect account", slog.String("account", accountID))
			return nil, nil
		}
		return nil, err
	}
	return seller, nil
}

func (s *paymentEventService) handleBalance(ctx context.Context, log *slog.Logger, event *stripe.Event) error {
	var balance stripe.Balance
	if err := decodeData(event, &balance); err != nil {
		return err
	}

	seller, err := s.sellerForAccount(ctx, log, event.Account)
	if err != nil || seller == nil {
		return err
	}

	// суммируем только в валюте первой записи, остальные валюты не смешиваем
	var currency stripe.Currency
	if len(balance.Available) > 0 && balance.Available[0] != nil {
		currency = balance.Available[0].Currency
	} else if len(balance.Pending) > 0 && balance.Pending[0] != nil {
		currency = balance.Pending[0].Currency
	}

	snapshot := &models.BalanceSnapshot{
		SellerID:  seller.ID,
		Currency:  strings.ToLower(string(currency)),
		UpdatedAt: time.Now().UTC(),
	}
	for _, a := range balance.Available {
		if a != nil && a.Currency == currency {
			snapshot.Available += a.Amount
		}
	}
	for _, a := range balance.Pending {
		if a != nil && a.Currency == currency {
			snapshot.Pending += a.Amount
		}
	}

	if err := s.balanceRepo.UpsertSnapshot(ctx, snapshot); err != nil {
		log.Error("failed to store balance snapshot", logger.Err(err))
		return err
	}

	log.Info("balance snapshot updated",
		slog.Int64("seller_id", seller.ID),
		slog.Int64("available", snapshot.Available),
		slog.Int64("pending", snapshot.Pending),
	)
	return nil
}

func (s *paymentEventService) handlePayout(ctx context.Context, log *slog.Logger, event *stripe.Event) error {
	var p stripe.Payout
	if err := decodeData(event, &p); err != nil {
		return err
	}
	if p.ID == "" {
		return fmt.Errorf("%w: payout without id", ErrMalformedEvent)
	}

	seller, err := s.sellerForAccount(ctx, log, event.Account)
	if err != nil || seller == nil {
		return err
	}

	payout := &models.Payout{
		SellerID:    seller.ID,
		ExternalID:  p.ID,
		Amount:      p.Amount,
		Currency:    strings.ToLower(string(p.Currency)),
		Status:      string(p.Status),
		ArrivalDate: time.Unix(p.ArrivalDate, 0).UTC(),
		CreatedAt:   time.Unix(p.Created, 0).UTC(),
	}
	if err := s.balanceRepo.UpsertPayout(ctx, payout); err != nil {
		log.Error("failed to store payout", logger.Err(err))
		return err
	}

	log.Info("payout stored", slog.Int64("seller_id", seller.ID), slog.String("payout", p.ID), slog.String("status", payout.Status))
	return nil
}

func decodeData(event *stripe.Event, v any) error {
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return fmt.Errorf("%w: empty event data", ErrMalformedEvent)
	}
	if err := json.Unmarshal(event.Data.Raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	return nil
}
