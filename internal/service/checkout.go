package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linemk/fanbase/internal/domain/models"
	"github.com/linemk/fanbase/internal/lib/logger"
	"github.com/linemk/fanbase/internal/lib/money"
	"github.com/linemk/fanbase/internal/payments"
	"github.com/linemk/fanbase/internal/storage"
	"github.com/shopspring/decimal"
)

// CheckoutService оформляет покупку: создаёт заказ в статусе pending и сессию оплаты.
// Дальше заказ ведут события провайдера
type CheckoutService interface {
	Checkout(ctx context.Context, buyerID int64, productIDs []int64) (*CheckoutResult, error)
}

type CheckoutResult struct {
	OrderID   int64  `json:"orderId"`
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
	Total     int64  `json:"total"`
	Currency  string `json:"currency"`
}

type checkoutService struct {
	log         *slog.Logger
	currency    string
	userRepo    storage.UserStorage
	productRepo storage.ProductStorage
	orderRepo   storage.OrderStorage
	provider    payments.Provider
}

func NewCheckoutService(
	log *slog.Logger,
	currency string,
	userRepo storage.UserStorage,
	productRepo storage.ProductStorage,
	orderRepo storage.OrderStorage,
	provider payments.Provider,
) CheckoutService {
	return &checkoutService{
		log:         log,
		currency:    currency,
		userRepo:    userRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		provider:    provider,
	}
}

func (s *checkoutService) Checkout(ctx context.Context, buyerID int64, productIDs []int64) (*CheckoutResult, error) {
	const op = "service.CheckoutService.Checkout"
	log := s.log.With(slog.String("op", op), slog.Int64("buyerID", buyerID))

	ids := uniqueIDs(productIDs)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyCart)
	}

	buyer, err := s.userRepo.GetUserByID(ctx, buyerID)
	if err != nil {
		log.Error("failed to load buyer", logger.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	products, err := s.productRepo.GetProductsByIDs(ctx, ids)
	if err != nil {
		log.Error("failed to load products", logger.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var (
		total    = decimal.Zero
		minor    int64
		items    = make([]*models.OrderLineItem, 0, len(ids))
		payItems = make([]payments.LineItem, 0, len(ids))
	)
	for _, id := range ids {
		p, ok := products[id]
		// скрытые товары не продаются, как и отсутствующие
		if !ok || p.Visibility != models.VisibilityPublic {
			log.Warn("product not available", slog.Int64("productID", id))
			return nil, fmt.Errorf("%s: %w: id %d", op, storage.ErrProductNotFound, id)
		}
		total = total.Add(p.Price)
		minor += money.ToMinor(p.Price)
		items = append(items, &models.OrderLineItem{ProductID: p.ID, UnitPrice: p.Price})
		payItems = append(payItems, payments.LineItem{Name: p.Title, UnitAmount: money.ToMinor(p.Price)})
	}

	order, err := s.orderRepo.CreateOrder(ctx, &models.Order{
		BuyerID:  buyerID,
		Total:    total,
		Currency: s.currency,
		Status:   models.OrderPending,
	}, items)
	if err != nil {
		log.Error("failed to create order", logger.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	log = log.With(slog.Int64("order_id", order.ID))

	sess, err := s.provider.CreateCheckoutSession(ctx, payments.CheckoutRequest{
		OrderID:       order.ID,
		Currency:      s.currency,
		CustomerEmail: buyer.Email,
		Items:         payItems,
	})
	if err != nil {
		log.Error("failed to create checkout session", logger.Err(err))
		// без сессии заказ не может быть оплачен
		if updErr := s.orderRepo.UpdateOrderStatus(ctx, order.ID, models.OrderPending, models.OrderFailed); updErr != nil {
			log.Error("failed to mark order failed", logger.Err(updErr))
		}
		return nil, fmt.Errorf("%s: %w: %w", op, ErrPaymentProvider, err)
	}

	if err := s.orderRepo.SetPaymentSession(ctx, order.ID, sess.ID); err != nil {
		log.Error("failed to attach payment session", logger.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("checkout started", slog.String("session", sess.ID), slog.Int("items", len(items)))
	return &CheckoutResult{
		OrderID:   order.ID,
		SessionID: sess.ID,
		URL:       sess.URL,
		Total:     minor,
		Currency:  s.currency,
	}, nil
}

// uniqueIDs убирает повторы и непозитивные id, сохраняя порядок
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	res := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		res = append(res, id)
	}
	return res
}
