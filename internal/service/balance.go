package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/linemk/fanbase/internal/domain/models"
	"github.com/linemk/fanbase/internal/lib/logger"
	"github.com/linemk/fanbase/internal/lib/money"
	"github.com/linemk/fanbase/internal/storage"
	"golang.org/x/sync/errgroup"
)

// BalanceService - сводка по балансу артиста
type BalanceService interface {
	GetBalanceSummary(ctx context.Context, userID int64) (*BalanceSummary, error)
}

// BalanceSummary - суммы в минимальных единицах валюты
type BalanceSummary struct {
	ConnectStatus    models.ConnectStatus `json:"connectStatus"`
	ChargesEnabled   bool                 `json:"chargesEnabled"`
	PayoutsEnabled   bool                 `json:"payoutsEnabled"`
	RequirementsDue  []string             `json:"requirementsDue"`
	Currency         string               `json:"currency"`
	AvailableBalance int64                `json:"availableBalance"`
	PendingBalance   int64                `json:"pendingBalance"`
	LastPayout       *PayoutSummary       `json:"lastPayout"`
}

type PayoutSummary struct {
	Amount int64     `json:"amount"`
	Date   time.Time `json:"date"`
	Status string    `json:"status"`
}

type balanceService struct {
	log         *slog.Logger
	currency    string
	sellerRepo  storage.SellerStorage
	productRepo storage.ProductStorage
	orderRepo   storage.OrderStorage
	balanceRepo storage.BalanceStorage
}

// NewBalanceService: currency - валюта площадки, в ней считается баланс без снимка
func NewBalanceService(
	log *slog.Logger,
	currency string,
	sellerRepo storage.SellerStorage,
	productRepo storage.ProductStorage,
	orderRepo storage.OrderStorage,
	balanceRepo storage.BalanceStorage,
) BalanceService {
	return &balanceService{
		log:         log,
		currency:    currency,
		sellerRepo:  sellerRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		balanceRepo: balanceRepo,
	}
}

// GetBalanceSummary возвращает баланс артиста. Если есть снимок баланса от
// провайдера, берутся его значения; иначе доступный баланс считается как сумма
// цен позиций оплаченных заказов, а ожидающий равен нулю.
func (s *balanceService) GetBalanceSummary(ctx context.Context, userID int64) (*BalanceSummary, error) {
	const op = "service.BalanceService.GetBalanceSummary"
	log := s.log.With(slog.String("op", op), slog.Int64("userID", userID))

	seller, err := s.sellerRepo.GetSellerByUserID(ctx, userID)
	if err != nil {
		log.Warn("failed to resolve seller", logger.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var (
		snapshot *models.BalanceSnapshot
		payout   *models.Payout
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snap, err := s.balanceRepo.GetSnapshot(gctx, seller.ID)
		if errors.Is(err, storage.ErrSnapshotNotFound) {
			return nil
		}
		snapshot = snap
		return err
	})
	g.Go(func() error {
		p, err := s.balanceRepo.GetLatestPayout(gctx, seller.ID)
		if errors.Is(err, storage.ErrPayoutNotFound) {
			return nil
		}
		payout = p
		return err
	})
	if err := g.Wait(); err != nil {
		log.Error("failed to load balance data", logger.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	summary := &BalanceSummary{
		ConnectStatus:   seller.ConnectStatus,
		ChargesEnabled:  seller.ChargesEnabled,
		PayoutsEnabled:  seller.PayoutsEnabled,
		RequirementsDue: seller.RequirementsDue,
	}
	if summary.RequirementsDue == nil {
		summary.RequirementsDue = []string{}
	}

	if snapshot != nil {
		summary.Currency = snapshot.Currency
		summary.AvailableBalance = snapshot.Available
		summary.PendingBalance = snapshot.Pending
	} else {
		summary.Currency = s.currency
		available, err := s.paidTotal(ctx, log, seller.ID)
		if err != nil {
			log.Error("failed to compute balance", logger.Err(err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		summary.AvailableBalance = available
	}

	if payout != nil {
		summary.LastPayout = &PayoutSummary{
			Amount: payout.Amount,
			Date:   payout.ArrivalDate,
			Status: payout.Status,
		}
	}
	return summary, nil
}

// paidTotal суммирует цены позиций оплаченных заказов артиста в центах.
// Каждая позиция переводится в центы отдельно, затем суммируется.
// Заказы в другой валюте не учитываются
func (s *balanceService) paidTotal(ctx context.Context, log *slog.Logger, sellerID int64) (int64, error) {
	products, err := s.productRepo.GetProductsBySellerID(ctx, sellerID)
	if err != nil {
		return 0, fmt.Errorf("failed to get products: %w", err)
	}
	productIDs := make([]int64, 0, len(products))
	for _, p := range products {
		productIDs = append(productIDs, p.ID)
	}

	items, err := s.orderRepo.GetLineItemsByProductIDs(ctx, productIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to get line items: %w", err)
	}

	orders, err := s.orderRepo.GetOrdersByIDs(ctx, orderIDs(items))
	if err != nil {
		return 0, fmt.Errorf("failed to get orders: %w", err)
	}

	var (
		total   int64
		dropped int
		foreign int
	)
	for _, item := range items {
		order, ok := orders[item.OrderID]
		if !ok {
			dropped++
			continue
		}
		if order.Status != models.OrderPaid {
			continue
		}
		if !strings.EqualFold(order.Currency, s.currency) {
			foreign++
			continue
		}
		total += money.ToMinor(item.UnitPrice)
	}
	if foreign > 0 {
		log.Warn("paid items in other currencies skipped", slog.Int("skipped", foreign), slog.String("currency", s.currency))
	}
	if dropped > 0 {
		log.Warn("line items reference missing orders", slog.Int("dropped", dropped))
	}
	return total, nil
}

// orderIDs - уникальные id заказов в порядке первого появления
func orderIDs(items []*models.OrderLineItem) []int64 {
	seen := make(map[int64]struct{}, len(items))
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.OrderID]; ok {
			continue
		}
		seen[item.OrderID] = struct{}{}
		ids = append(ids, item.OrderID)
	}
	return ids
}
