package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/linemk/fanbase/internal/domain/models"
	"github.com/linemk/fanbase/internal/lib/logger"
	"github.com/linemk/fanbase/internal/lib/money"
	"github.com/linemk/fanbase/internal/lib/paginate"
	"github.com/linemk/fanbase/internal/storage"
)

// TransactionService - история продаж артиста
type TransactionService interface {
	GetTransactions(ctx context.Context, userID int64, limit int, cursor *time.Time) (*TransactionPage, error)
}

type Transaction struct {
	ID               int64              `json:"id"`
	OrderID          int64              `json:"orderId"`
	ProductID        int64              `json:"productId"`
	ProductTitle     string             `json:"productTitle"`
	ProductType      models.ProductType `json:"productType"`
	Amount           int64              `json:"amount"`
	Currency         string             `json:"currency"`
	Status           models.OrderStatus `json:"status"`
	StatusLabel      string             `json:"statusLabel"`
	BuyerDisplayName string             `json:"buyerDisplayName"`
	CreatedAt        time.Time          `json:"createdAt"`
}

type TransactionPage struct {
	Transactions []Transaction `json:"transactions"`
	// NextCursor - миллисекунды Unix, null если страниц больше нет
	NextCursor *int64 `json:"nextCursor"`
}

// StatusLabel - подпись статуса заказа для интерфейса
func StatusLabel(status models.OrderStatus) string {
	switch status {
	case models.OrderPaid:
		return "Completed"
	case models.OrderPending:
		return "Processing"
	case models.OrderFailed:
		return "Failed"
	case models.OrderRefunded:
		return "Refunded"
	default:
		return "Unknown"
	}
}

type transactionService struct {
	log         *slog.Logger
	limits      Limits
	sellerRepo  storage.SellerStorage
	productRepo storage.ProductStorage
	orderRepo   storage.OrderStorage
	userRepo    storage.UserStorage
}

func NewTransactionService(
	log *slog.Logger,
	limits Limits,
	sellerRepo storage.SellerStorage,
	productRepo storage.ProductStorage,
	orderRepo storage.OrderStorage,
	userRepo storage.UserStorage,
) TransactionService {
	return &transactionService{
		log:         log,
		limits:      limits,
		sellerRepo:  sellerRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
	}
}

// GetTransactions возвращает страницу продаж артиста от новых к старым.
// Позиции, у которых не нашёлся заказ, товар или покупатель, молча выбрасываются;
// курсор при этом считается по странице до выбрасывания.
func (s *transactionService) GetTransactions(ctx context.Context, userID int64, limit int, cursor *time.Time) (*TransactionPage, error) {
	const op = "service.TransactionService.GetTransactions"
	log := s.log.With(slog.String("op", op), slog.Int64("userID", userID))

	seller, err := s.sellerRepo.GetSellerByUserID(ctx, userID)
	if err != nil {
		log.Warn("failed to resolve seller", logger.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	products, err := s.productRepo.GetProductsBySellerID(ctx, seller.ID)
	if err != nil {
		log.Error("failed to get products", logger.Err(err))
		return nil, fmt.Errorf("%s: failed to get products: %w", op, err)
	}
	productByID := make(map[int64]*models.Product, len(products))
	productIDs := make([]int64, 0, len(products))
	for _, p := range products {
		productByID[p.ID] = p
		productIDs = append(productIDs, p.ID)
	}

	items, err := s.orderRepo.GetLineItemsByProductIDs(ctx, productIDs)
	if err != nil {
		log.Error("failed to get line items", logger.Err(err))
		return nil, fmt.Errorf("%s: failed to get line items: %w", op, err)
	}

	limit = paginate.ClampLimit(limit, s.limits.Default, s.limits.MaxTransaction)
	page := paginate.Apply(items, func(i *models.OrderLineItem) time.Time { return i.CreatedAt }, cursor, limit)

	orders, err := s.orderRepo.GetOrdersByIDs(ctx, orderIDs(page.Items))
	if err != nil {
		log.Error("failed to get orders", logger.Err(err))
		return nil, fmt.Errorf("%s: failed to get orders: %w", op, err)
	}

	buyerIDs := make([]int64, 0, len(orders))
	for _, o := range orders {
		buyerIDs = append(buyerIDs, o.BuyerID)
	}
	buyers, err := s.userRepo.GetUsersByIDs(ctx, buyerIDs)
	if err != nil {
		log.Error("failed to get buyers", logger.Err(err))
		return nil, fmt.Errorf("%s: failed to get buyers: %w", op, err)
	}

	result := &TransactionPage{
		Transactions: make([]Transaction, 0, len(page.Items)),
		NextCursor:   paginate.Millis(page.NextCursor),
	}
	dropped := 0
	for _, item := range page.Items {
		order, ok := orders[item.OrderID]
		if !ok {
			dropped++
			continue
		}
		product, ok := productByID[item.ProductID]
		if !ok {
			dropped++
			continue
		}
		buyer, ok := buyers[order.BuyerID]
		if !ok {
			dropped++
			continue
		}

		result.Transactions = append(result.Transactions, Transaction{
			ID:               item.ID,
			OrderID:          order.ID,
			ProductID:        product.ID,
			ProductTitle:     product.Title,
			ProductType:      product.Type,
			Amount:           money.ToMinor(item.UnitPrice),
			Currency:         order.Currency,
			Status:           order.Status,
			StatusLabel:      StatusLabel(order.Status),
			BuyerDisplayName: buyer.DisplayName,
			CreatedAt:        item.CreatedAt,
		})
	}
	if dropped > 0 {
		log.Warn("dropped transactions with missing references", slog.Int("dropped", dropped))
	}

	log.Debug("transactions page built", slog.Int("count", len(result.Transactions)))
	return result, nil
}
