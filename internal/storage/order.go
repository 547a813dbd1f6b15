package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/linemk/fanbase/internal/domain/models"
)

// OrderStorage описывает методы для работы с заказами.
// Заказы создаются оформлением покупки, статус меняют события провайдера
type OrderStorage interface {
	// CreateOrder сохраняет заказ и его позиции в одной транзакции.
	// Позиции получают created_at заказа
	CreateOrder(ctx context.Context, order *models.Order, items []*models.OrderLineItem) (*models.Order, error)
	// SetPaymentSession привязывает сессию оплаты к заказу в статусе pending
	SetPaymentSession(ctx context.Context, orderID int64, sessionID string) error
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	GetOrderBySessionID(ctx context.Context, sessionID string) (*models.Order, error)
	// GetOrdersByIDs - пакетная выборка, отсутствующие id пропускаются
	GetOrdersByIDs(ctx context.Context, ids []int64) (map[int64]*models.Order, error)
	// GetLineItemsByProductIDs возвращает все позиции заказов по указанным товарам
	GetLineItemsByProductIDs(ctx context.Context, productIDs []int64) ([]*models.OrderLineItem, error)
	// UpdateOrderStatus меняет статус, только если текущий статус равен from
	UpdateOrderStatus(ctx context.Context, id int64, from, to models.OrderStatus) error
}

// orderRepository - конкретная реализация OrderStorage.
type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт новый репозиторий заказов.
func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

const orderColumns = "id, buyer_id, total, currency, status, payment_session_id, created_at"

func scanOrder(row interface{ Scan(...any) error }) (*models.Order, error) {
	o := &models.Order{}
	var sessionID sql.NullString
	if err := row.Scan(&o.ID, &o.BuyerID, &o.Total, &o.Currency, &o.Status, &sessionID, &o.CreatedAt); err != nil {
		return nil, err
	}
	o.PaymentSessionID = sessionID.String
	return o, nil
}

func (r *orderRepository) CreateOrder(ctx context.Context, order *models.Order, items []*models.OrderLineItem) (_ *models.Order, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `INSERT INTO orders (buyer_id, total, currency, status)
	          VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	if err = tx.QueryRowContext(ctx, query, order.BuyerID, order.Total, order.Currency, order.Status).
		Scan(&order.ID, &order.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	itemQuery := `INSERT INTO order_line_items (order_id, product_id, unit_price, created_at)
	              VALUES ($1, $2, $3, $4) RETURNING id`
	for _, item := range items {
		item.OrderID = order.ID
		item.CreatedAt = order.CreatedAt
		if err = tx.QueryRowContext(ctx, itemQuery, item.OrderID, item.ProductID, item.UnitPrice, item.CreatedAt).
			Scan(&item.ID); err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == pgForeignKeyViolation {
				return nil, ErrProductNotFound
			}
			return nil, fmt.Errorf("failed to insert line item: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}
	return order, nil
}

func (r *orderRepository) SetPaymentSession(ctx context.Context, orderID int64, sessionID string) error {
	query := `UPDATE orders SET payment_session_id = $1 WHERE id = $2 AND status = $3`
	res, err := r.db.ExecContext(ctx, query, sessionID, orderID, models.OrderPending)
	if err != nil {
		return fmt.Errorf("failed to set payment session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrStatusConflict
	}
	return nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	return r.getOne(ctx, "id", id)
}

func (r *orderRepository) GetOrderBySessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	return r.getOne(ctx, "payment_session_id", sessionID)
}

func (r *orderRepository) getOne(ctx context.Context, where string, arg any) (*models.Order, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE "+where+" = $1", arg)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) GetOrdersByIDs(ctx context.Context, ids []int64) (map[int64]*models.Order, error) {
	orders := make(map[int64]*models.Order, len(ids))
	if len(ids) == 0 {
		return orders, nil
	}

	rows, err := r.db.QueryContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = ANY($1)", pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders[order.ID] = order
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) GetLineItemsByProductIDs(ctx context.Context, productIDs []int64) ([]*models.OrderLineItem, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, order_id, product_id, unit_price, created_at
		FROM order_line_items
		WHERE product_id = ANY($1)
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(productIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query line items: %w", err)
	}
	defer rows.Close()

	var items []*models.OrderLineItem
	for rows.Next() {
		item := &models.OrderLineItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.UnitPrice, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *orderRepository) UpdateOrderStatus(ctx context.Context, id int64, from, to models.OrderStatus) error {
	res, err := r.db.ExecContext(ctx, "UPDATE orders SET status = $1 WHERE id = $2 AND status = $3", to, id, from)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrStatusConflict
	}
	return nil
}
