package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus - статус заказа в жизненном цикле оплаты
type OrderStatus string

const (
	OrderPending  OrderStatus = "pending"
	OrderPaid     OrderStatus = "paid"
	OrderFailed   OrderStatus = "failed"
	OrderRefunded OrderStatus = "refunded"
)

// CanTransition проверяет допустимость перехода статуса:
// pending -> paid|failed, paid -> refunded
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	switch s {
	case OrderPending:
		return next == OrderPaid || next == OrderFailed
	case OrderPaid:
		return next == OrderRefunded
	}
	return false
}

// Order представляет одну оплату (checkout) покупателя
type Order struct {
	ID               int64           `json:"id"`
	BuyerID          int64           `json:"buyer_id"`
	Total            decimal.Decimal `json:"total"`
	Currency         string          `json:"currency"`
	Status           OrderStatus     `json:"status"`
	PaymentSessionID string          `json:"payment_session_id"`
	CreatedAt        time.Time       `json:"created_at"`
}

// OrderLineItem - купленный товар внутри заказа.
// CreatedAt копируется из заказа в момент покупки и служит ключом сортировки
type OrderLineItem struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order_id"`
	ProductID int64           `json:"product_id"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	CreatedAt time.Time       `json:"created_at"`
}
