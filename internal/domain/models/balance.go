package models

import "time"

// BalanceSnapshot - кэш баланса артиста, обновляется событиями провайдера.
// Суммы в минимальных единицах валюты (центах)
type BalanceSnapshot struct {
	SellerID  int64
	Available int64
	Pending   int64
	Currency  string
	UpdatedAt time.Time
}

// Payout - выплата артисту
type Payout struct {
	ID          int64
	SellerID    int64
	ExternalID  string
	Amount      int64
	Currency    string
	Status      string
	ArrivalDate time.Time
	CreatedAt   time.Time
}
