package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductType - тип цифрового товара
type ProductType string

const (
	ProductMusic ProductType = "music"
	ProductVideo ProductType = "video"
)

// Visibility - видимость товара в ленте
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Product представляет цифровой товар артиста.
// Price хранится в основных единицах валюты (например, 9.99)
type Product struct {
	ID         int64           `json:"id"`
	SellerID   int64           `json:"seller_id"`
	Title      string          `json:"title"`
	Type       ProductType     `json:"type"`
	Price      decimal.Decimal `json:"price"`
	Visibility Visibility      `json:"visibility"`
	CreatedAt  time.Time       `json:"created_at"`
}
