package models

import "time"

// Follow - подписка фаната на артиста, уникальна для пары (viewer, seller)
type Follow struct {
	ViewerID  int64
	SellerID  int64
	CreatedAt time.Time
}
