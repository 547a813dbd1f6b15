package storage

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("user already exists")
	ErrSellerNotFound   = errors.New("seller not found")
	ErrSellerExists     = errors.New("seller profile already exists")
	ErrSlugTaken        = errors.New("slug already taken")
	ErrAccountLinked    = errors.New("payment account already linked")
	ErrProductNotFound  = errors.New("product not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrStatusConflict   = errors.New("order status changed concurrently")
	ErrSnapshotNotFound = errors.New("balance snapshot not found")
	ErrPayoutNotFound   = errors.New("payout not found")
)

// коды ошибок postgres
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)
