package service

import "github.com/linemk/fanbase/internal/lib/paginate"

// Limits - размеры страниц для списков
type Limits struct {
	Default        int
	MaxTransaction int
	// MaxFeed == 0 - у ленты нет жёсткого предела
	MaxFeed int
}

// DefaultLimits - значения по умолчанию: 20 на страницу, не больше 100 продаж
func DefaultLimits() Limits {
	return Limits{
		Default:        paginate.DefaultLimit,
		MaxTransaction: paginate.MaxTransactionLimit,
	}
}
