// Package paginate реализует курсорную пагинацию по времени создания:
// страницы идут от новых к старым, курсор - время создания последнего
// возвращённого элемента.
package paginate

import (
	"errors"
	"slices"
	"strconv"
	"time"
)

const (
	// DefaultLimit - размер страницы, если limit не задан
	DefaultLimit = 20
	// MaxTransactionLimit - жёсткий предел для списка продаж артиста
	MaxTransactionLimit = 100
)

var ErrInvalidCursor = errors.New("invalid cursor")

// Page - одна страница результата. NextCursor == nil означает, что страниц больше нет
type Page[T any] struct {
	Items      []T
	NextCursor *time.Time
}

// ClampLimit приводит limit к допустимому значению: неположительный limit
// заменяется на def, превышающий max молча обрезается (def тоже). max <= 0 - без предела
func ClampLimit(limit, def, max int) int {
	if limit <= 0 {
		limit = def
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if max > 0 && limit > max {
		return max
	}
	return limit
}

// Apply отбирает элементы строго старше курсора, сортирует их по убыванию
// времени создания и возвращает первые limit элементов.
// Элементы с временем, равным курсору, на следующую страницу не попадают.
func Apply[T any](items []T, createdAt func(T) time.Time, cursor *time.Time, limit int) Page[T] {
	if limit <= 0 {
		limit = DefaultLimit
	}

	filtered := make([]T, 0, len(items))
	for _, item := range items {
		if cursor != nil && !createdAt(item).Before(*cursor) {
			continue
		}
		filtered = append(filtered, item)
	}

	slices.SortStableFunc(filtered, func(a, b T) int {
		return createdAt(b).Compare(createdAt(a))
	})

	// берём limit+1: лишний элемент говорит о наличии следующей страницы
	if len(filtered) < limit+1 {
		return Page[T]{Items: filtered}
	}
	filtered = filtered[:limit]
	next := createdAt(filtered[limit-1])
	return Page[T]{Items: filtered, NextCursor: &next}
}

// ParseCursor разбирает курсор из query-параметра (миллисекунды Unix).
// Пустая строка - начать с самых новых
func ParseCursor(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ms < 0 {
		return nil, ErrInvalidCursor
	}
	t := time.UnixMilli(ms).UTC()
	return &t, nil
}

// Millis переводит курсор в формат ответа
func Millis(cursor *time.Time) *int64 {
	if cursor == nil {
		return nil
	}
	ms := cursor.UnixMilli()
	return &ms
}
