package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/linemk/fanbase/internal/domain/models"
)

// FollowStorage - подписки фанатов на артистов
type FollowStorage interface {
	// Follow идемпотентен: повторная подписка ничего не меняет
	Follow(ctx context.Context, viewerID, sellerID int64) error
	Unfollow(ctx context.Context, viewerID, sellerID int64) error
	GetFollowsByViewerID(ctx context.Context, viewerID int64) ([]*models.Follow, error)
}

type followRepository struct {
	db *sql.DB
}

func NewFollowRepository(db *sql.DB) FollowStorage {
	return &followRepository{db: db}
}

func (r *followRepository) Follow(ctx context.Context, viewerID, sellerID int64) error {
	query := `INSERT INTO follows (viewer_id, seller_id, created_at) VALUES ($1, $2, NOW())
	          ON CONFLICT (viewer_id, seller_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, viewerID, sellerID); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgForeignKeyViolation {
			return ErrSellerNotFound
		}
		return fmt.Errorf("failed to create follow: %w", err)
	}
	return nil
}

func (r *followRepository) Unfollow(ctx context.Context, viewerID, sellerID int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM follows WHERE viewer_id = $1 AND seller_id = $2", viewerID, sellerID); err != nil {
		return fmt.Errorf("failed to delete follow: %w", err)
	}
	return nil
}

func (r *followRepository) GetFollowsByViewerID(ctx context.Context, viewerID int64) ([]*models.Follow, error) {
	query := "SELECT viewer_id, seller_id, created_at FROM follows WHERE viewer_id = $1 ORDER BY seller_id"
	rows, err := r.db.QueryContext(ctx, query, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query follows: %w", err)
	}
	defer rows.Close()

	var follows []*models.Follow
	for rows.Next() {
		f := &models.Follow{}
		if err := rows.Scan(&f.ViewerID, &f.SellerID, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan follow: %w", err)
		}
		follows = append(follows, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return follows, nil
}
