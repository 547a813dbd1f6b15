package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linemk/fanbase/internal/domain/models"
)

// BalanceStorage - кэш баланса и выплаты артистов
type BalanceStorage interface {
	GetSnapshot(ctx context.Context, sellerID int64) (*models.BalanceSnapshot, error)
	UpsertSnapshot(ctx context.Context, snapshot *models.BalanceSnapshot) error
	// GetLatestPayout возвращает самую свежую выплату артиста
	GetLatestPayout(ctx context.Context, sellerID int64) (*models.Payout, error)
	UpsertPayout(ctx context.Context, payout *models.Payout) error
}

type balanceRepository struct {
	db *sql.DB
}

func NewBalanceRepository(db *sql.DB) BalanceStorage {
	return &balanceRepository{db: db}
}

func (r *balanceRepository) GetSnapshot(ctx context.Context, sellerID int64) (*models.BalanceSnapshot, error) {
	s := &models.BalanceSnapshot{}
	row := r.db.QueryRowContext(ctx,
		"SELECT seller_id, available, pending, currency, updated_at FROM balance_snapshots WHERE seller_id = $1", sellerID)
	if err := row.Scan(&s.SellerID, &s.Available, &s.Pending, &s.Currency, &s.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *balanceRepository) UpsertSnapshot(ctx context.Context, s *models.BalanceSnapshot) error {
	query := `INSERT INTO balance_snapshots (seller_id, available, pending, currency, updated_at)
	          VALUES ($1, $2, $3, $4, NOW())
	          ON CONFLICT (seller_id) DO UPDATE
	          SET available = EXCLUDED.available, pending = EXCLUDED.pending,
	              currency = EXCLUDED.currency, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, s.SellerID, s.Available, s.Pending, s.Currency); err != nil {
		return fmt.Errorf("failed to upsert balance snapshot: %w", err)
	}
	return nil
}

func (r *balanceRepository) GetLatestPayout(ctx context.Context, sellerID int64) (*models.Payout, error) {
	p := &models.Payout{}
	query := `
		SELECT id, seller_id, external_id, amount, currency, status, arrival_date, created_at
		FROM payouts
		WHERE seller_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`
	row := r.db.QueryRowContext(ctx, query, sellerID)
	if err := row.Scan(&p.ID, &p.SellerID, &p.ExternalID, &p.Amount, &p.Currency, &p.Status, &p.ArrivalDate, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPayoutNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *balanceRepository) UpsertPayout(ctx context.Context, p *models.Payout) error {
	query := `INSERT INTO payouts (seller_id, external_id, amount, currency, status, arrival_date, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          ON CONFLICT (external_id) DO UPDATE
	          SET amount = EXCLUDED.amount, status = EXCLUDED.status, arrival_date = EXCLUDED.arrival_date`
	_, err := r.db.ExecContext(ctx, query, p.SellerID, p.ExternalID, p.Amount, p.Currency, p.Status, p.ArrivalDate, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert payout: %w", err)
	}
	return nil
}
