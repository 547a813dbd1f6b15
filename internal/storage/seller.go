package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/linemk/fanbase/internal/domain/models"
)

// SellerStorage описывает методы для работы с профилями артистов
type SellerStorage interface {
	GetSellerByUserID(ctx context.Context, userID int64) (*models.Seller, error)
	GetSellerByID(ctx context.Context, id int64) (*models.Seller, error)
	GetSellerByConnectAccountID(ctx context.Context, accountID string) (*models.Seller, error)
	// GetSellersByIDs - пакетная выборка, отсутствующие id пропускаются
	GetSellersByIDs(ctx context.Context, ids []int64) (map[int64]*models.Seller, error)
	CreateSeller(ctx context.Context, seller *models.Seller) (*models.Seller, error)
	// SetConnectAccount привязывает созданный у провайдера аккаунт, статус становится pending
	SetConnectAccount(ctx context.Context, sellerID int64, accountID string) error
	// UpdateConnect обновляет статус платёжного аккаунта по его внешнему id
	UpdateConnect(ctx context.Context, upd models.ConnectUpdate) error
}

type sellerRepository struct {
	db *sql.DB
}

func NewSellerRepository(db *sql.DB) SellerStorage {
	return &sellerRepository{db: db}
}

const sellerColumns = `id, user_id, display_name, slug, avatar_url, cover_url, connect_account_id,
	connect_status, charges_enabled, payouts_enabled, requirements_due, created_at`

func scanSeller(row interface{ Scan(...any) error }) (*models.Seller, error) {
	s := &models.Seller{}
	var accountID sql.NullString
	var requirements pq.StringArray
	if err := row.Scan(
		&s.ID, &s.UserID, &s.DisplayName, &s.Slug, &s.AvatarURL, &s.CoverURL, &accountID,
		&s.ConnectStatus, &s.ChargesEnabled, &s.PayoutsEnabled, &requirements, &s.CreatedAt,
	); err != nil {
		return nil, err
	}
	s.ConnectAccountID = accountID.String
	s.RequirementsDue = []string(requirements)
	if s.RequirementsDue == nil {
		s.RequirementsDue = []string{}
	}
	return s, nil
}

func (r *sellerRepository) getOne(ctx context.Context, where string, arg any) (*models.Seller, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+sellerColumns+" FROM sellers WHERE "+where+" = $1", arg)
	seller, err := scanSeller(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSellerNotFound
		}
		return nil, err
	}
	return seller, nil
}

func (r *sellerRepository) GetSellerByUserID(ctx context.Context, userID int64) (*models.Seller, error) {
	return r.getOne(ctx, "user_id", userID)
}

func (r *sellerRepository) GetSellerByID(ctx context.Context, id int64) (*models.Seller, error) {
	return r.getOne(ctx, "id", id)
}

func (r *sellerRepository) GetSellerByConnectAccountID(ctx context.Context, accountID string) (*models.Seller, error) {
	return r.getOne(ctx, "connect_account_id", accountID)
}

func (r *sellerRepository) GetSellersByIDs(ctx context.Context, ids []int64) (map[int64]*models.Seller, error) {
	sellers := make(map[int64]*models.Seller, len(ids))
	if len(ids) == 0 {
		return sellers, nil
	}

	rows, err := r.db.QueryContext(ctx, "SELECT "+sellerColumns+" FROM sellers WHERE id = ANY($1)", pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query sellers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		seller, err := scanSeller(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan seller: %w", err)
		}
		sellers[seller.ID] = seller
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sellers, nil
}

func (r *sellerRepository) CreateSeller(ctx context.Context, seller *models.Seller) (*models.Seller, error) {
	query := `INSERT INTO sellers (user_id, display_name, slug, avatar_url, cover_url, connect_status)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		seller.UserID, seller.DisplayName, seller.Slug, seller.AvatarURL, seller.CoverURL, models.ConnectNotConnected,
	).Scan(&seller.ID, &seller.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			if pqErr.Constraint == "sellers_slug_key" {
				return nil, ErrSlugTaken
			}
			return nil, ErrSellerExists
		}
		return nil, fmt.Errorf("failed to create seller: %w", err)
	}
	seller.ConnectStatus = models.ConnectNotConnected
	if seller.RequirementsDue == nil {
		seller.RequirementsDue = []string{}
	}
	return seller, nil
}

func (r *sellerRepository) SetConnectAccount(ctx context.Context, sellerID int64, accountID string) error {
	// аккаунт привязывается один раз, повторная привязка не перезаписывает существующий
	query := `UPDATE sellers SET connect_account_id = $1, connect_status = $2
	          WHERE id = $3 AND connect_account_id IS NULL`
	res, err := r.db.ExecContext(ctx, query, accountID, models.ConnectPending, sellerID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return ErrAccountLinked
		}
		return fmt.Errorf("failed to set connect account: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAccountLinked
	}
	return nil
}

func (r *sellerRepository) UpdateConnect(ctx context.Context, upd models.ConnectUpdate) error {
	query := `UPDATE sellers
	          SET connect_status = $1, charges_enabled = $2, payouts_enabled = $3, requirements_due = $4
	          WHERE connect_account_id = $5`
	res, err := r.db.ExecContext(ctx, query,
		upd.Status, upd.ChargesEnabled, upd.PayoutsEnabled, pq.Array(upd.RequirementsDue), upd.AccountID,
	)
	if err != nil {
		return fmt.Errorf("failed to update seller connect status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSellerNotFound
	}
	return nil
}
