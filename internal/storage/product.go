package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/linemk/fanbase/internal/domain/models"
)

// ProductStorage описывает методы для работы с товарами артистов
type ProductStorage interface {
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	// GetProductsBySellerID возвращает все товары артиста, включая приватные
	GetProductsBySellerID(ctx context.Context, sellerID int64) ([]*models.Product, error)
	// GetProductsBySellerIDs - товары сразу нескольких артистов одним запросом
	GetProductsBySellerIDs(ctx context.Context, sellerIDs []int64) ([]*models.Product, error)
	// GetProductsByIDs - пакетная выборка, отсутствующие id пропускаются
	GetProductsByIDs(ctx context.Context, ids []int64) (map[int64]*models.Product, error)
}

type productRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) ProductStorage {
	return &productRepository{db: db}
}

const productColumns = "id, seller_id, title, type, price, visibility, created_at"

func (r *productRepository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	query := `INSERT INTO products (seller_id, title, type, price, visibility, created_at)
	          VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		product.SellerID, product.Title, product.Type, product.Price, product.Visibility,
	).Scan(&product.ID, &product.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

func (r *productRepository) GetProductsBySellerID(ctx context.Context, sellerID int64) ([]*models.Product, error) {
	return r.list(ctx, "SELECT "+productColumns+" FROM products WHERE seller_id = $1 ORDER BY id", sellerID)
}

func (r *productRepository) GetProductsBySellerIDs(ctx context.Context, sellerIDs []int64) ([]*models.Product, error) {
	if len(sellerIDs) == 0 {
		return nil, nil
	}
	return r.list(ctx, "SELECT "+productColumns+" FROM products WHERE seller_id = ANY($1) ORDER BY id", pq.Array(sellerIDs))
}

func (r *productRepository) GetProductsByIDs(ctx context.Context, ids []int64) (map[int64]*models.Product, error) {
	products := make(map[int64]*models.Product, len(ids))
	if len(ids) == 0 {
		return products, nil
	}
	list, err := r.list(ctx, "SELECT "+productColumns+" FROM products WHERE id = ANY($1) ORDER BY id", pq.Array(ids))
	if err != nil {
		return nil, err
	}
	for _, p := range list {
		products[p.ID] = p
	}
	return products, nil
}

func (r *productRepository) list(ctx context.Context, query string, arg any) ([]*models.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p := &models.Product{}
		if err := rows.Scan(&p.ID, &p.SellerID, &p.Title, &p.Type, &p.Price, &p.Visibility, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}
