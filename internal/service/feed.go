package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/linemk/fanbase/internal/domain/models"
	"github.com/linemk/fanbase/internal/lib/logger"
	"github.com/linemk/fanbase/internal/lib/paginate"
	"github.com/linemk/fanbase/internal/storage"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// FeedService - лента публичных товаров артистов, на которых подписан фанат
type FeedService interface {
	// GetFeedPage с viewerID == nil возвращает пустую страницу, а не ошибку
	GetFeedPage(ctx context.Context, viewerID *int64, limit int, cursor *time.Time) (*FeedPage, error)
}

// FeedSeller - данные артиста на момент чтения ленты
type FeedSeller struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"displayName"`
	Slug        string `json:"slug"`
	AvatarURL   string `json:"avatarUrl"`
	CoverURL    string `json:"coverUrl"`
}

type FeedItem struct {
	ID         int64              `json:"id"`
	SellerID   int64              `json:"sellerId"`
	Title      string             `json:"title"`
	Type       models.ProductType `json:"type"`
	Price      decimal.Decimal    `json:"price"`
	Visibility models.Visibility  `json:"visibility"`
	CreatedAt  time.Time          `json:"createdAt"`
	Seller     FeedSeller         `json:"seller"`
}

type FeedPage struct {
	Items      []FeedItem `json:"items"`
	NextCursor *int64     `json:"nextCursor"`
}

func emptyFeedPage() *FeedPage {
	return &FeedPage{Items: []FeedItem{}}
}

type feedService struct {
	log         *slog.Logger
	limits      Limits
	followRepo  storage.FollowStorage
	sellerRepo  storage.SellerStorage
	productRepo storage.ProductStorage
}

func NewFeedService(
	log *slog.Logger,
	limits Limits,
	followRepo storage.FollowStorage,
	sellerRepo storage.SellerStorage,
	productRepo storage.ProductStorage,
) FeedService {
	return &feedService{
		log:         log,
		limits:      limits,
		followRepo:  followRepo,
		sellerRepo:  sellerRepo,
		productRepo: productRepo,
	}
}

func (s *feedService) GetFeedPage(ctx context.Context, viewerID *int64, limit int, cursor *time.Time) (*FeedPage, error) {
	const op = "service.FeedService.GetFeedPage"
	log := s.log.With(slog.String("op", op))

	// анонимный зритель получает пустую ленту
	if viewerID == nil {
		log.Debug("anonymous viewer, empty feed")
		return emptyFeedPage(), nil
	}
	log = log.With(slog.Int64("viewerID", *viewerID))

	follows, err := s.followRepo.GetFollowsByViewerID(ctx, *viewerID)
	if err != nil {
		log.Error("failed to get follows", logger.Err(err))
		return nil, fmt.Errorf("%s: failed to get follows: %w", op, err)
	}
	if len(follows) == 0 {
		return emptyFeedPage(), nil
	}

	sellerIDs := make([]int64, 0, len(follows))
	for _, f := range follows {
		sellerIDs = append(sellerIDs, f.SellerID)
	}

	// артисты и их товары загружаются параллельно, по одному запросу на пачку
	var (
		sellers  map[int64]*models.Seller
		products []*models.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sellers, err = s.sellerRepo.GetSellersByIDs(gctx, sellerIDs)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = s.productRepo.GetProductsBySellerIDs(gctx, sellerIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Error("failed to load feed sources", logger.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	items := make([]FeedItem, 0, len(products))
	dropped := 0
	for _, p := range products {
		if p.Visibility != models.VisibilityPublic {
			continue
		}
		seller, ok := sellers[p.SellerID]
		if !ok {
			dropped++
			continue
		}
		items = append(items, FeedItem{
			ID:         p.ID,
			SellerID:   p.SellerID,
			Title:      p.Title,
			Type:       p.Type,
			Price:      p.Price,
			Visibility: p.Visibility,
			CreatedAt:  p.CreatedAt,
			Seller: FeedSeller{
				ID:          seller.ID,
				DisplayName: seller.DisplayName,
				Slug:        seller.Slug,
				AvatarURL:   seller.AvatarURL,
				CoverURL:    seller.CoverURL,
			},
		})
	}
	if dropped > 0 {
		log.Warn("dropped feed items with missing sellers", slog.Int("dropped", dropped))
	}

	limit = paginate.ClampLimit(limit, s.limits.Default, s.limits.MaxFeed)
	page := paginate.Apply(items, func(i FeedItem) time.Time { return i.CreatedAt }, cursor, limit)

	return &FeedPage{
		Items:      page.Items,
		NextCursor: paginate.Millis(page.NextCursor),
	}, nil
}
