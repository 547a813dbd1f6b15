package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/linemk/fanbase/internal/domain/models"
	"github.com/linemk/fanbase/internal/lib/logger"
	"github.com/linemk/fanbase/internal/lib/money"
	"github.com/linemk/fanbase/internal/payments"
	"github.com/linemk/fanbase/internal/storage"
	"github.com/shopspring/decimal"
)

// ArtistService - профиль артиста и его товары
type ArtistService interface {
	CreateProfile(ctx context.Context, userID int64, in ProfileInput) (*models.Seller, error)
	CreateProduct(ctx context.Context, userID int64, in ProductInput) (*models.Product, error)
	// ConnectAccount создаёт платёжный аккаунт при первом вызове и возвращает ссылку
	// на онбординг. Повторный вызов выдаёт новую ссылку для того же аккаунта
	ConnectAccount(ctx context.Context, userID int64) (*ConnectLink, error)
}

type ConnectLink struct {
	AccountID string `json:"accountId"`
	URL       string `json:"url"`
}

type ProfileInput struct {
	DisplayName string
	Slug        string
	AvatarURL   string
	CoverURL    string
}

type ProductInput struct {
	Title      string
	Type       models.ProductType
	Price      decimal.Decimal
	Visibility models.Visibility
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ValidSlug: 3-32 символа, строчные латинские буквы, цифры и одиночные дефисы
// не в начале и не в конце
func ValidSlug(slug string) bool {
	return len(slug) >= 3 && len(slug) <= 32 && slugPattern.MatchString(slug)
}

type artistService struct {
	log         *slog.Logger
	sellerRepo  storage.SellerStorage
	productRepo storage.ProductStorage
	userRepo    storage.UserStorage
	provider    payments.Provider
}

func NewArtistService(
	log *slog.Logger,
	sellerRepo storage.SellerStorage,
	productRepo storage.ProductStorage,
	userRepo storage.UserStorage,
	provider payments.Provider,
) ArtistService {
	return &artistService{
		log:         log,
		sellerRepo:  sellerRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		provider:    provider,
	}
}

func (s *artistService) CreateProfile(ctx context.Context, userID int64, in ProfileInput) (*models.Seller, error) {
	const op = "service.ArtistService.CreateProfile"
	log := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.String("slug", in.Slug))

	if !ValidSlug(in.Slug) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidSlug)
	}

	seller, err := s.sellerRepo.CreateSeller(ctx, &models.Seller{
		UserID:      userID,
		DisplayName: in.DisplayName,
		Slug:        in.Slug,
		AvatarURL:   in.AvatarURL,
		CoverURL:    in.CoverURL,
	})
	if err != nil {
		log.Warn("failed to create seller profile", logger.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("seller profile created", slog.Int64("sellerID", seller.ID))
	return seller, nil
}

func (s *artistService) CreateProduct(ctx context.Context, userID int64, in ProductInput) (*models.Product, error) {
	const op = "service.ArtistService.CreateProduct"
	log := s.log.With(slog.String("op", op), slog.Int64("userID", userID))

	if !money.ValidPrice(in.Price) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidPrice)
	}
	if in.Type != models.ProductMusic && in.Type != models.ProductVideo {
		return nil, fmt.Errorf("%s: %w: type %q", op, ErrInvalidProduct, in.Type)
	}
	if in.Visibility == "" {
		in.Visibility = models.VisibilityPublic
	}
	if in.Visibility != models.VisibilityPublic && in.Visibility != models.VisibilityPrivate {
		return nil, fmt.Errorf("%s: %w: visibility %q", op, ErrInvalidProduct, in.Visibility)
	}

	seller, err := s.sellerRepo.GetSellerByUserID(ctx, userID)
	if err != nil {
		log.Warn("failed to resolve seller", logger.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	product, err := s.productRepo.CreateProduct(ctx, &models.Product{
		SellerID:   seller.ID,
		Title:      in.Title,
		Type:       in.Type,
		Price:      in.Price,
		Visibility: in.Visibility,
	})
	if err != nil {
		log.Error("failed to create product", logger.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("product created", slog.Int64("productID", product.ID))
	return product, nil
}

func (s *artistService) ConnectAccount(ctx context.Context, userID int64) (*ConnectLink, error) {
	const op = "service.ArtistService.ConnectAccount"
	log := s.log.With(slog.String("op", op), slog.Int64("userID", userID))

	seller, err := s.sellerRepo.GetSellerByUserID(ctx, userID)
	if err != nil {
		log.Warn("failed to resolve seller", logger.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	log = log.With(slog.Int64("sellerID", seller.ID))

	accountID := seller.ConnectAccountID
	if accountID == "" {
		accountID, err = s.createAccount(ctx, log, seller)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	url, err := s.provider.OnboardingLink(ctx, accountID)
	if err != nil {
		log.Error("failed to create onboarding link", logger.Err(err))
		return nil, fmt.Errorf("%s: %w: %w", op, ErrPaymentProvider, err)
	}

	log.Info("onboarding link issued", slog.String("account", accountID))
	return &ConnectLink{AccountID: accountID, URL: url}, nil
}

// createAccount регистрирует аккаунт у провайдера и привязывает его к артисту.
// Если параллельный запрос успел привязать свой аккаунт, используется он
func (s *artistService) createAccount(ctx context.Context, log *slog.Logger, seller *models.Seller) (string, error) {
	user, err := s.userRepo.GetUserByID(ctx, seller.UserID)
	if err != nil {
		log.Error("failed to load seller user", logger.Err(err))
		return "", err
	}

	accountID, err := s.provider.CreateConnectAccount(ctx, user.Email)
	if err != nil {
		log.Error("failed to create connect account", logger.Err(err))
		return "", fmt.Errorf("%w: %w", ErrPaymentProvider, err)
	}

	err = s.sellerRepo.SetConnectAccount(ctx, seller.ID, accountID)
	if errors.Is(err, storage.ErrAccountLinked) {
		current, getErr := s.sellerRepo.GetSellerByID(ctx, seller.ID)
		if getErr != nil {
			return "", getErr
		}
		log.Warn("account linked concurrently, created one left unused",
			slog.String("unused", accountID), slog.String("account", current.ConnectAccountID))
		return current.ConnectAccountID, nil
	}
	if err != nil {
		log.Error("failed to store connect account", logger.Err(err))
		return "", err
	}

	log.Info("connect account created", slog.String("account", accountID))
	return accountID, nil
}
