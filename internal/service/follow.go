package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linemk/fanbase/internal/lib/logger"
	"github.com/linemk/fanbase/internal/storage"
)

// FollowService - подписки на артистов, определяют содержимое ленты
type FollowService interface {
	Follow(ctx context.Context, viewerID, sellerID int64) error
	Unfollow(ctx context.Context, viewerID, sellerID int64) error
}

type followService struct {
	log        *slog.Logger
	followRepo storage.FollowStorage
	sellerRepo storage.SellerStorage
}

func NewFollowService(log *slog.Logger, followRepo storage.FollowStorage, sellerRepo storage.SellerStorage) FollowService {
	return &followService{log: log, followRepo: followRepo, sellerRepo: sellerRepo}
}

func (s *followService) Follow(ctx context.Context, viewerID, sellerID int64) error {
	const op = "service.FollowService.Follow"
	log := s.log.With(slog.String("op", op), slog.Int64("viewerID", viewerID), slog.Int64("sellerID", sellerID))

	// проверяем артиста заранее, чтобы не полагаться на текст ошибки внешнего ключа
	if _, err := s.sellerRepo.GetSellerByID(ctx, sellerID); err != nil {
		log.Warn("seller lookup failed", logger.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.followRepo.Follow(ctx, viewerID, sellerID); err != nil {
		log.Warn("failed to follow", logger.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	log.Info("followed")
	return nil
}

func (s *followService) Unfollow(ctx context.Context, viewerID, sellerID int64) error {
	const op = "service.FollowService.Unfollow"
	log := s.log.With(slog.String("op", op), slog.Int64("viewerID", viewerID), slog.Int64("sellerID", sellerID))

	if err := s.followRepo.Unfollow(ctx, viewerID, sellerID); err != nil {
		log.Error("failed to unfollow", logger.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	log.Info("unfollowed")
	return nil
}
