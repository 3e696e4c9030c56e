package wishlist

import (
	"context"
	"errors"

	"wardrobe-be/internal/garment"
	"wardrobe-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service manages the single wishlist each user receives at signup.
type Service interface {
	Add(ctx context.Context, ownerID, garmentID uuid.UUID) error
	Remove(ctx context.Context, ownerID, garmentID uuid.UUID) error
	List(ctx context.Context, ownerID uuid.UUID) ([]*garment.Garment, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Add(ctx context.Context, ownerID, garmentID uuid.UUID) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Add"),
		zap.String("owner_id", ownerID.String()),
		zap.String("garment_id", garmentID.String()),
	)

	if err := s.repo.Add(ctx, ownerID, garmentID); err != nil {
		if isClientError(err) {
			log.Info("wishlist add rejected", zap.Error(err))
		} else {
			log.Error("wishlist add failed", zap.Error(err))
		}
		return err
	}

	log.Info("garment added to wishlist")
	return nil
}

func (s *service) Remove(ctx context.Context, ownerID, garmentID uuid.UUID) error {
	if err := s.repo.Remove(ctx, ownerID, garmentID); err != nil {
		logger.FromCtx(ctx).Warn("wishlist remove failed",
			zap.String("layer", "service"),
			zap.String("owner_id", ownerID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *service) List(ctx context.Context, ownerID uuid.UUID) ([]*garment.Garment, error) {
	return s.repo.List(ctx, ownerID)
}

func isClientError(err error) bool {
	return errors.Is(err, ErrWishlistNotFound) ||
		errors.Is(err, ErrGarmentNotFound) ||
		errors.Is(err, ErrItemAlreadyExists)
}
