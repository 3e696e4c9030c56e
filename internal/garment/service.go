package garment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wardrobe-be/internal/logger"
	"wardrobe-be/internal/storage"
	"wardrobe-be/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, in CreateInput, image *storage.Upload) (*Garment, error)
	Get(ctx context.Context, id uuid.UUID) (*Garment, error)
	List(ctx context.Context, callerID uuid.UUID, f ListFilter) ([]*Garment, error)
	Delete(ctx context.Context, callerID, id uuid.UUID) (*Garment, error)
}

type service struct {
	repo Repository
	disk storage.Disk
}

func NewService(repo Repository, disk storage.Disk) Service {
	return &service{repo: repo, disk: disk}
}

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, in CreateInput, image *storage.Upload) (*Garment, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
		zap.String("owner_id", ownerID.String()),
	)

	in.Name = strings.TrimSpace(in.Name)
	in.Size = strings.TrimSpace(in.Size)
	in.Web = strings.TrimSpace(in.Web)
	for i := range in.Colors {
		in.Colors[i] = strings.TrimSpace(in.Colors[i])
	}

	if err := validation.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if in.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must be a non-negative number", ErrInvalidInput)
	}
	if in.Price.GreaterThan(MaxPrice) {
		return nil, fmt.Errorf("%w: price must be at most %s", ErrInvalidInput, MaxPrice.StringFixed(2))
	}

	if in.GarmentBase != nil {
		ok, err := s.repo.Exists(ctx, *in.GarmentBase)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: garmentBase does not exist", ErrInvalidInput)
		}
	}

	g := &Garment{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Name:        in.Name,
		Description: in.Description,
		Size:        in.Size,
		Colors:      in.Colors,
		Price:       in.Price.Round(2),
		Category:    in.Category,
		Gender:      in.Gender,
		Type:        in.Type,
		Status:      in.Status,
		Web:         in.Web,
		GarmentBase: in.GarmentBase,
	}
	if g.Colors == nil {
		g.Colors = []string{}
	}

	if image != nil {
		path, err := storage.SaveImage(ctx, s.disk, ownerID, image)
		if errors.Is(err, storage.ErrInvalidImage) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		if err != nil {
			log.Error("failed to store image", zap.Error(err))
			return nil, err
		}
		g.Image = path
	}

	if err := s.repo.Create(ctx, g); err != nil {
		s.removeImage(ctx, g.Image)
		return nil, err
	}

	return s.repo.GetByID(ctx, g.ID)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Garment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, callerID uuid.UUID, f ListFilter) ([]*Garment, error) {
	return s.repo.List(ctx, callerID, f)
}

// Delete removes a listing owned by callerID and returns it as it was.
func (s *service) Delete(ctx context.Context, callerID, id uuid.UUID) (*Garment, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Delete"),
		zap.String("garment_id", id.String()),
	)

	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if g.OwnerID != callerID {
		log.Warn("delete rejected: not the owner", zap.String("caller_id", callerID.String()))
		return nil, ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}

	s.removeImage(ctx, g.Image)

	log.Info("garment deleted")
	return g, nil
}

func (s *service) removeImage(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := storage.RemoveByPath(ctx, s.disk, path); err != nil && !errors.Is(err, storage.ErrNotFound) {
		logger.FromCtx(ctx).Warn("failed to remove image", zap.String("path", path), zap.Error(err))
	}
}
