package wishlist

import (
	"context"
	"database/sql"
	"errors"

	"wardrobe-be/internal/db"
	"wardrobe-be/internal/garment"
	"wardrobe-be/internal/logger"
	"wardrobe-be/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Repository interface {
	Add(ctx context.Context, ownerID, garmentID uuid.UUID) error
	Remove(ctx context.Context, ownerID, garmentID uuid.UUID) error
	List(ctx context.Context, ownerID uuid.UUID) ([]*garment.Garment, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) wishlistID(ctx context.Context, ownerID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM wishlists WHERE owner_id = $1`, ownerID,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, ErrWishlistNotFound
	}
	return id, err
}

func (r *repository) Add(ctx context.Context, ownerID, garmentID uuid.UUID) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Add"),
		zap.String("owner_id", ownerID.String()),
		zap.String("garment_id", garmentID.String()),
	)
	defer metrics.StartTimer().ObserveDB("wishlist.add")

	wid, err := r.wishlistID(ctx, ownerID)
	if err != nil {
		return err
	}

	var exists bool
	err = r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM garments WHERE id = $1)`, garmentID,
	).Scan(&exists)
	if err != nil {
		log.Error("failed to check garment", zap.Error(err))
		return err
	}
	if !exists {
		return ErrGarmentNotFound
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO wishlist_items (wishlist_id, garment_id)
		VALUES ($1, $2)
		ON CONFLICT (wishlist_id, garment_id) DO NOTHING`,
		wid, garmentID,
	)
	if db.IsForeignKeyViolation(err) {
		// garment deleted between the check and the insert
		return ErrGarmentNotFound
	}
	if err != nil {
		log.Error("failed to insert wishlist item", zap.Error(err))
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrItemAlreadyExists
	}
	return nil
}

// Remove succeeds whether or not the garment was in the wishlist.
func (r *repository) Remove(ctx context.Context, ownerID, garmentID uuid.UUID) error {
	wid, err := r.wishlistID(ctx, ownerID)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`DELETE FROM wishlist_items WHERE wishlist_id = $1 AND garment_id = $2`,
		wid, garmentID,
	)
	return err
}

func (r *repository) List(ctx context.Context, ownerID uuid.UUID) ([]*garment.Garment, error) {
	defer metrics.StartTimer().ObserveDB("wishlist.list")

	wid, err := r.wishlistID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, garment.SelectWithOwner+`
		JOIN wishlist_items wi ON wi.garment_id = g.id
		WHERE wi.wishlist_id = $1
		ORDER BY wi.added_at DESC, g.id ASC`,
		wid,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	garments := []*garment.Garment{}
	for rows.Next() {
		g, err := garment.ScanWithOwner(rows)
		if err != nil {
			return nil, err
		}
		garments = append(garments, g)
	}
	return garments, rows.Err()
}
