package garment

import (
	"context"
	"database/sql"
	"errors"

	"wardrobe-be/internal/logger"
	"wardrobe-be/internal/metrics"
	"wardrobe-be/internal/user"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// SelectWithOwner selects garments joined with their owner's public profile.
// Rows are read with ScanWithOwner.
const SelectWithOwner = `SELECT g.id, g.owner_id, g.name, g.description, g.size, g.colors, g.price,
	g.category, g.gender, g.type, g.status, g.web, g.image, g.sold_out, g.garment_base,
	g.created_at, g.updated_at, u.name, u.icon
	FROM garments g
	JOIN users u ON u.id = g.owner_id`

type Scanner interface {
	Scan(dest ...any) error
}

func ScanWithOwner(row Scanner) (*Garment, error) {
	var (
		g      Garment
		colors pq.StringArray
		base   uuid.NullUUID
		owner  user.Public
	)
	err := row.Scan(
		&g.ID, &g.OwnerID, &g.Name, &g.Description, &g.Size, &colors, &g.Price,
		&g.Category, &g.Gender, &g.Type, &g.Status, &g.Web, &g.Image, &g.SoldOut, &base,
		&g.CreatedAt, &g.UpdatedAt, &owner.Name, &owner.Icon,
	)
	if err != nil {
		return nil, err
	}

	g.Colors = []string(colors)
	if base.Valid {
		g.GarmentBase = &base.UUID
	}
	owner.ID = g.OwnerID
	g.Owner = &owner
	return &g, nil
}

type Repository interface {
	Create(ctx context.Context, g *Garment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Garment, error)
	List(ctx context.Context, callerID uuid.UUID, f ListFilter) ([]*Garment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, g *Garment) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
		zap.String("owner_id", g.OwnerID.String()),
	)
	defer metrics.StartTimer().ObserveDB("garment.create")

	var base uuid.NullUUID
	if g.GarmentBase != nil {
		base = uuid.NullUUID{UUID: *g.GarmentBase, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO garments (id, owner_id, name, description, size, colors, price,
			category, gender, type, status, web, image, garment_base)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING sold_out, created_at, updated_at`,
		g.ID, g.OwnerID, g.Name, g.Description, g.Size, pq.Array(g.Colors), g.Price,
		g.Category, g.Gender, g.Type, g.Status, g.Web, g.Image, base,
	).Scan(&g.SoldOut, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		log.Error("failed to insert garment", zap.Error(err))
		return err
	}

	log.Info("garment created", zap.String("garment_id", g.ID.String()))
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Garment, error) {
	g, err := ScanWithOwner(r.db.QueryRowContext(ctx, SelectWithOwner+` WHERE g.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGarmentNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to get garment",
			zap.String("garment_id", id.String()),
			zap.Error(err),
		)
		return nil, err
	}
	return g, nil
}

func (r *repository) List(ctx context.Context, callerID uuid.UUID, f ListFilter) ([]*Garment, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
	)
	defer metrics.StartTimer().ObserveDB("garment.list")

	query, args := buildListQuery(callerID, f)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query garments", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	garments := make([]*Garment, 0, f.Limit)
	for rows.Next() {
		g, err := ScanWithOwner(rows)
		if err != nil {
			log.Error("failed to scan garment", zap.Error(err))
			return nil, err
		}
		garments = append(garments, g)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return garments, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM garments WHERE id = $1`, id)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to delete garment",
			zap.String("garment_id", id.String()),
			zap.Error(err),
		)
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrGarmentNotFound
	}
	return nil
}

func (r *repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM garments WHERE id = $1)`, id,
	).Scan(&exists)
	return exists, err
}
