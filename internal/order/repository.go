package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"wardrobe-be/internal/db"
	"wardrobe-be/internal/garment"
	"wardrobe-be/internal/logger"
	"wardrobe-be/internal/metrics"
	"wardrobe-be/internal/user"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	// CreateOrderTx persists the order and its items and marks the referenced
	// second-hand garments sold, all in one transaction. It returns how many
	// garments were marked sold.
	CreateOrderTx(ctx context.Context, order *Order, items []LineItem) (int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Order, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const orderColumns = `id, owner_id, date, total_price, created_at, updated_at`

func uuidArray(ids []uuid.UUID) any {
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}
	return pq.Array(strs)
}

func distinctGarments(items []LineItem) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.GarmentID]; ok {
			continue
		}
		seen[it.GarmentID] = struct{}{}
		ids = append(ids, it.GarmentID)
	}
	return ids
}

// rejected maps postgres range failures to a client error.
func rejected(err error) error {
	if db.IsNumericOutOfRange(err) {
		return fmt.Errorf("%w: value out of range", ErrInvalidLineItems)
	}
	return err
}

func (r *repository) CreateOrderTx(ctx context.Context, order *Order, items []LineItem) (int, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateOrderTx"),
		zap.String("order_id", order.ID.String()),
	)
	defer metrics.StartTimer().ObserveDB("order.create")

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return 0, err
	}
	defer tx.Rollback()

	// 1. Lock every referenced garment and check it can be sold.
	ids := distinctGarments(items)
	rows, err := tx.QueryContext(ctx,
		`SELECT id, type, sold_out FROM garments WHERE id = ANY($1::uuid[]) FOR UPDATE`,
		uuidArray(ids),
	)
	if err != nil {
		log.Error("failed to lock garments", zap.Error(err))
		return 0, err
	}

	type lockedGarment struct {
		kind    string
		soldOut bool
	}
	locked := make(map[uuid.UUID]lockedGarment, len(ids))
	for rows.Next() {
		var (
			id uuid.UUID
			g  lockedGarment
		)
		if err := rows.Scan(&id, &g.kind, &g.soldOut); err != nil {
			rows.Close()
			return 0, err
		}
		locked[id] = g
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, err
	}
	rows.Close()

	var secondHand []uuid.UUID
	for _, id := range ids {
		g, ok := locked[id]
		if !ok {
			log.Info("order rejected: unknown garment", zap.String("garment_id", id.String()))
			return 0, fmt.Errorf("%w: %s", ErrGarmentNotFound, id)
		}
		if g.kind != garment.TypeSecondHand {
			continue
		}
		if g.soldOut {
			log.Info("order rejected: garment sold out", zap.String("garment_id", id.String()))
			return 0, fmt.Errorf("%w: %s", ErrGarmentSoldOut, id)
		}
		secondHand = append(secondHand, id)
	}

	// 2. Order header.
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (id, owner_id, date, total_price)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`,
		order.ID, order.OwnerID, order.Date, order.TotalPrice,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return 0, rejected(err)
	}

	// 3. Second-hand garments are unique; sell each exactly once.
	if len(secondHand) > 0 {
		res, err := tx.ExecContext(ctx, `
			UPDATE garments
			SET sold_out = TRUE, updated_at = NOW()
			WHERE id = ANY($1::uuid[]) AND type = 'second-hand' AND sold_out = FALSE`,
			uuidArray(secondHand),
		)
		if err != nil {
			log.Error("failed to mark garments sold", zap.Error(err))
			return 0, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		if int(n) != len(secondHand) {
			log.Warn("concurrent sale detected", zap.Int64("updated", n), zap.Int("expected", len(secondHand)))
			return 0, ErrGarmentSoldOut
		}
	}

	// 4. Items, stamped with the order id.
	order.Items = make([]*OrderItem, 0, len(items))
	for pos, it := range items {
		item := &OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			GarmentID: &it.GarmentID,
			Size:      it.Size,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, garment_id, position, size, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			item.ID, item.OrderID, it.GarmentID, pos, item.Size, item.Quantity, item.UnitPrice,
		)
		if err != nil {
			log.Error("failed to insert order item", zap.Int("position", pos), zap.Error(err))
			return 0, rejected(err)
		}
		order.Items = append(order.Items, item)
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit order", zap.Error(err))
		return 0, err
	}

	log.Info("order committed",
		zap.Int("items", len(items)),
		zap.Int("garments_sold", len(secondHand)),
	)
	return len(secondHand), nil
}

func scanOrder(row garment.Scanner) (*Order, error) {
	var o Order
	if err := row.Scan(&o.ID, &o.OwnerID, &o.Date, &o.TotalPrice, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.populate(ctx, []*Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

// ListByOwner returns the owner's orders, newest first.
func (r *repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListByOwner"),
		zap.String("owner_id", ownerID.String()),
	)
	defer metrics.StartTimer().ObserveDB("order.list")

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE owner_id = $1 ORDER BY created_at DESC, id ASC`,
		ownerID,
	)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	orders := []*Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			log.Error("failed to scan order", zap.Error(err))
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.populate(ctx, orders); err != nil {
		log.Error("failed to populate orders", zap.Error(err))
		return nil, err
	}
	return orders, nil
}

// populate fills owners, items and item garments with one query each.
func (r *repository) populate(ctx context.Context, orders []*Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*Order, len(orders))
	orderIDs := make([]uuid.UUID, 0, len(orders))
	ownerSet := map[uuid.UUID]struct{}{}
	ownerIDs := []uuid.UUID{}
	for _, o := range orders {
		byID[o.ID] = o
		orderIDs = append(orderIDs, o.ID)
		o.Items = []*OrderItem{}
		if _, ok := ownerSet[o.OwnerID]; !ok {
			ownerSet[o.OwnerID] = struct{}{}
			ownerIDs = append(ownerIDs, o.OwnerID)
		}
	}

	owners, err := r.publicProfiles(ctx, ownerIDs)
	if err != nil {
		return err
	}
	for _, o := range orders {
		if p, ok := owners[o.OwnerID]; ok {
			o.Owner = &p
		}
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, garment_id, size, quantity, unit_price, created_at
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY order_id, position`,
		uuidArray(orderIDs),
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	garmentSet := map[uuid.UUID]struct{}{}
	garmentIDs := []uuid.UUID{}
	var items []*OrderItem
	for rows.Next() {
		var (
			it   OrderItem
			gref uuid.NullUUID
		)
		if err := rows.Scan(&it.ID, &it.OrderID, &gref, &it.Size, &it.Quantity, &it.UnitPrice, &it.CreatedAt); err != nil {
			return err
		}
		if gref.Valid {
			it.GarmentID = &gref.UUID
			if _, ok := garmentSet[gref.UUID]; !ok {
				garmentSet[gref.UUID] = struct{}{}
				garmentIDs = append(garmentIDs, gref.UUID)
			}
		}
		items = append(items, &it)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	garments, err := r.garments(ctx, garmentIDs)
	if err != nil {
		return err
	}

	for _, it := range items {
		if it.GarmentID != nil {
			it.Garment = garments[*it.GarmentID]
		}
		if o, ok := byID[it.OrderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return nil
}

func (r *repository) publicProfiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]user.Public, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, icon FROM users WHERE id = ANY($1::uuid[])`, uuidArray(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uuid.UUID]user.Public, len(ids))
	for rows.Next() {
		var p user.Public
		if err := rows.Scan(&p.ID, &p.Name, &p.Icon); err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

func (r *repository) garments(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*garment.Garment, error) {
	out := make(map[uuid.UUID]*garment.Garment, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.db.QueryContext(ctx,
		garment.SelectWithOwner+` WHERE g.id = ANY($1::uuid[])`, uuidArray(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		g, err := garment.ScanWithOwner(rows)
		if err != nil {
			return nil, err
		}
		out[g.ID] = g
	}
	return out, rows.Err()
}
