package order

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"wardrobe-be/internal/garment"
	"wardrobe-be/internal/logger"
	"wardrobe-be/internal/metrics"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Service interface {
	PlaceOrder(ctx context.Context, ownerID uuid.UUID, items []LineItemInput) (*Order, error)
	ListOrders(ctx context.Context, ownerID uuid.UUID) ([]*Order, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

// TotalPrice sums unitPrice * quantity over the items. decimal arithmetic is
// exact, so the result never drifts from the per-item amounts.
func TotalPrice(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// maxQuantity is the largest value the order_items.quantity INT column holds.
const maxQuantity = math.MaxInt32

// ValidateLineItems converts raw input into line items. Every problem is
// reported, prefixed with the element index. Amounts must fit the money
// columns, the order total included.
func ValidateLineItems(in []LineItemInput) ([]LineItem, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: order must contain at least one item", ErrInvalidLineItems)
	}

	var problems []string
	items := make([]LineItem, 0, len(in))
	for i, raw := range in {
		var (
			item LineItem
			err  error
		)

		item.GarmentID, err = uuid.Parse(strings.TrimSpace(raw.Garment))
		if err != nil {
			problems = append(problems, fmt.Sprintf("[%d].garment is invalid", i))
		}

		item.Size = strings.TrimSpace(raw.Size)
		if item.Size == "" {
			problems = append(problems, fmt.Sprintf("[%d].size is required", i))
		}

		item.Quantity = raw.Quantity
		switch {
		case raw.Quantity < 1:
			problems = append(problems, fmt.Sprintf("[%d].quantity must be at least 1", i))
		case raw.Quantity > maxQuantity:
			problems = append(problems, fmt.Sprintf("[%d].quantity must be at most %d", i, maxQuantity))
		}

		switch {
		case raw.UnitPrice == nil:
			problems = append(problems, fmt.Sprintf("[%d].unitPrice is required", i))
		case raw.UnitPrice.IsNegative():
			problems = append(problems, fmt.Sprintf("[%d].unitPrice must be a non-negative number", i))
		case raw.UnitPrice.GreaterThan(garment.MaxPrice):
			problems = append(problems, fmt.Sprintf("[%d].unitPrice must be at most %s", i, garment.MaxPrice.StringFixed(2)))
		case !raw.UnitPrice.Equal(raw.UnitPrice.Truncate(2)):
			problems = append(problems, fmt.Sprintf("[%d].unitPrice must have at most 2 decimal places", i))
		default:
			item.UnitPrice = *raw.UnitPrice
		}

		items = append(items, item)
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidLineItems, strings.Join(problems, ", "))
	}
	if TotalPrice(items).GreaterThan(garment.MaxPrice) {
		return nil, fmt.Errorf("%w: order total must be at most %s", ErrInvalidLineItems, garment.MaxPrice.StringFixed(2))
	}
	return items, nil
}

func (s *service) PlaceOrder(ctx context.Context, ownerID uuid.UUID, in []LineItemInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "PlaceOrder"),
		zap.String("owner_id", ownerID.String()),
	)

	items, err := ValidateLineItems(in)
	if err != nil {
		log.Info("order rejected", zap.Error(err))
		return nil, err
	}

	o := &Order{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		Date:       s.now().UTC(),
		TotalPrice: TotalPrice(items),
	}

	sold, err := s.repo.CreateOrderTx(ctx, o, items)
	if err != nil {
		log.Warn("order not placed", zap.Error(err))
		return nil, err
	}

	metrics.OrdersPlaced.Inc()
	metrics.GarmentsSold.Add(float64(sold))

	log.Info("order placed",
		zap.String("order_id", o.ID.String()),
		zap.String("total_price", o.TotalPrice.StringFixed(2)),
		zap.Int("items", len(items)),
	)

	return s.repo.GetByID(ctx, o.ID)
}

func (s *service) ListOrders(ctx context.Context, ownerID uuid.UUID) ([]*Order, error) {
	orders, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to list orders",
			zap.String("layer", "service"),
			zap.String("owner_id", ownerID.String()),
			zap.Error(err),
		)
		return nil, err
	}
	return orders, nil
}
