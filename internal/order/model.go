package order

import (
	"encoding/json"
	"time"

	"wardrobe-be/internal/garment"
	"wardrobe-be/internal/user"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Order struct {
	ID         uuid.UUID
	OwnerID    uuid.UUID
	Owner      *user.Public
	Date       time.Time
	TotalPrice decimal.Decimal
	Items      []*OrderItem
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// OrderItem snapshots the unit price at purchase time. GarmentID is nil once
// the referenced garment has been deleted.
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	GarmentID *uuid.UUID
	Garment   *garment.Garment
	Size      string
	Quantity  int
	UnitPrice decimal.Decimal
	CreatedAt time.Time
}

// LineItemInput is one element of the POST /order body. The garment may be
// referenced directly or through base._id / base.id.
type LineItemInput struct {
	Garment   string           `json:"garment"`
	Size      string           `json:"size"`
	Quantity  int              `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unitPrice"`
}

func (in *LineItemInput) UnmarshalJSON(data []byte) error {
	type plain LineItemInput
	var raw struct {
		plain
		Base *struct {
			MongoID string `json:"_id"`
			ID      string `json:"id"`
		} `json:"base"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*in = LineItemInput(raw.plain)
	if in.Garment == "" && raw.Base != nil {
		in.Garment = raw.Base.MongoID
		if in.Garment == "" {
			in.Garment = raw.Base.ID
		}
	}
	return nil
}

// LineItem is a validated LineItemInput.
type LineItem struct {
	GarmentID uuid.UUID
	Size      string
	Quantity  int
	UnitPrice decimal.Decimal
}
