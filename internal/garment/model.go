package garment

import (
	"time"

	"wardrobe-be/internal/user"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TypeNew        = "new"
	TypeSecondHand = "second-hand"
)

// MaxPrice is the largest amount a NUMERIC(12,2) money column holds.
var MaxPrice = decimal.New(999999999999, -2)

// Closed value sets, shared by validation tags and query parsing.
var (
	Colors     = []string{"red", "pink", "purple", "blue", "green", "yellow", "orange", "brown", "black", "white"}
	Categories = []string{"shirt", "pant", "dress", "outerwear", "accessory", "other", "footwear"}
	Genders    = []string{"man", "woman", "unisex", "child"}
	Types      = []string{TypeNew, TypeSecondHand}
	Conditions = []string{"brand-new", "like-new", "used", "fair-condition", "damaged"}
)

type Garment struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Owner       *user.Public
	Name        string
	Description string
	Size        string
	Colors      []string
	Price       decimal.Decimal
	Category    string
	Gender      string
	Type        string
	Status      string
	Web         string
	Image       string
	SoldOut     bool
	GarmentBase *uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsSecondHand reports whether the garment is a unique item that can be sold once.
func (g *Garment) IsSecondHand() bool {
	return g.Type == TypeSecondHand
}

type CreateInput struct {
	Name        string           `json:"name" validate:"required"`
	Description string           `json:"description" validate:"max=2000"`
	Size        string           `json:"size" validate:"max=20"`
	Colors      []string         `json:"colors" validate:"dive,oneof=red pink purple blue green yellow orange brown black white"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	Category    string           `json:"category" validate:"required,oneof=shirt pant dress outerwear accessory other footwear"`
	Gender      string           `json:"gender" validate:"required,oneof=man woman unisex child"`
	Type        string           `json:"type" validate:"required,oneof=new second-hand"`
	Status      string           `json:"status" validate:"omitempty,oneof=brand-new like-new used fair-condition damaged"`
	Web         string           `json:"web" validate:"omitempty,url"`
	GarmentBase *uuid.UUID       `json:"garmentBase"`
}

// ListFilter narrows GET /garment. Empty slices and nil pointers mean
// "no constraint"; Mine selects the caller's own listings instead of
// everyone else's.
type ListFilter struct {
	Search      string
	Categories  []string
	Genders     []string
	Colors      []string
	Types       []string
	States      []string
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	Mine        bool
	GarmentBase *uuid.UUID

	SortField string
	SortDesc  bool
	Limit     int
	Skip      int
}
