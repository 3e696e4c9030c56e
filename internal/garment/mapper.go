package garment

import (
	"encoding/json"
	"time"

	"wardrobe-be/internal/transport"
	"wardrobe-be/internal/user"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Response struct {
	ID          uuid.UUID            `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description,omitempty"`
	Size        string               `json:"size,omitempty"`
	Colors      []string             `json:"colors"`
	Price       json.Number          `json:"price"`
	Category    string               `json:"category"`
	Gender      string               `json:"gender"`
	Type        string               `json:"type"`
	Status      string               `json:"status,omitempty"`
	Web         string               `json:"web,omitempty"`
	Image       string               `json:"image,omitempty"`
	SoldOut     bool                 `json:"soldOut"`
	GarmentBase *uuid.UUID           `json:"garmentBase,omitempty"`
	Owner       *user.PublicResponse `json:"owner"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// Money renders an amount as a JSON number with cent precision.
func Money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func ToResponse(g *Garment, baseURL string) Response {
	resp := Response{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Size:        g.Size,
		Colors:      g.Colors,
		Price:       Money(g.Price),
		Category:    g.Category,
		Gender:      g.Gender,
		Type:        g.Type,
		Status:      g.Status,
		Web:         g.Web,
		Image:       transport.AbsoluteURL(baseURL, g.Image),
		SoldOut:     g.SoldOut,
		GarmentBase: g.GarmentBase,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
	if resp.Colors == nil {
		resp.Colors = []string{}
	}
	if g.Owner != nil {
		owner := user.ToPublicResponse(*g.Owner, baseURL)
		resp.Owner = &owner
	}
	return resp
}

func ToResponses(gs []*Garment, baseURL string) []Response {
	out := make([]Response, 0, len(gs))
	for _, g := range gs {
		out = append(out, ToResponse(g, baseURL))
	}
	return out
}
