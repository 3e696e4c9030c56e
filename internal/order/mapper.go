package order

import (
	"encoding/json"
	"time"

	"wardrobe-be/internal/garment"
	"wardrobe-be/internal/user"

	"github.com/google/uuid"
)

type Response struct {
	ID         uuid.UUID            `json:"id"`
	Owner      *user.PublicResponse `json:"owner"`
	Date       time.Time            `json:"date"`
	TotalPrice json.Number          `json:"totalPrice"`
	OrderItems []ItemResponse       `json:"orderItems"`
	CreatedAt  time.Time            `json:"createdAt"`
	UpdatedAt  time.Time            `json:"updatedAt"`
}

// ItemResponse carries a null garment when the listing has since been deleted.
type ItemResponse struct {
	ID        uuid.UUID         `json:"id"`
	Garment   *garment.Response `json:"garment"`
	Size      string            `json:"size"`
	Quantity  int               `json:"quantity"`
	UnitPrice json.Number       `json:"unitPrice"`
	CreatedAt time.Time         `json:"createdAt"`
}

func ToResponse(o *Order, baseURL string) Response {
	resp := Response{
		ID:         o.ID,
		Date:       o.Date,
		TotalPrice: garment.Money(o.TotalPrice),
		OrderItems: make([]ItemResponse, 0, len(o.Items)),
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
	if o.Owner != nil {
		owner := user.ToPublicResponse(*o.Owner, baseURL)
		resp.Owner = &owner
	}

	for _, it := range o.Items {
		item := ItemResponse{
			ID:        it.ID,
			Size:      it.Size,
			Quantity:  it.Quantity,
			UnitPrice: garment.Money(it.UnitPrice),
			CreatedAt: it.CreatedAt,
		}
		if it.Garment != nil {
			g := garment.ToResponse(it.Garment, baseURL)
			item.Garment = &g
		}
		resp.OrderItems = append(resp.OrderItems, item)
	}
	return resp
}

func ToResponses(orders []*Order, baseURL string) []Response {
	out := make([]Response, 0, len(orders))
	for _, o := range orders {
		out = append(out, ToResponse(o, baseURL))
	}
	return out
}
