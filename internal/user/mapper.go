package user

import (
	"time"

	"wardrobe-be/internal/transport"

	"github.com/google/uuid"
)

type Response struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Address            string    `json:"address"`
	Phone              string    `json:"phone"`
	Type               Type      `json:"type"`
	Description        string    `json:"description,omitempty"`
	Web                string    `json:"web,omitempty"`
	CardNumber         string    `json:"cardNumber,omitempty"`
	CardExpirationDate string    `json:"cardExpirationDate,omitempty"`
	CardHolderName     string    `json:"cardHolderName,omitempty"`
	Icon               string    `json:"icon,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

type PublicResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Icon string    `json:"icon,omitempty"`
}

// ToResponse renders the account for its owner. The password hash and CVV
// never leave the server and the card number is masked.
func ToResponse(u *User, baseURL string) Response {
	return Response{
		ID:                 u.ID,
		Name:               u.Name,
		Email:              u.Email,
		Address:            u.Address,
		Phone:              u.Phone,
		Type:               u.Type,
		Description:        u.Description,
		Web:                u.Web,
		CardNumber:         maskCard(u.CardNumber),
		CardExpirationDate: u.CardExpirationDate,
		CardHolderName:     u.CardHolderName,
		Icon:               transport.AbsoluteURL(baseURL, u.Icon),
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

func ToPublicResponse(p Public, baseURL string) PublicResponse {
	return PublicResponse{
		ID:   p.ID,
		Name: p.Name,
		Icon: transport.AbsoluteURL(baseURL, p.Icon),
	}
}

func maskCard(number string) string {
	digits := make([]byte, 0, len(number))
	for i := 0; i < len(number); i++ {
		if number[i] >= '0' && number[i] <= '9' {
			digits = append(digits, number[i])
		}
	}
	if len(digits) < 4 {
		return ""
	}
	return "**** " + string(digits[len(digits)-4:])
}
