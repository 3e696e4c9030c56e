package user

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeCustomer Type = "customer"
	TypeCompany  Type = "company"
)

// User is a marketplace account. Password holds the bcrypt hash.
type User struct {
	ID                 uuid.UUID
	Name               string
	Email              string
	Password           string
	Address            string
	Phone              string
	Type               Type
	Description        string
	Web                string
	CardNumber         string
	CardExpirationDate string
	CardHolderName     string
	CardCVV            string
	Icon               string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Public is the part of a user other accounts may see.
type Public struct {
	ID   uuid.UUID
	Name string
	Icon string
}

func (u *User) Public() Public {
	return Public{ID: u.ID, Name: u.Name, Icon: u.Icon}
}

type SignupInput struct {
	Name               string `json:"name" validate:"required"`
	Email              string `json:"email" validate:"required,email"`
	Password           string `json:"password" validate:"required,min=7,nopassword"`
	Address            string `json:"address" validate:"required"`
	Phone              string `json:"phone" validate:"required,phone"`
	Type               Type   `json:"type" validate:"required,oneof=customer company"`
	Description        string `json:"description" validate:"max=1000"`
	Web                string `json:"web" validate:"omitempty,url"`
	CardNumber         string `json:"cardNumber" validate:"omitempty,credit_card"`
	CardExpirationDate string `json:"cardExpirationDate" validate:"omitempty,cardexpiry"`
	CardHolderName     string `json:"cardHolderName"`
	CardCVV            string `json:"cardCVV" validate:"omitempty,len=3,numeric"`
}

// UpdateProfileInput carries the fields a user may change on their own
// account. Nil fields are left untouched.
type UpdateProfileInput struct {
	Name               *string `json:"name" validate:"omitempty,min=1"`
	Email              *string `json:"email" validate:"omitempty,email"`
	Password           *string `json:"password" validate:"omitempty,min=7,nopassword"`
	Address            *string `json:"address" validate:"omitempty,min=1"`
	Phone              *string `json:"phone" validate:"omitempty,phone"`
	Type               *Type   `json:"type" validate:"omitempty,oneof=customer company"`
	Description        *string `json:"description" validate:"omitempty,max=1000"`
	Web                *string `json:"web" validate:"omitempty,url"`
	CardNumber         *string `json:"cardNumber" validate:"omitempty,credit_card"`
	CardExpirationDate *string `json:"cardExpirationDate" validate:"omitempty,cardexpiry"`
	CardHolderName     *string `json:"cardHolderName"`
	CardCVV            *string `json:"cardCVV" validate:"omitempty,len=3,numeric"`
}
