package order

import "errors"

var (
	ErrInvalidLineItems = errors.New("invalid line items")
	ErrGarmentNotFound  = errors.New("garment not found")
	ErrGarmentSoldOut   = errors.New("garment already sold")
	ErrOrderNotFound    = errors.New("order not found")
)
