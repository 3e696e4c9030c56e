package wishlist

import "errors"

var (
	ErrWishlistNotFound  = errors.New("wishlist not found")
	ErrGarmentNotFound   = errors.New("garment not found")
	ErrItemAlreadyExists = errors.New("item already exists in wishlist")
)
