package wishlist

import (
	"errors"
	"net/http"

	"wardrobe-be/internal/garment"
	"wardrobe-be/internal/transport"
	"wardrobe-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Handler struct {
	svc     Service
	baseURL string
}

func NewHandler(svc Service, baseURL string) *Handler {
	return &Handler{svc: svc, baseURL: baseURL}
}

type wishlistResponse struct {
	Wishlist []garment.Response `json:"wishlist"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		transport.Unauthorized(w)
		return
	}

	garments, err := h.svc.List(r.Context(), ownerID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	transport.JSON(w, http.StatusOK, wishlistResponse{Wishlist: garment.ToResponses(garments, h.baseURL)})
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	ownerID, garmentID, ok := h.params(w, r)
	if !ok {
		return
	}

	if err := h.svc.Add(r.Context(), ownerID, garmentID); err != nil {
		h.writeError(w, r, err)
		return
	}

	transport.JSON(w, http.StatusCreated, transport.Message{Message: "Item added to wishlist"})
}

func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	ownerID, garmentID, ok := h.params(w, r)
	if !ok {
		return
	}

	if err := h.svc.Remove(r.Context(), ownerID, garmentID); err != nil {
		h.writeError(w, r, err)
		return
	}

	transport.JSON(w, http.StatusOK, transport.Message{Message: "Item removed from wishlist"})
}

func (h *Handler) params(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	ownerID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		transport.Unauthorized(w)
		return uuid.Nil, uuid.Nil, false
	}

	garmentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		transport.Error(w, http.StatusBadRequest, "Garment ID is invalid")
		return uuid.Nil, uuid.Nil, false
	}
	return ownerID, garmentID, true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrItemAlreadyExists):
		transport.Error(w, http.StatusBadRequest, "Item already exists in wishlist")
	case errors.Is(err, ErrWishlistNotFound):
		transport.NotFound(w, "Wishlist not found")
	case errors.Is(err, ErrGarmentNotFound):
		transport.NotFound(w, "Garment not found")
	default:
		transport.InternalError(w, r, err)
	}
}
