package order

import (
	"errors"
	"net/http"

	"wardrobe-be/internal/transport"
	"wardrobe-be/internal/utils"
)

type Handler struct {
	svc     Service
	baseURL string
}

func NewHandler(svc Service, baseURL string) *Handler {
	return &Handler{svc: svc, baseURL: baseURL}
}

type orderResponse struct {
	Order Response `json:"order"`
}

type ordersResponse struct {
	Orders []Response `json:"orders"`
}

// Place expects a bare JSON array of line items.
func (h *Handler) Place(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		transport.Unauthorized(w)
		return
	}

	var items []LineItemInput
	if err := transport.DecodeJSON(r, &items); err != nil {
		transport.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.svc.PlaceOrder(r.Context(), ownerID, items)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	transport.JSON(w, http.StatusCreated, orderResponse{Order: ToResponse(o, h.baseURL)})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		transport.Unauthorized(w)
		return
	}

	orders, err := h.svc.ListOrders(r.Context(), ownerID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	transport.JSON(w, http.StatusOK, ordersResponse{Orders: ToResponses(orders, h.baseURL)})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidLineItems):
		transport.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrGarmentNotFound):
		transport.NotFound(w, err.Error())
	case errors.Is(err, ErrOrderNotFound):
		transport.NotFound(w, "Order not found")
	case errors.Is(err, ErrGarmentSoldOut):
		transport.Error(w, http.StatusConflict, err.Error())
	default:
		transport.InternalError(w, r, err)
	}
}
