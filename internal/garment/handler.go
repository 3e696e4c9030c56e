package garment

import (
	"errors"
	"net/http"

	"wardrobe-be/internal/storage"
	"wardrobe-be/internal/transport"
	"wardrobe-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Handler struct {
	svc            Service
	baseURL        string
	maxUploadBytes int64
}

func NewHandler(svc Service, baseURL string, maxUploadBytes int64) *Handler {
	return &Handler{svc: svc, baseURL: baseURL, maxUploadBytes: maxUploadBytes}
}

type garmentResponse struct {
	Garment Response `json:"garment"`
}

type garmentsResponse struct {
	Garments []Response `json:"garments"`
}

// Create accepts a multipart form ("garment" JSON plus an optional "image"
// file) or a plain JSON body.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		transport.Unauthorized(w)
		return
	}

	var (
		in    CreateInput
		image *storage.Upload
	)

	if transport.IsMultipart(r) {
		up, cleanup, err := transport.DecodeMultipart(w, r, h.maxUploadBytes, "garment", &in, "image")
		defer cleanup()
		if err != nil {
			transport.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		image = up
	} else if err := transport.DecodeJSON(r, &in); err != nil {
		transport.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	g, err := h.svc.Create(r.Context(), ownerID, in, image)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	transport.JSON(w, http.StatusCreated, garmentResponse{Garment: ToResponse(g, h.baseURL)})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := garmentID(w, r)
	if !ok {
		return
	}

	g, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	transport.JSON(w, http.StatusOK, garmentResponse{Garment: ToResponse(g, h.baseURL)})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	callerID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		transport.Unauthorized(w)
		return
	}

	f, err := ParseListFilter(r.URL.Query())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	garments, err := h.svc.List(r.Context(), callerID, f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	transport.JSON(w, http.StatusOK, garmentsResponse{Garments: ToResponses(garments, h.baseURL)})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	callerID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		transport.Unauthorized(w)
		return
	}

	id, ok := garmentID(w, r)
	if !ok {
		return
	}

	g, err := h.svc.Delete(r.Context(), callerID, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	transport.JSON(w, http.StatusOK, garmentResponse{Garment: ToResponse(g, h.baseURL)})
}

func garmentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		transport.Error(w, http.StatusBadRequest, "Garment ID is invalid")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		transport.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrGarmentNotFound):
		transport.NotFound(w, "Garment not found")
	case errors.Is(err, ErrForbidden):
		transport.Error(w, http.StatusForbidden, "You can only delete your own garments")
	default:
		transport.InternalError(w, r, err)
	}
}
