package transport

import (
	"errors"
	"io"
	"net/http"

	"wardrobe-be/internal/storage"

	"github.com/go-chi/chi/v5"
)

// AssetHandler serves stored images under /assets/{userID}/imgs/{name}.
func AssetHandler(disk storage.Disk) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "userID") + "/imgs/" + chi.URLParam(r, "name")

		rc, err := disk.Open(r.Context(), key)
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidKey) {
			NotFound(w, "Image not found")
			return
		}
		if err != nil {
			InternalError(w, r, err)
			return
		}
		defer rc.Close()

		w.Header().Set("Content-Type", storage.ContentType(key))
		_, _ = io.Copy(w, rc)
	}
}
