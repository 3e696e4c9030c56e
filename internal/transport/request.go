package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"wardrobe-be/internal/storage"
)

var ErrBadRequestBody = errors.New("invalid request body")

const maxJSONBody = 1 << 20

// DecodeJSON decodes the request body into dst, rejecting unknown trailing data.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequestBody, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: unexpected data after JSON value", ErrBadRequestBody)
	}
	return nil
}

// AbsoluteURL prefixes a stored relative path with the public base URL.
// Empty paths and paths that are already absolute are returned unchanged.
func AbsoluteURL(baseURL, path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

const multipartMemory = 8 << 20

// IsMultipart reports whether the request carries a multipart/form-data body.
func IsMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// DecodeMultipart reads a multipart form of at most maxBytes. The JSON text in
// form field jsonField is decoded into dst and the optional file in fileField
// is returned as an upload. The returned cleanup must always be called.
func DecodeMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64, jsonField string, dst any, fileField string) (*storage.Upload, func(), error) {
	cleanup := func() {}

	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, cleanup, fmt.Errorf("%w: %v", ErrBadRequestBody, err)
	}
	cleanup = func() { _ = r.MultipartForm.RemoveAll() }

	raw := r.FormValue(jsonField)
	if strings.TrimSpace(raw) == "" {
		return nil, cleanup, fmt.Errorf("%w: missing %q field", ErrBadRequestBody, jsonField)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return nil, cleanup, fmt.Errorf("%w: %v", ErrBadRequestBody, err)
	}

	file, header, err := r.FormFile(fileField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, cleanup, nil
	}
	if err != nil {
		return nil, cleanup, fmt.Errorf("%w: %v", ErrBadRequestBody, err)
	}

	up := &storage.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	}
	removeForm := cleanup
	return up, func() {
		_ = file.Close()
		removeForm()
	}, nil
}
