package transport

import (
	"encoding/json"
	"net/http"

	"wardrobe-be/internal/logger"

	"go.uber.org/zap"
)

// Envelope is the body of every JSON response; exactly one of Data and Error is set.
type Envelope struct {
	Data  any        `json:"data"`
	Error *ErrorBody `json:"error"`
}

type ErrorBody struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

const msgInternal = "internal server error"

func writeJSON(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// JSON writes data inside the success envelope.
func JSON(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Envelope{Data: data})
}

// Error writes a client facing error. message must never carry internal detail.
func Error(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Envelope{Error: &ErrorBody{Status: status, Message: message}})
}

// InternalError logs err with the request logger and answers with a generic 500.
func InternalError(w http.ResponseWriter, r *http.Request, err error) {
	logger.FromCtx(r.Context()).Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	Error(w, http.StatusInternalServerError, msgInternal)
}

func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "please authenticate")
}

func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

// Message is the payload of operations that only report an outcome.
type Message struct {
	Message string `json:"message"`
}
