package http

import (
	"encoding/json"
	"net/http"

	"github.com/mrossig/vidriera/internal/models"
)

// ErrorResponse is the API error body: {"success": false, "error": "..."}
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a JSON error response with the given status code.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Success: false, Error: message})
}

// WriteAppError maps a service failure onto the wire. Tagged AppErrors carry
// their own status hint; anything else is downgraded to a generic 500. The
// internal detail of unexpected failures only surfaces outside production.
func WriteAppError(w http.ResponseWriter, err error, env string) {
	if appErr, ok := models.AsAppError(err); ok {
		WriteError(w, appErr.Status, appErr.Message)
		return
	}
	if env != "production" && err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteError(w, http.StatusInternalServerError, "internal server error")
}

func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message)
}

func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message)
}

func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message)
}

func WriteConflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, message)
}

func WriteTooManyRequests(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, message)
}

func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message)
}
