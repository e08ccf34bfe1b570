package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// authFailureMessage is deliberately the same for every authentication
// failure so callers cannot probe which check failed.
const authFailureMessage = "not authenticated"

func (h *Handler) logInternalServerError(r *http.Request, err error) {
	slog.Error("internal server error", "method", r.Method, "path", r.URL.Path, "error", err)
}

func (h *Handler) readJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logInternalServerError(r, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, msg string) {
	h.writeJSON(w, r, http.StatusOK, Response{
		Success: false,
		Message: msg,
		Data:    nil,
	})
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		h.writeJSON(w, r, http.StatusBadRequest, Response{
			Success: false,
			Message: err.Error(),
		})
		return
	}

	h.writeJSON(w, r, http.StatusBadRequest, Response{
		Success: false,
		Message: validationErrors[0].Translate(h.translator),
	})
}

func (h *Handler) unauthorized(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusUnauthorized, Response{
		Success: false,
		Message: authFailureMessage,
	})
}

func (h *Handler) forbidden(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusForbidden, Response{
		Success: false,
		Message: "insufficient permissions",
	})
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request, msg string) {
	h.writeJSON(w, r, http.StatusNotFound, Response{
		Success: false,
		Message: msg,
	})
}

func (h *Handler) upstreamError(w http.ResponseWriter, r *http.Request, msg string) {
	h.writeJSON(w, r, http.StatusBadGateway, Response{
		Success: false,
		Message: msg,
	})
}

func (h *Handler) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.logInternalServerError(r, err)
	h.writeJSON(w, r, http.StatusInternalServerError, Response{
		Success: false,
		Message: "internal server error",
		Data:    nil,
	})
}

func (h *Handler) successResponse(w http.ResponseWriter, r *http.Request, msg string, data any) {
	h.writeJSON(w, r, http.StatusOK, Response{
		Success: true,
		Message: msg,
		Data:    data,
	})
}
