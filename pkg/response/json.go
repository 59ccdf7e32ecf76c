package response

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/fkhayef/eventplanner/internal/apperr"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// APIResponse is the standard response wrapper
type APIResponse struct {
	Success bool        `json:"success"`
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// APIError represents an error response
type APIError struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Field     string         `json:"field,omitempty"`
	Reference string         `json:"reference,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// Meta contains pagination and other metadata
type Meta struct {
	Page        int `json:"page,omitempty"`
	PerPage     int `json:"per_page,omitempty"`
	Total       int `json:"total,omitempty"`
	TotalPages  int `json:"total_pages,omitempty"`
	UnreadCount int `json:"unread_count,omitempty"`
}

func write(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func statusLabel(ok bool) string {
	if ok {
		return StatusSuccess
	}
	return StatusError
}

// JSON sends a JSON response with the given status code
func JSON(w http.ResponseWriter, status int, data interface{}) {
	ok := status >= 200 && status < 300
	write(w, status, APIResponse{
		Success: ok,
		Status:  statusLabel(ok),
		Data:    data,
	})
}

// JSONWithMeta sends a JSON response with pagination metadata
func JSONWithMeta(w http.ResponseWriter, status int, data interface{}, meta *Meta) {
	ok := status >= 200 && status < 300
	write(w, status, APIResponse{
		Success: ok,
		Status:  statusLabel(ok),
		Data:    data,
		Meta:    meta,
	})
}

// Message sends a successful response carrying a human readable message.
func Message(w http.ResponseWriter, status int, message string, data interface{}) {
	write(w, status, APIResponse{
		Success: true,
		Status:  StatusSuccess,
		Message: message,
		Data:    data,
	})
}

// Notice sends a 200 response for an operation that was a no-op, such as
// inviting someone who is already invited.
func Notice(w http.ResponseWriter, code, message string, data interface{}) {
	write(w, http.StatusOK, APIResponse{
		Success: false,
		Status:  StatusError,
		Message: message,
		Data:    data,
		Error:   &APIError{Code: code, Message: message},
	})
}

// Raw writes v without the envelope.
func Raw(w http.ResponseWriter, status int, v interface{}) {
	write(w, status, v)
}

// Error sends an error JSON response
func Error(w http.ResponseWriter, status int, code, message string) {
	write(w, status, APIResponse{
		Success: false,
		Status:  StatusError,
		Message: message,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
	})
}

// Err converts a service error into a response. Classified errors are sent as
// is; anything else is logged with a reference id and hidden from the client.
func Err(w http.ResponseWriter, r *http.Request, err error) {
	if e, ok := apperr.As(err); ok && e.Kind != apperr.KindInternal {
		code := e.Code
		if code == "" {
			code = "ERROR"
		}
		write(w, e.Kind.HTTPStatus(), APIResponse{
			Success: false,
			Status:  StatusError,
			Message: e.Message,
			Error: &APIError{
				Code:    code,
				Message: e.Message,
				Field:   e.Field,
				Details: e.Details,
			},
		})
		return
	}

	ref := uuid.NewString()
	slog.ErrorContext(r.Context(), "request failed",
		"error", err,
		"reference", ref,
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", middleware.GetReqID(r.Context()),
	)
	write(w, http.StatusInternalServerError, APIResponse{
		Success: false,
		Status:  StatusError,
		Message: "Internal server error",
		Error: &APIError{
			Code:      "INTERNAL_ERROR",
			Message:   "Internal server error",
			Reference: ref,
		},
	})
}

// Common error responses
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, "BAD_REQUEST", message)
}

func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, "NOT_FOUND", message)
}

func InternalError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", message)
}

func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, "FORBIDDEN", message)
}

func Conflict(w http.ResponseWriter, message string) {
	Error(w, http.StatusConflict, "CONFLICT", message)
}

func TooManyRequests(w http.ResponseWriter, message string) {
	Error(w, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", message)
}
