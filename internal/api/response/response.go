package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Rrens/storefront/internal/domain"
	"github.com/rs/zerolog/log"
)

// Response represents a standard API response
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// ErrorBody is the error half of the envelope
type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Error codes that do not come from a domain error kind
const (
	CodeBadRequest      = "BAD_REQUEST"
	CodeTooManyRequests = "RATE_LIMITED"
	CodeUnavailable     = "UNAVAILABLE"
	CodeInternal        = "INTERNAL"
)

// JSON sends a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := Response{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Debug().Err(err).Msg("failed to write response")
	}
}

// Error sends an error response
func Error(w http.ResponseWriter, status int, code, message string) {
	write(w, status, &ErrorBody{Code: code, Message: message})
}

func write(w http.ResponseWriter, status int, body *ErrorBody) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := Response{
		Success: false,
		Error:   body,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Debug().Err(err).Msg("failed to write response")
	}
}

var kindStatus = map[domain.ErrorKind]int{
	domain.KindUnauthenticated: http.StatusUnauthorized,
	domain.KindForbidden:       http.StatusForbidden,
	domain.KindNotFound:        http.StatusNotFound,
	domain.KindValidation:      http.StatusBadRequest,
	domain.KindConflict:        http.StatusConflict,
	domain.KindUpstream:        http.StatusBadGateway,
}

// FromError maps an error to its status code. Errors without a kind are
// logged and reported as a bare 500.
func FromError(w http.ResponseWriter, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		if status, ok := kindStatus[de.Kind]; ok {
			if de.Kind == domain.KindUpstream {
				log.Error().Err(err).Msg("upstream failure")
			}
			Error(w, status, string(de.Kind), de.Message)
			return
		}
	}

	log.Error().Err(err).Msg("internal error")
	InternalError(w)
}

// ValidationFailed reports per-field validation messages
func ValidationFailed(w http.ResponseWriter, fields map[string]string) {
	write(w, http.StatusBadRequest, &ErrorBody{
		Code:    string(domain.KindValidation),
		Message: "validation failed",
		Fields:  fields,
	})
}

// NoContent sends a 204 No Content response
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Created sends a 201 Created response with data
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, data)
}

// OK sends a 200 OK response with data
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// BadRequest sends a 400 Bad Request response
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, CodeBadRequest, message)
}

// Unauthorized sends a 401 Unauthorized response
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, string(domain.KindUnauthenticated), message)
}

// Forbidden sends a 403 Forbidden response
func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, string(domain.KindForbidden), message)
}

// NotFound sends a 404 Not Found response
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, string(domain.KindNotFound), message)
}

// InternalError sends a 500 Internal Server Error response without detail
func InternalError(w http.ResponseWriter) {
	Error(w, http.StatusInternalServerError, CodeInternal, "internal server error")
}
