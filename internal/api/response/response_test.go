package response_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Rrens/storefront/internal/api/response"
	"github.com/Rrens/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var body response.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
		msg    string
	}{
		{"not found", domain.NotFound("product"), http.StatusNotFound, "NOT_FOUND", "product not found"},
		{"wrapped validation", fmt.Errorf("create: %w", domain.Validation("price must not be negative")), http.StatusBadRequest, "VALIDATION", "price must not be negative"},
		{"conflict", domain.Conflict("category still has products"), http.StatusConflict, "CONFLICT", "category still has products"},
		{"forbidden", domain.Forbidden("nope"), http.StatusForbidden, "FORBIDDEN", "nope"},
		{"unauthenticated", domain.Unauthenticated("invalid credentials"), http.StatusUnauthorized, "UNAUTHENTICATED", "invalid credentials"},
		{"upstream hides cause", domain.Upstream("kafka unavailable", errors.New("dial tcp 10.0.0.1:9092")), http.StatusBadGateway, "UPSTREAM", "kafka unavailable"},
		{"unknown", errors.New("pq: relation does not exist"), http.StatusInternalServerError, response.CodeInternal, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			response.FromError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.code, body.Error.Code)
			assert.Equal(t, tt.msg, body.Error.Message)
		})
	}
}

func TestOK(t *testing.T) {
	rec := httptest.NewRecorder()
	response.OK(rec, map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decode(t, rec)
	assert.True(t, body.Success)
	assert.Nil(t, body.Error)
}

func TestValidationFailed(t *testing.T) {
	rec := httptest.NewRecorder()
	response.ValidationFailed(rec, map[string]string{"Email": "invalid email format"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	require.NotNil(t, body.Error)
	assert.Equal(t, "VALIDATION", body.Error.Code)
	assert.Equal(t, "invalid email format", body.Error.Fields["Email"])
}
