package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrossig/vidriera/internal/models"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]string{"hello": "world"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"hello":"world"}`, rec.Body.String())
}

func TestWriteError_Body(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusConflict, "subdomain already taken")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"subdomain already taken"}`, rec.Body.String())
}

func TestWriteAppError_TaggedErrorKeepsStatus(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"bad request", models.NewValidationError("invalid subdomain"), http.StatusBadRequest, "invalid subdomain"},
		{"unauthorized", models.NewUnauthorized("invalid token"), http.StatusUnauthorized, "invalid token"},
		{"not found", models.NewNotFound("site not found"), http.StatusNotFound, "site not found"},
		{"conflict", models.NewConflict("email already registered"), http.StatusConflict, "email already registered"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteAppError(rec, tc.err, "production")

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.wantError)
		})
	}
}

func TestWriteAppError_WrappedAppError(t *testing.T) {
	wrapped := errors.Join(errors.New("outer context"), models.NewNotFound("business not found"))

	rec := httptest.NewRecorder()
	WriteAppError(rec, wrapped, "production")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWriteAppError_UnknownErrorHiddenInProduction(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteAppError(rec, errors.New("pq: connection refused"), "production")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"internal server error"}`, rec.Body.String())
}

func TestWriteAppError_UnknownErrorSurfacesInDevelopment(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteAppError(rec, errors.New("pq: connection refused"), "development")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}
