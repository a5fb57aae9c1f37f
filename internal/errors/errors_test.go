package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Render(t *testing.T) {
	tests := []struct {
		name       string
		apiError   *APIError
		wantStatus int
	}{
		{"bad request", ErrInvalidRequest, http.StatusBadRequest},
		{"invalid parameter", InvalidParameter("offset", "-"), http.StatusBadRequest},
		{"dataset unavailable", ErrDatasetUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			require.NoError(t, render.Render(w, r, tt.apiError))
			assert.Equal(t, tt.wantStatus, w.Code)

			var body APIError
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.apiError.ErrorCode, body.ErrorCode)
			assert.Equal(t, tt.apiError.Message, body.Message)
		})
	}
}

func TestNewValidationErrors(t *testing.T) {
	err := NewValidationErrors([]ValidationError{
		{Field: "age_group", Message: "invalid"},
		{Field: "reg_type", Message: "invalid"},
	})

	details, ok := err.Details.(ValidationErrors)
	require.True(t, ok)
	assert.Len(t, details.Errors, 2)
}

func TestInvalidParameter(t *testing.T) {
	err := InvalidParameter("limit", "abc")
	assert.Equal(t, "INVALID_PARAMETER", err.ErrorCode)
	assert.Equal(t, "Invalid value for limit", err.Message)
}

func TestAppError(t *testing.T) {
	cause := errors.New("sheet missing")
	err := NewDatasetError("failed to load workbook", cause).WithContext("sheet", "Final Data")

	assert.Equal(t, "[DATASET] failed to load workbook: sheet missing", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Final Data", err.Context["sheet"])

	auth := NewAuthError("session store failed", nil)
	assert.Equal(t, ErrTypeAuth, auth.Type)
	assert.Equal(t, "[AUTH] session store failed", auth.Error())
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	pd := NewProblemDetails(http.StatusBadRequest, TypeValidation, "Bad Request", "bad gender", "/api/summary").
		WithExtension("error_code", "VALIDATION_FAILED")

	data, err := json.Marshal(pd)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, TypeValidation, got["type"])
	assert.Equal(t, float64(http.StatusBadRequest), got["status"])
	assert.Equal(t, "bad gender", got["detail"])
	assert.Equal(t, "/api/summary", got["instance"])
	assert.Equal(t, "VALIDATION_FAILED", got["error_code"])
}

func TestProblemDetails_ExtensionsCannotOverrideStandardFields(t *testing.T) {
	pd := NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found", "", "").
		WithExtension("status", 200)

	data, err := json.Marshal(pd)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, float64(http.StatusNotFound), got["status"])
	assert.NotContains(t, got, "detail")
}
