package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/eventplanner/internal/apperr"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var body APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, map[string]int{"id": 3})

	body := decode(t, rec)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, body.Success)
	assert.Equal(t, StatusSuccess, body.Status)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestErrClassified(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/friends/request/2/", nil)

	err := fmt.Errorf("send: %w", apperr.Conflict("REVERSE_REQUEST_PENDING", "respond to their request").WithDetail("request_id", 9))
	Err(rec, req, err)

	body := decode(t, rec)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, body.Success)
	assert.Equal(t, StatusError, body.Status)
	require.NotNil(t, body.Error)
	assert.Equal(t, "REVERSE_REQUEST_PENDING", body.Error.Code)
	assert.EqualValues(t, 9, body.Error.Details["request_id"])
}

func TestErrValidationCarriesField(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/events/", nil)

	Err(rec, req, apperr.Validation("address", "address is required when location_type is address"))

	body := decode(t, rec)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "address", body.Error.Field)
}

func TestErrInternalIsOpaque(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/events/1/", nil)

	Err(rec, req, errors.New(`pq: relation "events" does not exist`))

	body := decode(t, rec)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
	assert.NotEmpty(t, body.Error.Reference)
	assert.NotContains(t, rec.Body.String(), "relation")
}

func TestNotice(t *testing.T) {
	rec := httptest.NewRecorder()
	Notice(rec, "ALREADY_INVITED", "bob is already invited", nil)

	body := decode(t, rec)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, body.Success)
	assert.Equal(t, "bob is already invited", body.Message)
}
