package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"physioplan/internal/apperrors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRespondError_StructuredPayload(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondError(c, &apperrors.Error{
		Kind:       apperrors.Conflict,
		Message:    "similar pain record(s) exist",
		SimilarIDs: []string{"prior-1"},
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "similar pain record(s) exist", body["error"])
	assert.Equal(t, "conflict", body["kind"])
	assert.Equal(t, []any{"prior-1"}, body["similar_records"])
	assert.NotContains(t, body, "pain_data_id")
}

func TestRespondError_SubmissionIDSurfaces(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondError(c, &apperrors.Error{
		Kind:         apperrors.UpstreamUnavailable,
		Message:      "recommender unreachable",
		SubmissionID: "sub-1",
	})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "sub-1", body["pain_data_id"])
}

func TestRespondError_PlainErrorIsInternal(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondError(c, errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestGetIdentity(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("user_id", 7)
	c.Set("email", "patient@example.com")

	id, ok := getIdentity(c)
	require.True(t, ok)
	assert.Equal(t, 7, id.UserID)
	assert.Equal(t, "patient@example.com", id.Email)
}

func TestGetIdentity_MissingClaims(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	_, ok := getIdentity(c)
	assert.False(t, ok)

	c.Set("user_id", 7)
	_, ok = getIdentity(c)
	assert.False(t, ok)
}

func TestGetIntFromCtx_StringValue(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("user_id", "42")

	n, ok := getIntFromCtx(c, "user_id")
	require.True(t, ok)
	assert.Equal(t, 42, n)
}
