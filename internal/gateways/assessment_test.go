package gateways

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"physioplan/internal/apperrors"
)

func testAssessmentRequest() AssessmentRequest {
	return AssessmentRequest{
		UserID:         1,
		UserEmail:      "patient@example.com",
		ChiefComplaint: "sharp pain in the right shoulder",
		Severity:       6,
		Goals:          []string{"lift my arm without pain"},
	}
}

func TestAssessment_Validate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/ai/validate", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req AssessmentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "patient@example.com", req.UserEmail)
		assert.Equal(t, 6, req.Severity)

		json.NewEncoder(w).Encode(AssessmentResult{
			Valid:     true,
			Triage:    "safe_for_remote",
			SessionID: "sess-42",
		})
	}))
	defer srv.Close()

	client := NewAssessmentClient(srv.URL, time.Second)
	res, err := client.Validate(context.Background(), testAssessmentRequest())
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, "safe_for_remote", res.Triage)
	assert.Equal(t, "sess-42", res.SessionID)
	assert.NotNil(t, res.Reasons)
}

func TestAssessment_ValidateUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewAssessmentClient(srv.URL, time.Second)
	_, err := client.Validate(context.Background(), testAssessmentRequest())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.UpstreamUnavailable))
}

func TestAssessment_ValidateRejectionMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail": "chief complaint is too short"}`))
	}))
	defer srv.Close()

	client := NewAssessmentClient(srv.URL, time.Second)
	_, err := client.Validate(context.Background(), testAssessmentRequest())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.Invalid))

	var ae *apperrors.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "chief complaint is too short", ae.Message)
}

func TestAssessment_ValidateUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	client := NewAssessmentClient(srv.URL, 200*time.Millisecond)
	_, err := client.Validate(context.Background(), testAssessmentRequest())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.UpstreamUnavailable))
}

func TestAssessment_CheckDuplicatesNone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ai/checkDuplicates", r.URL.Path)
		w.Write([]byte(`{"similarRecords": []}`))
	}))
	defer srv.Close()

	client := NewAssessmentClient(srv.URL, time.Second)
	similar, err := client.CheckDuplicates(context.Background(), testAssessmentRequest())
	require.NoError(t, err)
	assert.Empty(t, similar)
}

func TestAssessment_CheckDuplicatesConflictCarriesRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"similarRecords": [{"id": "prior-1", "chief_complaint": "shoulder pain", "similarity": 0.93}]}`))
	}))
	defer srv.Close()

	client := NewAssessmentClient(srv.URL, time.Second)
	similar, err := client.CheckDuplicates(context.Background(), testAssessmentRequest())
	require.NoError(t, err)
	require.Len(t, similar, 1)
	assert.Equal(t, "prior-1", similar[0].ID)
	assert.InDelta(t, 0.93, similar[0].Similarity, 0.001)
}

func TestAssessment_CheckDuplicatesUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewAssessmentClient(srv.URL, time.Second)
	_, err := client.CheckDuplicates(context.Background(), testAssessmentRequest())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.UpstreamUnavailable))
}
