// Package gateways holds the HTTP clients for the two external clinical
// services: the assessment service (content validation + duplicate check)
// and the exercise recommender. Both are synchronous call-outs bounded by a
// timeout; a timeout or transport failure is reported as UpstreamUnavailable.
package gateways

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"physioplan/internal/apperrors"
)

type AssessmentRequest struct {
	UserID         int      `json:"userId"`
	UserEmail      string   `json:"userEmail"`
	ChiefComplaint string   `json:"chief_complaint"`
	Severity       int      `json:"pain_severity_0_10"`
	History        string   `json:"history"`
	Goals          []string `json:"goals"`
	ExtraContext   string   `json:"extra_context"`
}

type AssessmentResult struct {
	Valid     bool     `json:"valid"`
	Message   string   `json:"message"`
	Triage    string   `json:"triage"`
	SessionID string   `json:"session_id"`
	Reasons   []string `json:"reasons"`
}

type SimilarRecord struct {
	ID             string  `json:"id"`
	ChiefComplaint string  `json:"chief_complaint"`
	Similarity     float64 `json:"similarity"`
}

type duplicatesResponse struct {
	SimilarRecords []SimilarRecord `json:"similarRecords"`
}

type upstreamError struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

// AssessmentClient is what the intake pipeline consumes; the HTTP
// implementation below is the only production one, fakes live in tests.
type AssessmentClient interface {
	Validate(ctx context.Context, req AssessmentRequest) (*AssessmentResult, error)
	CheckDuplicates(ctx context.Context, req AssessmentRequest) ([]SimilarRecord, error)
}

type assessmentClient struct {
	baseURL string
	client  *http.Client
}

func NewAssessmentClient(baseURL string, timeout time.Duration) AssessmentClient {
	return &assessmentClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *assessmentClient) Validate(ctx context.Context, req AssessmentRequest) (*AssessmentResult, error) {
	body, status, err := c.post(ctx, c.baseURL+"/ai/validate", req)
	if err != nil {
		return nil, err
	}
	if status >= 500 {
		return nil, apperrors.Newf(apperrors.UpstreamUnavailable, "assessment service error (status %d)", status)
	}
	if status >= 400 {
		return nil, apperrors.New(apperrors.Invalid, upstreamMessage(body, "validation failed"))
	}

	var res AssessmentResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, apperrors.Wrap(apperrors.UpstreamUnavailable, "assessment response unreadable", err)
	}
	if res.Reasons == nil {
		res.Reasons = []string{}
	}
	return &res, nil
}

func (c *assessmentClient) CheckDuplicates(ctx context.Context, req AssessmentRequest) ([]SimilarRecord, error) {
	body, status, err := c.post(ctx, c.baseURL+"/ai/checkDuplicates", req)
	if err != nil {
		return nil, err
	}
	if status >= 500 {
		return nil, apperrors.Newf(apperrors.UpstreamUnavailable, "duplicate check error (status %d)", status)
	}
	// 409 carries the matched records in the same shape as a 200
	if status >= 400 && status != http.StatusConflict {
		return nil, apperrors.New(apperrors.Invalid, upstreamMessage(body, "duplicate check rejected the submission"))
	}

	var res duplicatesResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, apperrors.Wrap(apperrors.UpstreamUnavailable, "duplicate check response unreadable", err)
	}
	return res.SimilarRecords, nil
}

func (c *assessmentClient) post(ctx context.Context, url string, payload any) ([]byte, int, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.Internal, "encode assessment request", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.Internal, "build assessment request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.UpstreamUnavailable, "assessment service unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.UpstreamUnavailable, "read assessment response", err)
	}
	return body, resp.StatusCode, nil
}

// upstreamMessage pulls a human-readable message out of a FastAPI-style
// error body ({"detail": ...} or {"message": ...}).
func upstreamMessage(body []byte, fallback string) string {
	var ue upstreamError
	if err := json.Unmarshal(body, &ue); err == nil {
		if ue.Detail != "" {
			return ue.Detail
		}
		if ue.Message != "" {
			return ue.Message
		}
	}
	return fallback
}
