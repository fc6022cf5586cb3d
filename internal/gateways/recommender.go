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

type RecommendationRequest struct {
	Age            int      `json:"age,omitempty"`
	Sex            string   `json:"sex,omitempty"`
	ChiefComplaint string   `json:"chief_complaint"`
	Severity       int      `json:"pain_severity_0_10"`
	History        string   `json:"history"`
	Goals          []string `json:"goals"`
	ExtraContext   string   `json:"extra_context"`
}

type RecommendedExercise struct {
	Name        string `json:"name"`
	Type        string `json:"exercise_type"` // repetition | hold; blank means repetition
	Reps        int    `json:"rep"`
	HoldTime    int    `json:"hold_time"`
	Sets        int    `json:"set"`
	TargetArea  string `json:"target_area"`
	Difficulty  string `json:"difficulty"`
	Equipment   string `json:"equipment_needed"`
	Frequency   string `json:"frequency"`
	Precautions string `json:"precautions"`
	Description string `json:"description"`
	DemoVideo   string `json:"demo_video"`
}

type Recommendation struct {
	Summary   string                `json:"summary"`
	Exercises []RecommendedExercise `json:"exercises"`
}

type RecommenderClient interface {
	Recommend(ctx context.Context, req RecommendationRequest) (*Recommendation, error)
}

type recommenderClient struct {
	baseURL string
	client  *http.Client
}

func NewRecommenderClient(baseURL string, timeout time.Duration) RecommenderClient {
	return &recommenderClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *recommenderClient) Recommend(ctx context.Context, req RecommendationRequest) (*Recommendation, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "encode recommendation request", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/recommend", bytes.NewReader(b))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "build recommendation request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.UpstreamUnavailable, "recommender unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.UpstreamUnavailable, "read recommender response", err)
	}
	if resp.StatusCode >= 500 {
		return nil, apperrors.Newf(apperrors.UpstreamUnavailable, "recommender error (status %d)", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return nil, apperrors.New(apperrors.Invalid, upstreamMessage(body, "recommender rejected the request"))
	}

	var rec Recommendation
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, apperrors.Wrap(apperrors.Invalid, "recommender returned a malformed plan", err)
	}
	if len(rec.Exercises) == 0 {
		return nil, apperrors.New(apperrors.Invalid, "recommender returned an empty exercise list")
	}
	return &rec, nil
}
