package models

import "time"

// Exercise item discriminants and bounds.
const (
	ExerciseRepetition = "repetition"
	ExerciseHold       = "hold"

	MinSets = 1
	MaxSets = 10
)

// ExerciseItem is one exercise inside a Plan. Either Reps (repetition) or
// HoldTime (hold) is set, chosen by Type.
type ExerciseItem struct {
	Name          string `json:"exercise_name"`
	Type          string `json:"exercise_type"` // repetition | hold
	Reps          int    `json:"rep,omitempty"`
	HoldTime      int    `json:"hold_time,omitempty"` // seconds
	Sets          int    `json:"set"`
	CompletedSets int    `json:"completed_sets"`
	TargetArea    string `json:"target_area,omitempty"`
	Difficulty    string `json:"difficulty"` // easy | medium | hard
	Equipment     string `json:"equipment_needed"`
	Frequency     string `json:"frequency,omitempty"`
	Precautions   string `json:"precautions,omitempty"`
	Description   string `json:"description"`
	DemoVideo     string `json:"demo_video,omitempty"`
}

// Plan is the exercise plan generated for exactly one Submission.
// Progress is derived from the items and recomputed on every write.
type Plan struct {
	ID           string         `json:"id"`
	OwnerEmail   string         `json:"owner_email"`
	SubmissionID string         `json:"pain_data_id"`
	Summary      string         `json:"summary"`
	Items        []ExerciseItem `json:"exercises"`
	Progress     int            `json:"progress"` // 0..100
	CreatedAt    time.Time      `json:"created_at"`
}
