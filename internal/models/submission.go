package models

import "time"

// Submission is one persisted pain/injury report. Immutable after creation
// except for the three assessment fields, which the intake pipeline fills in
// exactly once after the clinical-assessment call succeeds.
type Submission struct {
	ID             string    `json:"id"`
	OwnerID        int       `json:"owner_id"`
	OwnerEmail     string    `json:"owner_email"`
	ChiefComplaint string    `json:"chief_complaint"`
	Severity       int       `json:"pain_severity"` // 0..10
	History        string    `json:"history"`
	Goals          []string  `json:"goals"`
	ExtraContext   string    `json:"extra_context"`
	InjuryArea     string    `json:"injury_area,omitempty"`
	DoctorSlipPath string    `json:"doctor_slip,omitempty"` // relative path under the files root
	AISessionID    string    `json:"ai_session_id,omitempty"`
	AITriage       string    `json:"ai_triage,omitempty"`
	AIReasons      []string  `json:"ai_reasons"`
	CreatedAt      time.Time `json:"created_at"`
}

// Triage labels returned by the assessment service.
const (
	TriageSafeForRemote  = "safe_for_remote"
	TriageNeedsInPerson  = "needs_in_person"
	TriageUrgentReferral = "urgent_referral"
)

type IntakeInput struct {
	ChiefComplaint string   `json:"chief_complaint" binding:"required"`
	Severity       int      `json:"pain_severity"`
	History        string   `json:"history"`
	Goals          []string `json:"goals"`
	ExtraContext   string   `json:"extra_context"`
	InjuryArea     string   `json:"injury_area"`
	DoctorSlipPath string   `json:"-"`
}
