package services

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"physioplan/internal/apperrors"
	"physioplan/internal/gateways"
	"physioplan/internal/models"
	"physioplan/internal/repositories"
)

// TriageNotifier is the side channel alerted when a submission triages as
// an urgent referral. A nil notifier disables the stage.
type TriageNotifier interface {
	NotifyUrgent(sub *models.Submission) error
}

// IntakeResult is the composite answer of one intake pipeline run.
type IntakeResult struct {
	Submission *models.Submission `json:"submission"`
	Plan       *models.Plan       `json:"plan"`
}

type IntakeService interface {
	// SubmitAndGeneratePlan runs the full intake pipeline: external
	// validation and duplicate check, submission persistence, plan
	// generation, plan persistence.
	SubmitAndGeneratePlan(ctx context.Context, identity models.Identity, input *models.IntakeInput) (*IntakeResult, error)
	// RegeneratePlan re-runs only the plan stages for an owned submission
	// that has no plan yet, so a caller recovering from a partial failure
	// does not have to resubmit the whole intake.
	RegeneratePlan(ctx context.Context, identity models.Identity, submissionID string) (*models.Plan, error)
}

type intakeService struct {
	submissions repositories.SubmissionRepository
	users       repositories.UserRepository
	plans       PlanService
	assessment  gateways.AssessmentClient
	recommender gateways.RecommenderClient
	notifier    TriageNotifier
}

func NewIntakeService(
	submissions repositories.SubmissionRepository,
	users repositories.UserRepository,
	plans PlanService,
	assessment gateways.AssessmentClient,
	recommender gateways.RecommenderClient,
	notifier TriageNotifier,
) IntakeService {
	return &intakeService{
		submissions: submissions,
		users:       users,
		plans:       plans,
		assessment:  assessment,
		recommender: recommender,
		notifier:    notifier,
	}
}

// pipelineContext accumulates the state of one intake run as the stages
// enrich it. A failed stage leaves everything already persisted in place;
// there is no compensating rollback (a submission without a plan is a valid,
// recoverable state).
type pipelineContext struct {
	identity   models.Identity
	input      *models.IntakeInput
	assessment *gateways.AssessmentResult
	submission *models.Submission
	rec        *gateways.Recommendation
	plan       *models.Plan
}

type stage struct {
	name string
	run  func(ctx context.Context, pc *pipelineContext) error
}

func (s *intakeService) stages() []stage {
	return []stage{
		{"identity", s.stageIdentity},
		{"validate", s.stageValidate},
		{"assess", s.stageAssess},
		{"persist_submission", s.stagePersistSubmission},
		{"generate_plan", s.stageGeneratePlan},
		{"persist_plan", s.stagePersistPlan},
		{"notify", s.stageNotify},
	}
}

func (s *intakeService) SubmitAndGeneratePlan(ctx context.Context, identity models.Identity, input *models.IntakeInput) (*IntakeResult, error) {
	pc := &pipelineContext{identity: identity, input: input}
	for _, st := range s.stages() {
		if err := st.run(ctx, pc); err != nil {
			log.Printf("[pipeline][%s] failed user=%s err=%v", st.name, identity.Email, err)
			return nil, err
		}
	}
	log.Printf("[pipeline][done] user=%s pain_data_id=%s plan_id=%s triage=%s",
		identity.Email, pc.submission.ID, pc.plan.ID, pc.submission.AITriage)
	return &IntakeResult{Submission: pc.submission, Plan: pc.plan}, nil
}

func (s *intakeService) stageIdentity(_ context.Context, pc *pipelineContext) error {
	if pc.identity.UserID == 0 || pc.identity.Email == "" {
		return apperrors.New(apperrors.Unauthorized, "no authenticated identity")
	}
	pc.identity.Email = normalizeEmail(pc.identity.Email)
	return nil
}

func (s *intakeService) stageValidate(_ context.Context, pc *pipelineContext) error {
	in := pc.input
	if in == nil || strings.TrimSpace(in.ChiefComplaint) == "" {
		return apperrors.New(apperrors.BadRequest, "chief_complaint is required")
	}
	if in.Severity < 0 || in.Severity > 10 {
		return apperrors.New(apperrors.BadRequest, "pain_severity must be between 0 and 10")
	}
	in.ChiefComplaint = strings.TrimSpace(in.ChiefComplaint)
	if in.Goals == nil {
		in.Goals = []string{}
	}
	return nil
}

// stageAssess calls the clinical-assessment service twice: content
// validation first, then the duplicate check against the user's committed
// history. The dedup guarantee is best-effort: two concurrent intakes can
// both pass a check that only sees committed data, and the core adds no
// lock of its own to strengthen it.
func (s *intakeService) stageAssess(ctx context.Context, pc *pipelineContext) error {
	req := gateways.AssessmentRequest{
		UserID:         pc.identity.UserID,
		UserEmail:      pc.identity.Email,
		ChiefComplaint: pc.input.ChiefComplaint,
		Severity:       pc.input.Severity,
		History:        pc.input.History,
		Goals:          pc.input.Goals,
		ExtraContext:   pc.input.ExtraContext,
	}

	res, err := s.assessment.Validate(ctx, req)
	if err != nil {
		return err
	}
	if !res.Valid {
		msg := res.Message
		if msg == "" {
			msg = "the description was rejected by the clinical assessment"
		}
		return &apperrors.Error{Kind: apperrors.Invalid, Message: msg, Reasons: res.Reasons}
	}

	similar, err := s.assessment.CheckDuplicates(ctx, req)
	if err != nil {
		return err
	}
	if len(similar) > 0 {
		ids := make([]string, 0, len(similar))
		for _, r := range similar {
			ids = append(ids, r.ID)
		}
		return &apperrors.Error{
			Kind:       apperrors.Conflict,
			Message:    "similar pain record(s) exist",
			SimilarIDs: ids,
		}
	}

	pc.assessment = res
	return nil
}

func (s *intakeService) stagePersistSubmission(_ context.Context, pc *pipelineContext) error {
	sessionID := pc.assessment.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	sub := &models.Submission{
		ID:             uuid.NewString(),
		OwnerID:        pc.identity.UserID,
		OwnerEmail:     pc.identity.Email,
		ChiefComplaint: pc.input.ChiefComplaint,
		Severity:       pc.input.Severity,
		History:        pc.input.History,
		Goals:          pc.input.Goals,
		ExtraContext:   pc.input.ExtraContext,
		InjuryArea:     pc.input.InjuryArea,
		DoctorSlipPath: pc.input.DoctorSlipPath,
		AISessionID:    sessionID,
		AITriage:       pc.assessment.Triage,
		AIReasons:      pc.assessment.Reasons,
		CreatedAt:      time.Now(),
	}
	if err := s.submissions.Create(sub); err != nil {
		return apperrors.Wrap(apperrors.Internal, "store pain record", err)
	}
	pc.submission = sub
	return nil
}

func (s *intakeService) stageGeneratePlan(ctx context.Context, pc *pipelineContext) error {
	rec, err := s.recommender.Recommend(ctx, s.recommendationRequest(pc.identity, pc.submission))
	if err != nil {
		return withSubmissionID(err, pc.submission.ID)
	}
	pc.rec = rec
	return nil
}

func (s *intakeService) stagePersistPlan(_ context.Context, pc *pipelineContext) error {
	plan, err := s.plans.CreateForSubmission(pc.submission, pc.rec)
	if err != nil {
		return withSubmissionID(err, pc.submission.ID)
	}
	pc.plan = plan
	return nil
}

func (s *intakeService) stageNotify(_ context.Context, pc *pipelineContext) error {
	if s.notifier == nil || pc.submission.AITriage != models.TriageUrgentReferral {
		return nil
	}
	// best effort, never fails the pipeline
	if err := s.notifier.NotifyUrgent(pc.submission); err != nil {
		log.Printf("[pipeline][notify] warning: urgent-triage alert failed pain_data_id=%s err=%v", pc.submission.ID, err)
	}
	return nil
}

func (s *intakeService) RegeneratePlan(ctx context.Context, identity models.Identity, submissionID string) (*models.Plan, error) {
	if identity.UserID == 0 || identity.Email == "" {
		return nil, apperrors.New(apperrors.Unauthorized, "no authenticated identity")
	}
	sub, err := s.submissions.GetOwned(submissionID, normalizeEmail(identity.Email))
	if err != nil {
		return nil, err
	}
	if _, err := s.plans.GetBySubmission(sub.ID, sub.OwnerEmail); err == nil {
		return nil, apperrors.New(apperrors.Conflict, "a plan already exists for this pain record")
	} else if !apperrors.Is(err, apperrors.NotFound) {
		return nil, err
	}

	rec, err := s.recommender.Recommend(ctx, s.recommendationRequest(identity, sub))
	if err != nil {
		return nil, withSubmissionID(err, sub.ID)
	}
	plan, err := s.plans.CreateForSubmission(sub, rec)
	if err != nil {
		return nil, withSubmissionID(err, sub.ID)
	}
	log.Printf("[pipeline][regenerate] pain_data_id=%s plan_id=%s", sub.ID, plan.ID)
	return plan, nil
}

// recommendationRequest adds the optional demographic context when the
// user's profile is readable; plan generation works without it.
func (s *intakeService) recommendationRequest(identity models.Identity, sub *models.Submission) gateways.RecommendationRequest {
	req := gateways.RecommendationRequest{
		ChiefComplaint: sub.ChiefComplaint,
		Severity:       sub.Severity,
		History:        sub.History,
		Goals:          sub.Goals,
		ExtraContext:   sub.ExtraContext,
	}
	if s.users != nil {
		if user, err := s.users.GetByID(identity.UserID); err == nil {
			req.Age = user.Age
			req.Sex = user.Gender
		}
	}
	return req
}

// withSubmissionID stamps the persisted submission's id onto a structured
// error, so the caller can retry plan generation alone.
func withSubmissionID(err error, submissionID string) error {
	if ae, ok := err.(*apperrors.Error); ok {
		if ae.SubmissionID == "" {
			ae.SubmissionID = submissionID
		}
		return ae
	}
	return &apperrors.Error{Kind: apperrors.Internal, Message: "plan generation failed", SubmissionID: submissionID, Err: err}
}
