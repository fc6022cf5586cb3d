package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"physioplan/internal/apperrors"
	"physioplan/internal/gateways"
	"physioplan/internal/models"
)

type fakeSubmissionRepository struct {
	subs map[string]*models.Submission
}

func newFakeSubmissionRepository() *fakeSubmissionRepository {
	return &fakeSubmissionRepository{subs: make(map[string]*models.Submission)}
}

func (f *fakeSubmissionRepository) Create(sub *models.Submission) error {
	f.subs[sub.ID] = sub
	return nil
}

func (f *fakeSubmissionRepository) GetByID(id string) (*models.Submission, error) {
	sub, ok := f.subs[id]
	if !ok {
		return nil, apperrors.New(apperrors.NotFound, "pain record not found")
	}
	return sub, nil
}

func (f *fakeSubmissionRepository) GetOwned(id, ownerEmail string) (*models.Submission, error) {
	sub, ok := f.subs[id]
	if !ok || sub.OwnerEmail != ownerEmail {
		return nil, apperrors.New(apperrors.NotFound, "pain record not found")
	}
	return sub, nil
}

func (f *fakeSubmissionRepository) ListByEmail(email string) ([]*models.Submission, error) {
	var out []*models.Submission
	for _, sub := range f.subs {
		if sub.OwnerEmail == email {
			out = append(out, sub)
		}
	}
	return out, nil
}

type fakeAssessmentClient struct {
	result    *gateways.AssessmentResult
	resultErr error
	similar   []gateways.SimilarRecord
	dupErr    error
}

func (f *fakeAssessmentClient) Validate(_ context.Context, _ gateways.AssessmentRequest) (*gateways.AssessmentResult, error) {
	return f.result, f.resultErr
}

func (f *fakeAssessmentClient) CheckDuplicates(_ context.Context, _ gateways.AssessmentRequest) ([]gateways.SimilarRecord, error) {
	return f.similar, f.dupErr
}

type fakeRecommenderClient struct {
	rec   *gateways.Recommendation
	err   error
	calls int
}

func (f *fakeRecommenderClient) Recommend(_ context.Context, _ gateways.RecommendationRequest) (*gateways.Recommendation, error) {
	f.calls++
	return f.rec, f.err
}

type fakeNotifier struct {
	notified []string
	fail     error
}

func (f *fakeNotifier) NotifyUrgent(sub *models.Submission) error {
	f.notified = append(f.notified, sub.ID)
	return f.fail
}

func okAssessment() *gateways.AssessmentResult {
	return &gateways.AssessmentResult{
		Valid:     true,
		Triage:    models.TriageSafeForRemote,
		SessionID: "sess-001",
		Reasons:   []string{},
	}
}

func testIntakeInput() *models.IntakeInput {
	return &models.IntakeInput{
		ChiefComplaint: "sharp pain in the right shoulder when lifting",
		Severity:       6,
		History:        "started two weeks ago after moving furniture",
		Goals:          []string{"lift my arm without pain"},
		InjuryArea:     "shoulder",
	}
}

type intakeFixture struct {
	svc         IntakeService
	submissions *fakeSubmissionRepository
	plans       *fakePlanRepository
	assessment  *fakeAssessmentClient
	recommender *fakeRecommenderClient
	notifier    *fakeNotifier
}

func newIntakeFixture() *intakeFixture {
	f := &intakeFixture{
		submissions: newFakeSubmissionRepository(),
		plans:       newFakePlanRepository(),
		assessment:  &fakeAssessmentClient{result: okAssessment()},
		recommender: &fakeRecommenderClient{rec: testRecommendation()},
		notifier:    &fakeNotifier{},
	}
	f.svc = NewIntakeService(f.submissions, nil, NewPlanService(f.plans), f.assessment, f.recommender, f.notifier)
	return f
}

var testIdentity = models.Identity{UserID: 1, Email: "patient@example.com"}

func TestIntake_HappyPath(t *testing.T) {
	f := newIntakeFixture()

	res, err := f.svc.SubmitAndGeneratePlan(context.Background(), testIdentity, testIntakeInput())
	require.NoError(t, err)
	require.NotNil(t, res.Submission)
	require.NotNil(t, res.Plan)

	assert.Equal(t, "patient@example.com", res.Submission.OwnerEmail)
	assert.Equal(t, models.TriageSafeForRemote, res.Submission.AITriage)
	assert.Equal(t, "sess-001", res.Submission.AISessionID)
	assert.Equal(t, res.Submission.ID, res.Plan.SubmissionID)
	assert.Equal(t, 0, res.Plan.Progress)
	require.Len(t, res.Plan.Items, 3)

	stored, err := f.submissions.GetByID(res.Submission.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, stored.Severity)
	assert.Empty(t, f.notifier.notified)
}

func TestIntake_RequiresIdentity(t *testing.T) {
	f := newIntakeFixture()

	_, err := f.svc.SubmitAndGeneratePlan(context.Background(), models.Identity{}, testIntakeInput())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.Unauthorized))
	assert.Empty(t, f.submissions.subs)
}

func TestIntake_RejectsBadInput(t *testing.T) {
	f := newIntakeFixture()

	cases := []struct {
		name  string
		input *models.IntakeInput
	}{
		{"nil input", nil},
		{"blank complaint", &models.IntakeInput{ChiefComplaint: "   ", Severity: 5}},
		{"severity below range", &models.IntakeInput{ChiefComplaint: "knee pain", Severity: -1}},
		{"severity above range", &models.IntakeInput{ChiefComplaint: "knee pain", Severity: 11}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.SubmitAndGeneratePlan(context.Background(), testIdentity, tc.input)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.BadRequest))
		})
	}
	assert.Empty(t, f.submissions.subs)
}

func TestIntake_AssessmentRejection(t *testing.T) {
	f := newIntakeFixture()
	f.assessment.result = &gateways.AssessmentResult{
		Valid:   false,
		Message: "the description does not look like an injury",
		Reasons: []string{"no body part mentioned"},
	}

	_, err := f.svc.SubmitAndGeneratePlan(context.Background(), testIdentity, testIntakeInput())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.Invalid))

	var ae *apperrors.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, []string{"no body part mentioned"}, ae.Reasons)

	// nothing persisted before the assessment passes
	assert.Empty(t, f.submissions.subs)
	assert.Equal(t, 0, f.recommender.calls)
}

func TestIntake_DuplicateShortCircuits(t *testing.T) {
	f := newIntakeFixture()
	f.assessment.similar = []gateways.SimilarRecord{
		{ID: "prior-1", ChiefComplaint: "shoulder pain", Similarity: 0.93},
		{ID: "prior-2", ChiefComplaint: "shoulder ache", Similarity: 0.88},
	}

	_, err := f.svc.SubmitAndGeneratePlan(context.Background(), testIdentity, testIntakeInput())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.Conflict))

	var ae *apperrors.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, []string{"prior-1", "prior-2"}, ae.SimilarIDs)

	assert.Empty(t, f.submissions.subs)
	assert.Equal(t, 0, f.recommender.calls)
}

func TestIntake_RecommenderFailureKeepsSubmission(t *testing.T) {
	f := newIntakeFixture()
	f.recommender.err = apperrors.New(apperrors.UpstreamUnavailable, "recommender unreachable")

	_, err := f.svc.SubmitAndGeneratePlan(context.Background(), testIdentity, testIntakeInput())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.UpstreamUnavailable))

	// the submission survives so plan generation can be retried alone
	require.Len(t, f.submissions.subs, 1)
	var ae *apperrors.Error
	require.ErrorAs(t, err, &ae)
	assert.NotEmpty(t, ae.SubmissionID)
	_, stored := f.submissions.subs[ae.SubmissionID]
	assert.True(t, stored)
	assert.Empty(t, f.plans.plans)
}

func TestIntake_EmptyRecommendationKeepsSubmission(t *testing.T) {
	f := newIntakeFixture()
	f.recommender.rec = &gateways.Recommendation{Summary: "rest"}

	_, err := f.svc.SubmitAndGeneratePlan(context.Background(), testIdentity, testIntakeInput())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.Invalid))

	var ae *apperrors.Error
	require.ErrorAs(t, err, &ae)
	assert.NotEmpty(t, ae.SubmissionID)
	require.Len(t, f.submissions.subs, 1)
}

func TestIntake_UrgentTriageNotifies(t *testing.T) {
	f := newIntakeFixture()
	f.assessment.result.Triage = models.TriageUrgentReferral

	res, err := f.svc.SubmitAndGeneratePlan(context.Background(), testIdentity, testIntakeInput())
	require.NoError(t, err)
	require.Len(t, f.notifier.notified, 1)
	assert.Equal(t, res.Submission.ID, f.notifier.notified[0])
}

func TestIntake_NotifierFailureDoesNotFailPipeline(t *testing.T) {
	f := newIntakeFixture()
	f.assessment.result.Triage = models.TriageUrgentReferral
	f.notifier.fail = assert.AnError

	res, err := f.svc.SubmitAndGeneratePlan(context.Background(), testIdentity, testIntakeInput())
	require.NoError(t, err)
	require.NotNil(t, res.Plan)
}

func TestIntake_RegeneratePlan(t *testing.T) {
	f := newIntakeFixture()
	f.recommender.err = apperrors.New(apperrors.UpstreamUnavailable, "recommender unreachable")

	_, err := f.svc.SubmitAndGeneratePlan(context.Background(), testIdentity, testIntakeInput())
	require.Error(t, err)
	var ae *apperrors.Error
	require.ErrorAs(t, err, &ae)
	subID := ae.SubmissionID
	require.NotEmpty(t, subID)

	// the recommender recovers
	f.recommender.err = nil

	plan, err := f.svc.RegeneratePlan(context.Background(), testIdentity, subID)
	require.NoError(t, err)
	assert.Equal(t, subID, plan.SubmissionID)
	assert.Len(t, plan.Items, 3)
}

func TestIntake_RegeneratePlanConflictsWhenPlanExists(t *testing.T) {
	f := newIntakeFixture()

	res, err := f.svc.SubmitAndGeneratePlan(context.Background(), testIdentity, testIntakeInput())
	require.NoError(t, err)

	_, err = f.svc.RegeneratePlan(context.Background(), testIdentity, res.Submission.ID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.Conflict))
}

func TestIntake_RegeneratePlanHidesForeignSubmissions(t *testing.T) {
	f := newIntakeFixture()

	res, err := f.svc.SubmitAndGeneratePlan(context.Background(), testIdentity, testIntakeInput())
	require.NoError(t, err)

	stranger := models.Identity{UserID: 2, Email: "stranger@example.com"}
	_, err = f.svc.RegeneratePlan(context.Background(), stranger, res.Submission.ID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.NotFound))
}
