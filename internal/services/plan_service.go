package services

import (
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"physioplan/internal/apperrors"
	"physioplan/internal/gateways"
	"physioplan/internal/models"
	"physioplan/internal/repositories"
)

type PlanService interface {
	CreateForSubmission(sub *models.Submission, rec *gateways.Recommendation) (*models.Plan, error)
	GetByID(id string) (*models.Plan, error)
	GetOwned(id, ownerEmail string) (*models.Plan, error)
	GetBySubmission(submissionID, ownerEmail string) (*models.Plan, error)
	ListByEmail(email string) ([]*models.Plan, error)
	ApplyCompletion(ownerEmail, planID string, itemIndex, completed int) (*models.Plan, error)
}

type planService struct {
	repo repositories.PlanRepository
}

func NewPlanService(repo repositories.PlanRepository) PlanService {
	return &planService{repo: repo}
}

// CreateForSubmission turns the recommender output into a stored Plan. All
// items start with zero completed sets, so the initial progress is 0.
func (s *planService) CreateForSubmission(sub *models.Submission, rec *gateways.Recommendation) (*models.Plan, error) {
	if rec == nil || len(rec.Exercises) == 0 {
		return nil, apperrors.New(apperrors.Invalid, "recommender returned an empty exercise list")
	}

	items := make([]models.ExerciseItem, 0, len(rec.Exercises))
	for _, ex := range rec.Exercises {
		item, err := normalizeItem(ex)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	plan := &models.Plan{
		ID:           uuid.NewString(),
		OwnerEmail:   sub.OwnerEmail,
		SubmissionID: sub.ID,
		Summary:      rec.Summary,
		Items:        items,
		Progress:     RecomputeProgress(items),
		CreatedAt:    time.Now(),
	}
	if err := s.repo.Create(plan); err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "store plan", err)
	}
	log.Printf("[plans][create] id=%s pain_data_id=%s items=%d", plan.ID, plan.SubmissionID, len(plan.Items))
	return plan, nil
}

func normalizeItem(ex gateways.RecommendedExercise) (models.ExerciseItem, error) {
	name := strings.TrimSpace(ex.Name)
	if name == "" {
		return models.ExerciseItem{}, apperrors.New(apperrors.Invalid, "recommender returned an exercise without a name")
	}

	kind := strings.ToLower(strings.TrimSpace(ex.Type))
	switch kind {
	case models.ExerciseRepetition, models.ExerciseHold:
	case "":
		// the discriminant follows whichever target the recommender filled in
		if ex.HoldTime > 0 && ex.Reps == 0 {
			kind = models.ExerciseHold
		} else {
			kind = models.ExerciseRepetition
		}
	default:
		return models.ExerciseItem{}, apperrors.Newf(apperrors.Invalid, "unknown exercise type %q", ex.Type)
	}

	item := models.ExerciseItem{
		Name:        name,
		Type:        kind,
		Sets:        ex.Sets,
		TargetArea:  strings.TrimSpace(ex.TargetArea),
		Difficulty:  strings.ToLower(strings.TrimSpace(ex.Difficulty)),
		Equipment:   strings.TrimSpace(ex.Equipment),
		Frequency:   strings.TrimSpace(ex.Frequency),
		Precautions: strings.TrimSpace(ex.Precautions),
		Description: strings.TrimSpace(ex.Description),
		DemoVideo:   strings.TrimSpace(ex.DemoVideo),
	}
	if kind == models.ExerciseRepetition {
		item.Reps = ex.Reps
		if item.Reps <= 0 {
			item.Reps = 10
		}
	} else {
		item.HoldTime = ex.HoldTime
		if item.HoldTime <= 0 {
			item.HoldTime = 30
		}
	}
	if item.Sets < models.MinSets || item.Sets > models.MaxSets {
		item.Sets = 3
	}
	switch item.Difficulty {
	case "easy", "medium", "hard":
	default:
		item.Difficulty = "easy"
	}
	if item.Equipment == "" {
		item.Equipment = "None"
	}
	return item, nil
}

func (s *planService) GetByID(id string) (*models.Plan, error) {
	return s.repo.GetByID(id)
}

func (s *planService) GetOwned(id, ownerEmail string) (*models.Plan, error) {
	plan, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	// foreign plans look absent, not forbidden
	if plan.OwnerEmail != normalizeEmail(ownerEmail) {
		return nil, apperrors.New(apperrors.NotFound, "plan not found")
	}
	return plan, nil
}

func (s *planService) GetBySubmission(submissionID, ownerEmail string) (*models.Plan, error) {
	plan, err := s.repo.GetBySubmissionID(submissionID)
	if err != nil {
		return nil, err
	}
	if plan.OwnerEmail != normalizeEmail(ownerEmail) {
		return nil, apperrors.New(apperrors.NotFound, "plan not found")
	}
	return plan, nil
}

func (s *planService) ListByEmail(email string) ([]*models.Plan, error) {
	return s.repo.ListByEmail(normalizeEmail(email))
}

// ApplyCompletion sets one item's completed-set count and recomputes the
// aggregate inside the store's atomic read-modify-write, so the progress
// invariant holds the moment the write is durable.
func (s *planService) ApplyCompletion(ownerEmail, planID string, itemIndex, completed int) (*models.Plan, error) {
	owner := normalizeEmail(ownerEmail)
	plan, err := s.repo.UpdateAtomic(planID, func(plan *models.Plan) error {
		if plan.OwnerEmail != owner {
			return apperrors.New(apperrors.NotFound, "plan not found")
		}
		if itemIndex < 0 || itemIndex >= len(plan.Items) {
			return apperrors.Newf(apperrors.OutOfRange, "exercise index %d is out of range", itemIndex)
		}
		item := &plan.Items[itemIndex]
		if completed < 0 || completed > item.Sets {
			return apperrors.Newf(apperrors.OutOfRange, "completed sets must be between 0 and %d", item.Sets)
		}
		item.CompletedSets = completed
		plan.Progress = RecomputeProgress(plan.Items)
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[plans][completion] id=%s item=%d completed=%d progress=%d", planID, itemIndex, completed, plan.Progress)
	return plan, nil
}
