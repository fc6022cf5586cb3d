package services

import (
	"physioplan/internal/models"
	"physioplan/internal/repositories"
)

// SubmissionQueries is the read-only surface over stored pain records;
// writes happen only inside the intake pipeline.
type SubmissionQueries interface {
	ListByEmail(email string) ([]*models.Submission, error)
	GetOwned(id, ownerEmail string) (*models.Submission, error)
}

type submissionQueries struct {
	repo repositories.SubmissionRepository
}

func NewSubmissionQueries(repo repositories.SubmissionRepository) SubmissionQueries {
	return &submissionQueries{repo: repo}
}

func (s *submissionQueries) ListByEmail(email string) ([]*models.Submission, error) {
	return s.repo.ListByEmail(normalizeEmail(email))
}

func (s *submissionQueries) GetOwned(id, ownerEmail string) (*models.Submission, error) {
	return s.repo.GetOwned(id, normalizeEmail(ownerEmail))
}
