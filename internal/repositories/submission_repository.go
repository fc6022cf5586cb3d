package repositories

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/lib/pq"

	"physioplan/internal/apperrors"
	"physioplan/internal/models"
)

type SubmissionRepository interface {
	Create(sub *models.Submission) error
	GetByID(id string) (*models.Submission, error)
	GetOwned(id, ownerEmail string) (*models.Submission, error)
	ListByEmail(email string) ([]*models.Submission, error)
}

type submissionRepository struct {
	db *sql.DB
}

func NewSubmissionRepository(db *sql.DB) SubmissionRepository {
	if db == nil {
		log.Fatalf("received nil database connection")
	}
	return &submissionRepository{db: db}
}

const submissionColumns = `id, owner_id, owner_email, chief_complaint, pain_severity, history, goals,
	extra_context, injury_area, doctor_slip_path, ai_session_id, ai_triage, ai_reasons, created_at`

func scanSubmission(scan func(dest ...any) error) (*models.Submission, error) {
	s := &models.Submission{}
	var injuryArea, slipPath, sessionID, triage sql.NullString
	err := scan(&s.ID, &s.OwnerID, &s.OwnerEmail, &s.ChiefComplaint, &s.Severity, &s.History,
		pq.Array(&s.Goals), &s.ExtraContext, &injuryArea, &slipPath, &sessionID, &triage,
		pq.Array(&s.AIReasons), &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.New(apperrors.NotFound, "pain record not found")
	}
	if err != nil {
		return nil, fmt.Errorf("scan submission: %w", err)
	}
	s.InjuryArea = injuryArea.String
	s.DoctorSlipPath = slipPath.String
	s.AISessionID = sessionID.String
	s.AITriage = triage.String
	if s.Goals == nil {
		s.Goals = []string{}
	}
	if s.AIReasons == nil {
		s.AIReasons = []string{}
	}
	return s, nil
}

func (r *submissionRepository) Create(sub *models.Submission) error {
	const query = `
		INSERT INTO pain_data (id, owner_id, owner_email, chief_complaint, pain_severity, history, goals,
			extra_context, injury_area, doctor_slip_path, ai_session_id, ai_triage, ai_reasons, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, ''), NULLIF($12, ''), $13, $14)
	`
	_, err := r.db.Exec(query, sub.ID, sub.OwnerID, sub.OwnerEmail, sub.ChiefComplaint, sub.Severity,
		sub.History, pq.Array(sub.Goals), sub.ExtraContext, sub.InjuryArea, sub.DoctorSlipPath,
		sub.AISessionID, sub.AITriage, pq.Array(sub.AIReasons), sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("submission create: %w", err)
	}
	return nil
}

func (r *submissionRepository) GetByID(id string) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM pain_data WHERE id=$1`
	row := r.db.QueryRow(query, id)
	return scanSubmission(row.Scan)
}

func (r *submissionRepository) GetOwned(id, ownerEmail string) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM pain_data WHERE id=$1 AND owner_email=$2`
	row := r.db.QueryRow(query, id, ownerEmail)
	return scanSubmission(row.Scan)
}

func (r *submissionRepository) ListByEmail(email string) ([]*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM pain_data WHERE owner_email=$1 ORDER BY created_at DESC`
	rows, err := r.db.Query(query, email)
	if err != nil {
		return nil, fmt.Errorf("submission list: %w", err)
	}
	defer rows.Close()

	subs := []*models.Submission{}
	for rows.Next() {
		s, err := scanSubmission(rows.Scan)
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}
