package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"physioplan/internal/apperrors"
	"physioplan/internal/models"
)

type PlanRepository interface {
	Create(plan *models.Plan) error
	GetByID(id string) (*models.Plan, error)
	GetBySubmissionID(submissionID string) (*models.Plan, error)
	ListByEmail(email string) ([]*models.Plan, error)
	// UpdateAtomic runs mutate against the current row inside one
	// transaction with the row locked, so two concurrent completion updates
	// on the same plan serialize instead of losing writes.
	UpdateAtomic(id string, mutate func(plan *models.Plan) error) (*models.Plan, error)
}

type planRepository struct {
	db *sql.DB
}

func NewPlanRepository(db *sql.DB) PlanRepository {
	if db == nil {
		log.Fatalf("received nil database connection")
	}
	return &planRepository{db: db}
}

const planColumns = `id, owner_email, submission_id, summary, items, progress, created_at`

func scanPlan(scan func(dest ...any) error) (*models.Plan, error) {
	p := &models.Plan{}
	var items []byte
	err := scan(&p.ID, &p.OwnerEmail, &p.SubmissionID, &p.Summary, &items, &p.Progress, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.New(apperrors.NotFound, "plan not found")
	}
	if err != nil {
		return nil, fmt.Errorf("scan plan: %w", err)
	}
	if err := json.Unmarshal(items, &p.Items); err != nil {
		return nil, fmt.Errorf("decode plan items: %w", err)
	}
	if p.Items == nil {
		p.Items = []models.ExerciseItem{}
	}
	return p, nil
}

func (r *planRepository) Create(plan *models.Plan) error {
	items, err := json.Marshal(plan.Items)
	if err != nil {
		return fmt.Errorf("encode plan items: %w", err)
	}
	const query = `
		INSERT INTO plans (id, owner_email, submission_id, summary, items, progress, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.db.Exec(query, plan.ID, plan.OwnerEmail, plan.SubmissionID, plan.Summary, items,
		plan.Progress, plan.CreatedAt)
	if err != nil {
		// unique constraint on submission_id: one plan per submission
		if isUniqueViolation(err) {
			return apperrors.New(apperrors.Conflict, "a plan already exists for this pain record")
		}
		return fmt.Errorf("plan create: %w", err)
	}
	return nil
}

func (r *planRepository) GetByID(id string) (*models.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE id=$1`
	row := r.db.QueryRow(query, id)
	return scanPlan(row.Scan)
}

func (r *planRepository) GetBySubmissionID(submissionID string) (*models.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE submission_id=$1`
	row := r.db.QueryRow(query, submissionID)
	return scanPlan(row.Scan)
}

func (r *planRepository) ListByEmail(email string) ([]*models.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE owner_email=$1 ORDER BY created_at DESC`
	rows, err := r.db.Query(query, email)
	if err != nil {
		return nil, fmt.Errorf("plan list: %w", err)
	}
	defer rows.Close()

	plans := []*models.Plan{}
	for rows.Next() {
		p, err := scanPlan(rows.Scan)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

func (r *planRepository) UpdateAtomic(id string, mutate func(plan *models.Plan) error) (*models.Plan, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("plan update begin: %w", err)
	}
	defer tx.Rollback()

	query := `SELECT ` + planColumns + ` FROM plans WHERE id=$1 FOR UPDATE`
	plan, err := scanPlan(tx.QueryRow(query, id).Scan)
	if err != nil {
		return nil, err
	}

	if err := mutate(plan); err != nil {
		return nil, err
	}

	items, err := json.Marshal(plan.Items)
	if err != nil {
		return nil, fmt.Errorf("encode plan items: %w", err)
	}
	const update = `UPDATE plans SET items=$1, progress=$2 WHERE id=$3`
	if _, err := tx.Exec(update, items, plan.Progress, id); err != nil {
		return nil, fmt.Errorf("plan update: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("plan update commit: %w", err)
	}
	return plan, nil
}
