package repositories

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"physioplan/internal/apperrors"
	"physioplan/internal/models"
)

type UserRepository interface {
	Create(user *models.User) error
	GetByID(id int) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	UpdateRefresh(id int, token string, expiresAt time.Time) error
	GetByRefreshToken(token string) (*models.User, error)
	RotateRefresh(oldToken, newToken string, expiresAt time.Time) (*models.User, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	if db == nil {
		log.Fatalf("received nil database connection")
	}
	return &userRepository{db: db}
}

const userColumns = `id, name, email, password_hash, phone_number, date_of_birth, age, gender, created_at,
	refresh_token, refresh_expires_at, refresh_revoked`

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var phone sql.NullString
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &phone, &u.DateOfBirth, &u.Age, &u.Gender,
		&u.CreatedAt, &u.RefreshToken, &u.RefreshExpiresAt, &u.RefreshRevoked)
	if err == sql.ErrNoRows {
		return nil, apperrors.New(apperrors.NotFound, "user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.PhoneNumber = phone.String
	return u, nil
}

func (r *userRepository) Create(user *models.User) error {
	const query = `
		INSERT INTO users (name, email, password_hash, phone_number, date_of_birth, age, gender, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8)
		RETURNING id
	`
	err := r.db.QueryRow(query, user.Name, user.Email, user.PasswordHash, user.PhoneNumber,
		user.DateOfBirth, user.Age, user.Gender, user.CreatedAt).Scan(&user.ID)
	if err != nil {
		return fmt.Errorf("user create: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(id int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return scanUser(r.db.QueryRow(query, id))
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return scanUser(r.db.QueryRow(query, email))
}

func (r *userRepository) Update(user *models.User) error {
	const query = `
		UPDATE users
		SET name=$1, phone_number=NULLIF($2, ''), date_of_birth=$3, age=$4, gender=$5
		WHERE id=$6
	`
	res, err := r.db.Exec(query, user.Name, user.PhoneNumber, user.DateOfBirth, user.Age, user.Gender, user.ID)
	if err != nil {
		return fmt.Errorf("user update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.New(apperrors.NotFound, "user not found")
	}
	return nil
}

func (r *userRepository) UpdateRefresh(id int, token string, expiresAt time.Time) error {
	const query = `
		UPDATE users
		SET refresh_token=$1, refresh_expires_at=$2, refresh_revoked=FALSE
		WHERE id=$3
	`
	_, err := r.db.Exec(query, token, expiresAt, id)
	return err
}

func (r *userRepository) GetByRefreshToken(token string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE refresh_token=$1`
	return scanUser(r.db.QueryRow(query, token))
}

// RotateRefresh swaps the stored refresh token in one statement so two
// concurrent refresh calls cannot both succeed with the old token.
func (r *userRepository) RotateRefresh(oldToken, newToken string, expiresAt time.Time) (*models.User, error) {
	query := `
		UPDATE users
		SET refresh_token=$1, refresh_expires_at=$2
		WHERE refresh_token=$3 AND refresh_revoked=FALSE
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(query, newToken, expiresAt, oldToken))
}
