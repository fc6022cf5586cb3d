package services

import (
	"log"
	"strings"
	"time"

	"physioplan/internal/apperrors"
	"physioplan/internal/models"
	"physioplan/internal/repositories"
)

type UserService interface {
	Register(req *models.RegisterRequest) (*models.User, error)
	GetByID(id int) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	UpdateProfile(id int, upd *ProfileUpdate) (*models.User, error)
	UpdateRefresh(id int, token string, expiresAt time.Time) error
	GetByRefreshToken(token string) (*models.User, error)
	RotateRefresh(oldToken, newToken string, expiresAt time.Time) (*models.User, error)
}

// ProfileUpdate carries the mutable profile fields. Age is absent on
// purpose: it is derived from DateOfBirth and never settable.
type ProfileUpdate struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	DateOfBirth string `json:"date_of_birth"` // YYYY-MM-DD
	Gender      string `json:"gender"`
}

type userService struct {
	repo         repositories.UserRepository
	emailService EmailService
	authService  AuthService
	verification VerificationService
}

func NewUserService(repo repositories.UserRepository, emailService EmailService, authService AuthService, verification VerificationService) UserService {
	return &userService{
		repo:         repo,
		emailService: emailService,
		authService:  authService,
		verification: verification,
	}
}

func (s *userService) Register(req *models.RegisterRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)
	if email == "" || !emailPattern.MatchString(email) {
		return nil, apperrors.New(apperrors.BadRequest, "a valid email is required")
	}
	if strings.TrimSpace(req.Password) == "" {
		return nil, apperrors.New(apperrors.BadRequest, "password is required")
	}
	if len(req.Password) < 6 {
		return nil, apperrors.New(apperrors.BadRequest, "password must be at least 6 characters")
	}
	gender := strings.ToLower(strings.TrimSpace(req.Gender))
	if gender != "male" && gender != "female" {
		return nil, apperrors.New(apperrors.BadRequest, "gender must be male or female")
	}
	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		return nil, apperrors.New(apperrors.BadRequest, "date_of_birth must be YYYY-MM-DD")
	}
	if dob.After(time.Now()) {
		return nil, apperrors.New(apperrors.BadRequest, "date_of_birth is in the future")
	}

	// registration is gated on a consumed email-verification code
	if !s.verification.IsVerified(email) {
		return nil, apperrors.New(apperrors.BadRequest, "email is not verified")
	}

	if existing, err := s.repo.GetByEmail(email); err == nil && existing != nil {
		return nil, apperrors.New(apperrors.Conflict, "an account with this email already exists")
	}

	hash, err := s.authService.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "hash password", err)
	}

	now := time.Now()
	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
		DateOfBirth:  dob,
		Age:          models.AgeAt(dob, now),
		Gender:       gender,
		CreatedAt:    now,
	}
	if err := s.repo.Create(user); err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "create user", err)
	}

	// the verified mark is single-use
	s.verification.Invalidate(email)

	if s.emailService != nil {
		if err := s.emailService.SendWelcomeEmail(user.Email, user.Name); err != nil {
			// warn but do not fail registration
			log.Printf("[users][register] warning: failed to send welcome email to %s: %v", user.Email, err)
		}
	}

	return user, nil
}

func (s *userService) GetByID(id int) (*models.User, error) {
	return s.repo.GetByID(id)
}

func (s *userService) GetByEmail(email string) (*models.User, error) {
	return s.repo.GetByEmail(normalizeEmail(email))
}

func (s *userService) UpdateProfile(id int, upd *ProfileUpdate) (*models.User, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(upd.Name); name != "" {
		user.Name = name
	}
	if phone := strings.TrimSpace(upd.PhoneNumber); phone != "" {
		user.PhoneNumber = phone
	}
	if g := strings.ToLower(strings.TrimSpace(upd.Gender)); g != "" {
		if g != "male" && g != "female" {
			return nil, apperrors.New(apperrors.BadRequest, "gender must be male or female")
		}
		user.Gender = g
	}
	if upd.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", upd.DateOfBirth)
		if err != nil {
			return nil, apperrors.New(apperrors.BadRequest, "date_of_birth must be YYYY-MM-DD")
		}
		user.DateOfBirth = dob
		// age always follows the date of birth
		user.Age = models.AgeAt(dob, time.Now())
	}

	if err := s.repo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) UpdateRefresh(id int, token string, expiresAt time.Time) error {
	return s.repo.UpdateRefresh(id, token, expiresAt)
}

func (s *userService) GetByRefreshToken(token string) (*models.User, error) {
	return s.repo.GetByRefreshToken(token)
}

func (s *userService) RotateRefresh(oldToken, newToken string, expiresAt time.Time) (*models.User, error) {
	return s.repo.RotateRefresh(oldToken, newToken, expiresAt)
}
