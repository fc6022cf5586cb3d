package services

import (
	"crypto/rand"
	"log"
	"math/big"
	"regexp"
	"strings"
	"time"

	"physioplan/internal/apperrors"
)

const defaultCodeTTL = 5 * time.Minute

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// VerificationService is the OTP gate in front of registration: an email
// address must prove it is reachable before an account can be created.
type VerificationService interface {
	IssueCode(email string) error
	ConsumeCode(email, code string) error
	IsVerified(email string) bool
	// Invalidate removes the verified mark once registration succeeded,
	// so re-registration requires a fresh code.
	Invalidate(email string)
}

type verificationService struct {
	store   TicketStore
	emails  EmailService
	codeTTL time.Duration
	now     func() time.Time
}

func NewVerificationService(store TicketStore, emails EmailService, codeTTL time.Duration) VerificationService {
	if codeTTL <= 0 {
		codeTTL = defaultCodeTTL
	}
	return &verificationService{
		store:   store,
		emails:  emails,
		codeTTL: codeTTL,
		now:     time.Now,
	}
}

// generateCode returns a six-digit code uniform over [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return (n.Add(n, big.NewInt(100000))).String(), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *verificationService) IssueCode(email string) error {
	email = normalizeEmail(email)
	if email == "" || !emailPattern.MatchString(email) {
		return apperrors.New(apperrors.BadRequest, "a valid email is required")
	}

	code, err := generateCode()
	if err != nil {
		return apperrors.Wrap(apperrors.Internal, "generate verification code", err)
	}

	issuedAt := s.now()
	s.store.Put(Ticket{
		Email:     email,
		Code:      code,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(s.codeTTL),
	})

	if err := s.emails.SendVerificationCode(email, code, s.codeTTL); err != nil {
		return apperrors.Wrap(apperrors.Internal, "send verification email", err)
	}
	log.Printf("[verify][issue] code sent email=%s ttl=%s", email, s.codeTTL)
	return nil
}

func (s *verificationService) ConsumeCode(email, code string) error {
	email = normalizeEmail(email)
	t, ok := s.store.Get(email)
	if !ok {
		return apperrors.New(apperrors.NotFound, "no code was sent to this email")
	}
	if s.now().After(t.ExpiresAt) {
		s.store.Delete(email)
		return apperrors.New(apperrors.Expired, "code expired, please request a new one")
	}
	if t.Code != strings.TrimSpace(code) {
		return apperrors.New(apperrors.Mismatch, "invalid code")
	}

	s.store.Delete(email)
	s.store.MarkVerified(email)
	log.Printf("[verify][consume] OK email=%s", email)
	return nil
}

func (s *verificationService) IsVerified(email string) bool {
	return s.store.IsVerified(normalizeEmail(email))
}

func (s *verificationService) Invalidate(email string) {
	s.store.ClearVerified(normalizeEmail(email))
}
