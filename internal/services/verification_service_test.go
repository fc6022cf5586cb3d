package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"physioplan/internal/apperrors"
)

type fakeEmailService struct {
	sentTo   []string
	lastCode string
	fail     error
}

func (f *fakeEmailService) SendVerificationCode(email, code string, _ time.Duration) error {
	if f.fail != nil {
		return f.fail
	}
	f.sentTo = append(f.sentTo, email)
	f.lastCode = code
	return nil
}

func (f *fakeEmailService) SendWelcomeEmail(email, name string) error { return nil }

func newTestVerification(t *testing.T) (*verificationService, TicketStore, *fakeEmailService) {
	t.Helper()
	store := NewMemoryTicketStore(16)
	emails := &fakeEmailService{}
	svc := NewVerificationService(store, emails, 5*time.Minute).(*verificationService)
	return svc, store, emails
}

func TestVerification_IssueConsume(t *testing.T) {
	svc, _, emails := newTestVerification(t)

	require.NoError(t, svc.IssueCode("Patient@Example.com"))
	require.Len(t, emails.sentTo, 1)
	assert.Equal(t, "patient@example.com", emails.sentTo[0])
	assert.Len(t, emails.lastCode, 6)

	require.NoError(t, svc.ConsumeCode("patient@example.com", emails.lastCode))
	assert.True(t, svc.IsVerified("patient@example.com"))

	// normalization applies on every entry point
	assert.True(t, svc.IsVerified("  PATIENT@example.com "))
}

func TestVerification_CodeIsSingleUse(t *testing.T) {
	svc, _, emails := newTestVerification(t)

	require.NoError(t, svc.IssueCode("patient@example.com"))
	require.NoError(t, svc.ConsumeCode("patient@example.com", emails.lastCode))

	err := svc.ConsumeCode("patient@example.com", emails.lastCode)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.NotFound))
}

func TestVerification_WrongCodeKeepsTicket(t *testing.T) {
	svc, store, emails := newTestVerification(t)

	require.NoError(t, svc.IssueCode("patient@example.com"))

	err := svc.ConsumeCode("patient@example.com", "000000")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.Mismatch))
	assert.False(t, svc.IsVerified("patient@example.com"))

	// the ticket survives a wrong guess, so the right code still works
	_, ok := store.Get("patient@example.com")
	require.True(t, ok)
	require.NoError(t, svc.ConsumeCode("patient@example.com", emails.lastCode))
}

func TestVerification_ExpiredCode(t *testing.T) {
	svc, store, emails := newTestVerification(t)

	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }
	require.NoError(t, svc.IssueCode("patient@example.com"))

	svc.now = func() time.Time { return issued.Add(5*time.Minute + time.Second) }
	err := svc.ConsumeCode("patient@example.com", emails.lastCode)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.Expired))

	// an expired ticket is dropped on first sight
	_, ok := store.Get("patient@example.com")
	assert.False(t, ok)
}

func TestVerification_RejectsBadEmail(t *testing.T) {
	svc, _, _ := newTestVerification(t)

	for _, email := range []string{"", "not-an-email", "missing@tld", "two@@example.com"} {
		err := svc.IssueCode(email)
		require.Error(t, err, "email %q", email)
		assert.True(t, apperrors.Is(err, apperrors.BadRequest), "email %q", email)
	}
}

func TestVerification_SendFailureSurfaces(t *testing.T) {
	store := NewMemoryTicketStore(16)
	emails := &fakeEmailService{fail: errors.New("smtp down")}
	svc := NewVerificationService(store, emails, 0)

	err := svc.IssueCode("patient@example.com")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.Internal))
}

func TestVerification_InvalidateClearsMark(t *testing.T) {
	svc, _, emails := newTestVerification(t)

	require.NoError(t, svc.IssueCode("patient@example.com"))
	require.NoError(t, svc.ConsumeCode("patient@example.com", emails.lastCode))
	require.True(t, svc.IsVerified("patient@example.com"))

	svc.Invalidate("patient@example.com")
	assert.False(t, svc.IsVerified("patient@example.com"))
}

func TestGenerateCode_SixDigits(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := generateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		assert.GreaterOrEqual(t, code[0], byte('1'))
	}
}
