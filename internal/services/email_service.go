package services

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"
)

type EmailService interface {
	SendVerificationCode(email, code string, ttl time.Duration) error
	SendWelcomeEmail(email, name string) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func (s *emailService) SendVerificationCode(email, code string, ttl time.Duration) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Your PhysioPlan verification code")

	body := fmt.Sprintf(`
		<h3>Email verification</h3>
		<p>Your verification code is <strong>%s</strong>.</p>
		<p>It expires in %d minutes.</p>
		<p>If you did not request this code, you can ignore this email.</p>
	`, code, int(ttl.Minutes()))

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	return nil
}

func (s *emailService) SendWelcomeEmail(email, name string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Welcome to PhysioPlan!")

	body := fmt.Sprintf(`
		<h2>Welcome to PhysioPlan, %s!</h2>
		<p>Your account has been successfully created.</p>
		<p>You can now report an injury and get a personal exercise plan.</p>
		<p>Best regards,<br>The PhysioPlan Team</p>
	`, name)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}

	return nil
}
