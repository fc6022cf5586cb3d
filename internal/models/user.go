package models

import "time"

type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	PhoneNumber  string    `json:"phone_number,omitempty"`
	DateOfBirth  time.Time `json:"date_of_birth"`
	Age          int       `json:"age"` // derived from DateOfBirth, never set directly
	Gender       string    `json:"gender"`
	CreatedAt    time.Time `json:"created_at"`

	// refresh-token storage (opaque, rotated on use)
	RefreshToken     *string    `json:"-"`
	RefreshExpiresAt *time.Time `json:"-"`
	RefreshRevoked   bool       `json:"-"`
}

// Identity is the trusted identity extracted from a bearer token,
// carried through the handlers into the intake pipeline.
type Identity struct {
	UserID int
	Email  string
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	PhoneNumber string `json:"phone_number"`
	DateOfBirth string `json:"date_of_birth" binding:"required"` // YYYY-MM-DD
	Gender      string `json:"gender" binding:"required"`
}

// AgeAt computes full years between dob and now.
func AgeAt(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	anniversary := time.Date(now.Year(), dob.Month(), dob.Day(), 0, 0, 0, 0, now.Location())
	if now.Before(anniversary) {
		age--
	}
	if age < 0 {
		age = 0
	}
	return age
}
