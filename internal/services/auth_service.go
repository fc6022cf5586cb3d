package services

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/golang-jwt/jwt/v5"

	"physioplan/internal/middleware"
)

type AuthService interface {
	HashPassword(plain string) (string, error)
	CheckPassword(hash, plain string) bool
	NewAccessToken(userID int, email string) (string, error)
}

type authService struct {
	accessTTL time.Duration
}

func NewAuthService(accessTTL time.Duration) AuthService {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	return &authService{accessTTL: accessTTL}
}

func (s *authService) HashPassword(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (s *authService) CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

func (s *authService) NewAccessToken(userID int, email string) (string, error) {
	claims := &middleware.Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.accessTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(middleware.JWTKey)
}
