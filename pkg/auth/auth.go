package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/Adithya-charan/docuExtract/internal/models"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

var validate = validator.New()

type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,min=7"`
	Password string `json:"password" validate:"required,min=6"`
}

func (r SignupRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid signup request: %w", err)
	}
	return nil
}

// Normalize trims the request and lower-cases the email.
func (r SignupRequest) Normalize() SignupRequest {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
	return r
}

func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// OTP holds the one-time code for a pending signup.
type OTP struct {
	mu   sync.Mutex
	code string
}

// Issue generates a fresh six-digit code, replacing any previous one.
func (o *OTP) Issue() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64()+100000)

	o.mu.Lock()
	o.code = code
	o.mu.Unlock()
	return code, nil
}

// Verify consumes the issued code when it matches.
func (o *OTP) Verify(code string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.code == "" {
		return models.NewInvalidCredentialError("no verification code was issued")
	}
	if subtle.ConstantTimeCompare([]byte(o.code), []byte(strings.TrimSpace(code))) != 1 {
		return models.NewInvalidCredentialError("invalid verification code")
	}
	o.code = ""
	return nil
}
