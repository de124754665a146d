package auth

import (
	"strconv"
	"testing"

	"github.com/Adithya-charan/docuExtract/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSignupValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     SignupRequest
		wantErr bool
	}{
		{"valid", SignupRequest{Name: "Ana", Email: "ana@example.com", Phone: "5551234567", Password: "hunter22"}, false},
		{"bad email", SignupRequest{Name: "Ana", Email: "ana-at-example", Phone: "5551234567", Password: "hunter22"}, true},
		{"short password", SignupRequest{Name: "Ana", Email: "ana@example.com", Phone: "5551234567", Password: "abc"}, true},
		{"missing name", SignupRequest{Email: "ana@example.com", Phone: "5551234567", Password: "hunter22"}, true},
		{"short phone", SignupRequest{Name: "Ana", Email: "ana@example.com", Phone: "123", Password: "hunter22"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	r := SignupRequest{Name: " Ana ", Email: " Ana@Example.COM ", Phone: " 555 "}.Normalize()
	assert.Equal(t, "Ana", r.Name)
	assert.Equal(t, "ana@example.com", r.Email)
	assert.Equal(t, "555", r.Phone)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("password", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, "password", hash)
	assert.True(t, CheckPassword(hash, "password"))
	assert.False(t, CheckPassword(hash, "Password"))
	assert.False(t, CheckPassword("not-a-hash", "password"))
}

func TestOTP(t *testing.T) {
	var otp OTP

	err := otp.Verify("123456")
	assert.True(t, models.IsType(err, models.ErrorTypeInvalidCredential))

	code, err := otp.Issue()
	require.NoError(t, err)
	require.Len(t, code, 6)
	n, err := strconv.Atoi(code)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 100000)
	assert.LessOrEqual(t, n, 999999)

	wrong := "000000"
	err = otp.Verify(wrong)
	assert.True(t, models.IsType(err, models.ErrorTypeInvalidCredential))

	assert.NoError(t, otp.Verify(code))
	assert.Error(t, otp.Verify(code), "a code is consumed on success")
}
