package service

import (
	"testing"

	"bootcamp_backend/internal/config"
	"bootcamp_backend/internal/model"
	"bootcamp_backend/internal/repository"
	"bootcamp_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthService(db *gorm.DB) *AuthService {
	cfg := &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret", ExpirationHours: 1},
	}
	return NewAuthService(cfg, repository.NewUserRepository(db))
}

func TestRegister_NormalizesEmailAndRejectsDuplicates(t *testing.T) {
	db := newTestDB(t)
	s := newAuthService(db)

	user, err := s.Register("Grace", "  Grace@Example.COM ", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", user.Email)
	assert.Equal(t, model.Student, user.Role, "self-registration is always a student account")
	assert.NotEqual(t, "hunter2hunter2", user.Password, "password must be stored hashed")

	_, err = s.Register("Grace Again", "grace@example.com", "hunter2hunter2")
	assert.ErrorIs(t, err, util.ErrEmailRegistered)
}

func TestLogin_IssuesParsableToken(t *testing.T) {
	db := newTestDB(t)
	s := newAuthService(db)

	_, err := s.Register("Grace", "grace@example.com", "hunter2hunter2")
	require.NoError(t, err)

	token, user, err := s.Login("grace@example.com", "hunter2hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := util.ParseJWT(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, model.Student, claims.Role)
	assert.False(t, claims.IsReviewer())
}

func TestLogin_RejectsBadCredentialsAndDisabledAccounts(t *testing.T) {
	db := newTestDB(t)
	s := newAuthService(db)

	_, err := s.Register("Grace", "grace@example.com", "hunter2hunter2")
	require.NoError(t, err)

	_, _, err = s.Login("grace@example.com", "wrong-password")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	_, _, err = s.Login("nobody@example.com", "whatever")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	require.NoError(t, db.Model(&model.User{}).Where("email = ?", "grace@example.com").
		Update("disabled", true).Error)
	_, _, err = s.Login("grace@example.com", "hunter2hunter2")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
}
