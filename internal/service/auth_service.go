package service

import (
	"strings"
	"time"

	"bootcamp_backend/internal/config"
	"bootcamp_backend/internal/model"
	"bootcamp_backend/internal/repository"
	"bootcamp_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	Config   *config.Config
	UserRepo *repository.UserRepository
}

func NewAuthService(cfg *config.Config, userRepo *repository.UserRepository) *AuthService {
	return &AuthService{Config: cfg, UserRepo: userRepo}
}

// Register creates a student account. Instructor accounts are provisioned
// out of band, never through self-registration.
func (s *AuthService) Register(fullName, email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := s.UserRepo.FindByEmail(email); err == nil {
		return nil, util.ErrEmailRegistered
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		FullName: fullName,
		Email:    email,
		Password: string(hashed),
		Role:     model.Student,
	}
	if err := s.UserRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues a JWT.
func (s *AuthService) Login(email, password string) (string, *model.User, error) {
	user, err := s.UserRepo.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", nil, util.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if user.Disabled {
		return "", nil, util.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, util.ErrInvalidCredentials
	}

	expiration := time.Duration(s.Config.JWT.ExpirationHours) * time.Hour
	token, err := util.GenerateJWT(user, s.Config.JWT.Secret, expiration)
	if err != nil {
		return "", nil, err
	}

	if err := s.UserRepo.UpdateLastLogin(user.ID); err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// GetCurrentUser resolves the authenticated user's full record.
func (s *AuthService) GetCurrentUser(userID uint) (*model.User, error) {
	return s.UserRepo.FindByID(userID)
}
