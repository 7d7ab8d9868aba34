package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/growmap/internal/credentials"
	"github.com/yukikurage/growmap/internal/logging"
	"github.com/yukikurage/growmap/internal/models"
	"github.com/yukikurage/growmap/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken        = errors.New("user already exists")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrInvalidUsername      = errors.New("invalid username")
	ErrWeakPassword         = credentials.ErrWeakPassword
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrFailedToCreateUser   = errors.New("failed to create user")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
	hasher   credentials.Hasher
	policy   credentials.PasswordPolicy
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, hasher credentials.Hasher, policy credentials.PasswordPolicy) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
		policy:   policy,
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Username string
	Password string
}

// Signup validates the credentials and creates the user. Nothing is written
// when validation fails.
func (s *AuthService) Signup(input SignupInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if err := credentials.ValidateUsername(username); err != nil {
		return nil, &ValidationError{Kind: ErrInvalidUsername, Reasons: []string{err.Error()}}
	}
	if violations := s.policy.Validate(input.Password); len(violations) > 0 {
		return nil, &ValidationError{Kind: ErrWeakPassword, Reasons: violations}
	}

	taken, err := s.userRepo.UsernameExists(username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hashed,
	}

	if err := s.userRepo.Create(user); err != nil {
		// A concurrent signup may win the unique index after our lookup.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		logging.Error().Err(err).Msg("Failed to create user")
		return nil, ErrFailedToCreateUser
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// Login verifies credentials and returns the authenticated user. Unknown
// users and wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(input LoginInput) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, input.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}
