package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/issuetracker/internal/common"
	"github.com/dmitrijs2005/issuetracker/internal/server/auth"
	"github.com/dmitrijs2005/issuetracker/internal/server/config"
	"github.com/dmitrijs2005/issuetracker/internal/server/models"
	"github.com/dmitrijs2005/issuetracker/internal/server/repositories/repomanager"
)

// dummySalt feeds the hash computed for unknown logins.
var dummySalt = make([]byte, auth.SaltSize)

// UserService handles registration, credential checks and access tokens.
type UserService struct {
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

func NewUserService(m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// Register creates a user. A taken login yields common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, userID, name, password string) (*models.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || strings.Contains(userID, ":") {
		return nil, fmt.Errorf("invalid login: %w", common.ErrorValidation)
	}
	if password == "" {
		return nil, fmt.Errorf("password is required: %w", common.ErrorValidation)
	}
	if strings.TrimSpace(name) == "" {
		name = userID
	}

	salt, err := auth.NewSalt()
	if err != nil {
		return nil, fmt.Errorf("error generating salt: %w", err)
	}
	user := &models.User{
		UserID:       userID,
		Name:         name,
		Salt:         salt,
		PasswordHash: auth.HashPassword([]byte(password), salt),
	}

	u, err := s.repomanager.Users(s.repomanager.Conn()).Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// Authenticate checks Basic credentials. Unknown logins still pay for a hash
// so that they cannot be told apart by timing.
func (s *UserService) Authenticate(ctx context.Context, userID, password string) (*models.User, error) {
	user, err := s.repomanager.Users(s.repomanager.Conn()).GetByLogin(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			auth.VerifyPassword([]byte(password), dummySalt, nil)
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	if !auth.VerifyPassword([]byte(password), user.Salt, user.PasswordHash) {
		return nil, common.ErrorUnauthorized
	}
	return user, nil
}

func (s *UserService) IssueToken(ctx context.Context, user *models.User) (string, error) {
	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", fmt.Errorf("error generating token: %w", err)
	}
	return token, nil
}

// Identify resolves a bearer token to its user. Tokens of deleted users are
// reported as common.ErrInvalidToken.
func (s *UserService) Identify(ctx context.Context, token string) (*models.User, error) {
	id, err := auth.GetUserIDFromToken(token, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.repomanager.Conn()).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}
	return user, nil
}

func (s *UserService) FindByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repomanager.Users(s.repomanager.Conn()).GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error finding user %d: %w", id, err)
	}
	return user, nil
}
