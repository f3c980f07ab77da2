package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/BolajiAkerele2013/Cookit/internal/auth"
	apperr "github.com/BolajiAkerele2013/Cookit/internal/errors"
	"github.com/BolajiAkerele2013/Cookit/internal/model"
	"github.com/BolajiAkerele2013/Cookit/internal/repository"
)

// AuthService handles sign-up, log-in and token resolution.
type AuthService interface {
	SignUp(ctx context.Context, email, password, name string) (*model.User, string, error)
	LogIn(ctx context.Context, email, password string) (*model.User, string, error)
	ResolveToken(ctx context.Context, token string) (uuid.UUID, error)
}

type authService struct {
	userRepo    repository.UserRepository
	tokens      auth.TokenCodec
	credentials auth.CredentialScheme
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, tokens auth.TokenCodec, credentials auth.CredentialScheme) AuthService {
	return &authService{
		userRepo:    userRepo,
		tokens:      tokens,
		credentials: credentials,
	}
}

// SignUp registers a user and returns it with a fresh token.
func (s *authService) SignUp(ctx context.Context, email, password, name string) (*model.User, string, error) {
	if blank(email) || password == "" || blank(name) {
		return nil, "", apperr.Validation("FIELDS_REQUIRED", "email, password and name are required")
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, "", apperr.ErrEmailTaken
	}
	if err != nil && !isNotFound(err) {
		return nil, "", apperr.Store("check user existence", err)
	}

	sealed, err := s.credentials.Seal(password)
	if err != nil {
		return nil, "", apperr.Store("seal credential", err)
	}

	user := &model.User{
		ID:        uuid.New(),
		Email:     email,
		Name:      name,
		Password:  sealed,
		Skills:    datatypes.JSONSlice[string]{},
		Interests: datatypes.JSONSlice[string]{},
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// lost a race with a concurrent sign-up for the same email
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", apperr.ErrEmailTaken
		}
		return nil, "", apperr.Store("create user", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", apperr.Store("issue token", err)
	}

	user.Password = ""
	return user, token, nil
}

// LogIn authenticates a user. Unknown email and wrong password fail identically.
func (s *authService) LogIn(ctx context.Context, email, password string) (*model.User, string, error) {
	if blank(email) || password == "" {
		return nil, "", apperr.Validation("FIELDS_REQUIRED", "email and password are required")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil, "", apperr.ErrInvalidCredentials
		}
		return nil, "", apperr.Store("find user", err)
	}

	if !s.credentials.Verify(user.Password, password) {
		return nil, "", apperr.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", apperr.Store("issue token", err)
	}

	user.Password = ""
	return user, token, nil
}

// ResolveToken maps a token back to the ID of an existing user.
func (s *authService) ResolveToken(ctx context.Context, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, apperr.ErrUnauthorized
	}
	id, err := s.tokens.Resolve(token)
	if err != nil {
		return uuid.Nil, apperr.ErrUnauthorized
	}

	if _, err := s.userRepo.FindByID(ctx, id); err != nil {
		if isNotFound(err) {
			return uuid.Nil, apperr.ErrUnauthorized
		}
		return uuid.Nil, apperr.Store("find user", err)
	}
	return id, nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
