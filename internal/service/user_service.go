package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/BolajiAkerele2013/Cookit/internal/cache"
	apperr "github.com/BolajiAkerele2013/Cookit/internal/errors"
	"github.com/BolajiAkerele2013/Cookit/internal/model"
	"github.com/BolajiAkerele2013/Cookit/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// ProfilePatch holds optional profile changes. Nil fields are left untouched.
type ProfilePatch struct {
	Name      *string
	Skills    []string
	Interests []string
	Portfolio *string
}

// UserService exposes profile operations for the signed-in user.
type UserService interface {
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, patch ProfilePatch) (*model.User, error)
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache *cache.Client) UserService {
	return &userService{repo: repo, cache: cache}
}

func (s *userService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id.String())
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, apperr.Store("find user", err)
	}

	user.Password = ""
	s.cache.SetJSON(ctx, s.cacheKey(id), user, userCacheTTL)
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id uuid.UUID, patch ProfilePatch) (*model.User, error) {
	fields := map[string]interface{}{}
	if patch.Name != nil {
		if blank(*patch.Name) {
			return nil, apperr.Validation("NAME_REQUIRED", "name must not be empty")
		}
		fields["name"] = *patch.Name
	}
	if patch.Skills != nil {
		fields["skills"] = datatypes.JSONSlice[string](patch.Skills)
	}
	if patch.Interests != nil {
		fields["interests"] = datatypes.JSONSlice[string](patch.Interests)
	}
	if patch.Portfolio != nil {
		fields["portfolio"] = *patch.Portfolio
	}

	if len(fields) > 0 {
		if err := s.repo.Update(ctx, id, fields); err != nil {
			if isNotFound(err) {
				return nil, apperr.ErrUserNotFound
			}
			return nil, apperr.Store("update user", err)
		}
		_ = s.cache.Delete(ctx, s.cacheKey(id))
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, apperr.Store("find user", err)
	}
	user.Password = ""
	return user, nil
}
