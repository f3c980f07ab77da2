package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BolajiAkerele2013/Cookit/internal/cache"
	apperr "github.com/BolajiAkerele2013/Cookit/internal/errors"
	"github.com/BolajiAkerele2013/Cookit/internal/model"
	"github.com/BolajiAkerele2013/Cookit/internal/repository"
)

const ideaCacheTTL = 5 * time.Minute

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// ideaReader loads ideas through the read-through cache.
type ideaReader struct {
	repo  repository.IdeaRepository
	cache *cache.Client
}

func ideaCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("idea:%s", id.String())
}

func (r ideaReader) load(ctx context.Context, id uuid.UUID) (*model.Idea, error) {
	var cached model.Idea
	if r.cache.GetJSON(ctx, ideaCacheKey(id), &cached) {
		return &cached, nil
	}

	idea, err := r.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.ErrIdeaNotFound
		}
		return nil, apperr.Store("find idea", err)
	}

	r.cache.SetJSON(ctx, ideaCacheKey(id), idea, ideaCacheTTL)
	return idea, nil
}

func (r ideaReader) invalidate(ctx context.Context, id uuid.UUID) {
	_ = r.cache.Delete(ctx, ideaCacheKey(id))
}

// accessFor returns the requester's role on the idea, nil when they hold none,
// and whether they may read it. Owners and role holders may always read; anyone
// else only when the idea is public. Membership is always read from the store,
// never from cache.
func accessFor(ctx context.Context, roles repository.IdeaRoleRepository, idea *model.Idea, requesterID uuid.UUID) (*model.IdeaRole, bool, error) {
	if idea.OwnerID == requesterID {
		return model.NewIdeaRole(idea.ID, requesterID, model.OwnerTerms{}), true, nil
	}

	held, err := roles.FindByIdeaAndUser(ctx, idea.ID, requesterID)
	if err != nil {
		return nil, false, apperr.Store("find roles", err)
	}
	if len(held) > 0 {
		return &held[0], true, nil
	}
	return nil, idea.Visibility == model.VisibilityPublic, nil
}
