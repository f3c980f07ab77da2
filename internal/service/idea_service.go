package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/BolajiAkerele2013/Cookit/internal/cache"
	apperr "github.com/BolajiAkerele2013/Cookit/internal/errors"
	"github.com/BolajiAkerele2013/Cookit/internal/model"
	"github.com/BolajiAkerele2013/Cookit/internal/repository"
)

// IdeaInput carries the fields of a new idea. An empty Visibility means private.
type IdeaInput struct {
	Name            string
	Description     string
	ProblemCategory string
	Solution        string
	Visibility      model.Visibility
}

// IdeaPatch holds optional idea changes. Nil fields are left untouched.
type IdeaPatch struct {
	Name            *string
	Description     *string
	ProblemCategory *string
	Solution        *string
	Visibility      *model.Visibility
}

// IdeaService manages ideas and who may see or change them.
type IdeaService interface {
	CreateIdea(ctx context.Context, ownerID uuid.UUID, in IdeaInput) (*model.Idea, error)
	ListIdeasFor(ctx context.Context, userID uuid.UUID) ([]model.Idea, error)
	GetIdea(ctx context.Context, ideaID, requesterID uuid.UUID) (*model.Idea, error)
	UpdateIdea(ctx context.Context, ideaID, requesterID uuid.UUID, patch IdeaPatch) (*model.Idea, error)
}

type ideaService struct {
	ideas ideaReader
	roles repository.IdeaRoleRepository
}

// NewIdeaService creates a new idea service.
func NewIdeaService(ideaRepo repository.IdeaRepository, roleRepo repository.IdeaRoleRepository, cache *cache.Client) IdeaService {
	return &ideaService{
		ideas: ideaReader{repo: ideaRepo, cache: cache},
		roles: roleRepo,
	}
}

func validateIdeaInput(in IdeaInput) error {
	switch {
	case blank(in.Name):
		return apperr.Validation("NAME_REQUIRED", "name is required")
	case blank(in.Description):
		return apperr.Validation("DESCRIPTION_REQUIRED", "description is required")
	case blank(in.ProblemCategory):
		return apperr.Validation("PROBLEM_CATEGORY_REQUIRED", "problem category is required")
	case blank(in.Solution):
		return apperr.Validation("SOLUTION_REQUIRED", "solution is required")
	case !model.IsProblemCategory(in.ProblemCategory):
		return apperr.Validation("INVALID_PROBLEM_CATEGORY", "unknown problem category")
	case in.Visibility != "" && !in.Visibility.Valid():
		return apperr.Validation("INVALID_VISIBILITY", "visibility must be public or private")
	}
	return nil
}

func (s *ideaService) CreateIdea(ctx context.Context, ownerID uuid.UUID, in IdeaInput) (*model.Idea, error) {
	if err := validateIdeaInput(in); err != nil {
		return nil, err
	}

	visibility := in.Visibility
	if visibility == "" {
		visibility = model.VisibilityPrivate
	}

	idea := &model.Idea{
		ID:              uuid.New(),
		Name:            in.Name,
		Description:     in.Description,
		ProblemCategory: in.ProblemCategory,
		Solution:        in.Solution,
		Visibility:      visibility,
		OwnerID:         ownerID,
	}
	ownerRole := model.NewIdeaRole(idea.ID, ownerID, model.OwnerTerms{})

	if err := s.ideas.repo.CreateWithOwnerRole(ctx, idea, ownerRole); err != nil {
		return nil, apperr.Store("create idea", err)
	}

	idea.UserRole = model.RoleIdeaOwner
	return idea, nil
}

func (s *ideaService) ListIdeasFor(ctx context.Context, userID uuid.UUID) ([]model.Idea, error) {
	ideas, err := s.ideas.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, apperr.Store("list ideas", err)
	}

	held, err := s.roles.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Store("list roles", err)
	}
	// held is oldest first, matching the role GetIdea reports
	heldByIdea := make(map[uuid.UUID]*model.IdeaRole, len(held))
	for i := range held {
		if _, seen := heldByIdea[held[i].IdeaID]; !seen {
			heldByIdea[held[i].IdeaID] = &held[i]
		}
	}

	for i := range ideas {
		if ideas[i].OwnerID == userID {
			ideas[i].UserRole = model.RoleIdeaOwner
		} else if r, ok := heldByIdea[ideas[i].ID]; ok {
			ideas[i].SetHeldRole(r)
		}
	}
	return ideas, nil
}

func (s *ideaService) GetIdea(ctx context.Context, ideaID, requesterID uuid.UUID) (*model.Idea, error) {
	idea, err := s.ideas.load(ctx, ideaID)
	if err != nil {
		return nil, err
	}

	held, allowed, err := accessFor(ctx, s.roles, idea, requesterID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperr.ErrIdeaNotVisible
	}

	if held != nil {
		idea.SetHeldRole(held)
	}
	return idea, nil
}

func (s *ideaService) UpdateIdea(ctx context.Context, ideaID, requesterID uuid.UUID, patch IdeaPatch) (*model.Idea, error) {
	idea, err := s.ideas.load(ctx, ideaID)
	if err != nil {
		return nil, err
	}
	if idea.OwnerID != requesterID {
		return nil, apperr.ErrNotIdeaOwner
	}

	// validate the merged result so provided fields follow the create rules
	merged := IdeaInput{
		Name:            idea.Name,
		Description:     idea.Description,
		ProblemCategory: idea.ProblemCategory,
		Solution:        idea.Solution,
		Visibility:      idea.Visibility,
	}
	fields := map[string]interface{}{}
	if patch.Name != nil {
		merged.Name = *patch.Name
		fields["name"] = *patch.Name
	}
	if patch.Description != nil {
		merged.Description = *patch.Description
		fields["description"] = *patch.Description
	}
	if patch.ProblemCategory != nil {
		merged.ProblemCategory = *patch.ProblemCategory
		fields["problem_category"] = *patch.ProblemCategory
	}
	if patch.Solution != nil {
		merged.Solution = *patch.Solution
		fields["solution"] = *patch.Solution
	}
	if patch.Visibility != nil {
		if *patch.Visibility == "" {
			return nil, apperr.Validation("INVALID_VISIBILITY", "visibility must be public or private")
		}
		merged.Visibility = *patch.Visibility
		fields["visibility"] = *patch.Visibility
	}
	if err := validateIdeaInput(merged); err != nil {
		return nil, err
	}

	if len(fields) == 0 {
		idea.UserRole = model.RoleIdeaOwner
		return idea, nil
	}

	if err := s.ideas.repo.Update(ctx, ideaID, fields); err != nil {
		if isNotFound(err) {
			return nil, apperr.ErrIdeaNotFound
		}
		return nil, apperr.Store("update idea", err)
	}
	s.ideas.invalidate(ctx, ideaID)

	updated, err := s.ideas.repo.FindByID(ctx, ideaID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.ErrIdeaNotFound
		}
		return nil, apperr.Store("find idea", err)
	}
	updated.UserRole = model.RoleIdeaOwner
	return updated, nil
}
