package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BolajiAkerele2013/Cookit/internal/cache"
	apperr "github.com/BolajiAkerele2013/Cookit/internal/errors"
	"github.com/BolajiAkerele2013/Cookit/internal/model"
	"github.com/BolajiAkerele2013/Cookit/internal/repository"
)

var maxEquity = decimal.NewFromInt(100)

// termScale is the number of decimal places the equity and debt columns keep.
const termScale = 2

func exceedsScale(d decimal.Decimal) bool {
	return !d.Equal(d.Truncate(termScale))
}

// RoleRequest is an unvalidated role assignment. Only the detail fields that
// belong to Kind are read.
type RoleRequest struct {
	Kind             model.RoleKind
	EquityPercentage *decimal.Decimal
	DebtAmount       *decimal.Decimal
	StartDate        *time.Time
	EndDate          *time.Time
}

// Terms validates the request into the terms of its kind.
func (r RoleRequest) Terms() (model.RoleTerms, error) {
	switch r.Kind {
	case model.RoleEquityOwner:
		if r.EquityPercentage == nil {
			return nil, apperr.Validation("EQUITY_REQUIRED", "equity percentage is required for EQUITY_OWNER")
		}
		if !r.EquityPercentage.IsPositive() || r.EquityPercentage.GreaterThan(maxEquity) {
			return nil, apperr.Validation("EQUITY_OUT_OF_RANGE", "equity percentage must be greater than 0 and at most 100")
		}
		if exceedsScale(*r.EquityPercentage) {
			return nil, apperr.Validation("EQUITY_TOO_PRECISE", "equity percentage allows at most 2 decimal places")
		}
		return model.EquityTerms{Percentage: *r.EquityPercentage}, nil
	case model.RoleDebtFinancier:
		if r.DebtAmount == nil {
			return nil, apperr.Validation("DEBT_REQUIRED", "debt amount is required for DEBT_FINANCIER")
		}
		if !r.DebtAmount.IsPositive() {
			return nil, apperr.Validation("DEBT_OUT_OF_RANGE", "debt amount must be greater than 0")
		}
		if exceedsScale(*r.DebtAmount) {
			return nil, apperr.Validation("DEBT_TOO_PRECISE", "debt amount allows at most 2 decimal places")
		}
		return model.DebtTerms{Amount: *r.DebtAmount}, nil
	case model.RoleContractor:
		if r.StartDate == nil {
			return nil, apperr.Validation("START_DATE_REQUIRED", "start date is required for CONTRACTOR")
		}
		if r.EndDate != nil && r.EndDate.Before(*r.StartDate) {
			return nil, apperr.Validation("INVALID_DATE_RANGE", "end date must not be before start date")
		}
		return model.ContractTerms{Start: *r.StartDate, End: r.EndDate}, nil
	case model.RoleViewer:
		return model.ViewerTerms{}, nil
	case model.RoleIdeaOwner:
		return nil, apperr.Validation("ROLE_NOT_ASSIGNABLE", "IDEA_OWNER cannot be assigned")
	default:
		return nil, apperr.Validation("INVALID_ROLE", "unknown role")
	}
}

// RoleService manages the roles users hold on ideas.
type RoleService interface {
	AddRole(ctx context.Context, ideaID, requesterID uuid.UUID, targetEmail string, req RoleRequest) (*model.IdeaRole, error)
	RemoveRole(ctx context.Context, ideaID, roleID, requesterID uuid.UUID) error
	ListRoles(ctx context.Context, ideaID, requesterID uuid.UUID) ([]model.IdeaRole, error)
}

type roleService struct {
	ideas ideaReader
	roles repository.IdeaRoleRepository
	users repository.UserRepository
}

// NewRoleService creates a new role service.
func NewRoleService(ideaRepo repository.IdeaRepository, roleRepo repository.IdeaRoleRepository, userRepo repository.UserRepository, cache *cache.Client) RoleService {
	return &roleService{
		ideas: ideaReader{repo: ideaRepo, cache: cache},
		roles: roleRepo,
		users: userRepo,
	}
}

func (s *roleService) ownedIdea(ctx context.Context, ideaID, requesterID uuid.UUID) (*model.Idea, error) {
	idea, err := s.ideas.load(ctx, ideaID)
	if err != nil {
		return nil, err
	}
	if idea.OwnerID != requesterID {
		return nil, apperr.ErrNotIdeaOwner
	}
	return idea, nil
}

func (s *roleService) AddRole(ctx context.Context, ideaID, requesterID uuid.UUID, targetEmail string, req RoleRequest) (*model.IdeaRole, error) {
	if _, err := s.ownedIdea(ctx, ideaID, requesterID); err != nil {
		return nil, err
	}

	if blank(targetEmail) {
		return nil, apperr.Validation("EMAIL_REQUIRED", "email is required")
	}
	terms, err := req.Terms()
	if err != nil {
		return nil, err
	}

	target, err := s.users.FindByEmail(ctx, targetEmail)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, apperr.Store("find user", err)
	}

	role := model.NewIdeaRole(ideaID, target.ID, terms)
	if err := s.roles.Create(ctx, role); err != nil {
		return nil, apperr.Store("create role", err)
	}

	target.Password = ""
	role.User = target
	return role, nil
}

func (s *roleService) RemoveRole(ctx context.Context, ideaID, roleID, requesterID uuid.UUID) error {
	if _, err := s.ownedIdea(ctx, ideaID, requesterID); err != nil {
		return err
	}

	role, err := s.roles.FindByID(ctx, roleID)
	if err != nil {
		if isNotFound(err) {
			return apperr.ErrRoleNotFound
		}
		return apperr.Store("find role", err)
	}
	if role.IdeaID != ideaID {
		return apperr.ErrRoleNotFound
	}
	if role.Role == model.RoleIdeaOwner {
		return apperr.ErrOwnerRoleRemoval
	}

	if err := s.roles.Delete(ctx, roleID); err != nil {
		if isNotFound(err) {
			return apperr.ErrRoleNotFound
		}
		return apperr.Store("delete role", err)
	}
	return nil
}

func (s *roleService) ListRoles(ctx context.Context, ideaID, requesterID uuid.UUID) ([]model.IdeaRole, error) {
	idea, err := s.ideas.load(ctx, ideaID)
	if err != nil {
		return nil, err
	}

	_, allowed, err := accessFor(ctx, s.roles, idea, requesterID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperr.ErrIdeaNotVisible
	}

	roles, err := s.roles.ListByIdea(ctx, ideaID)
	if err != nil {
		return nil, apperr.Store("list roles", err)
	}
	for i := range roles {
		if roles[i].User != nil {
			roles[i].User.Password = ""
		}
	}
	return roles, nil
}
