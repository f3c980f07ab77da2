package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperr "github.com/BolajiAkerele2013/Cookit/internal/errors"
	"github.com/BolajiAkerele2013/Cookit/internal/model"
)

func validIdeaInput() IdeaInput {
	return IdeaInput{
		Name:            "X",
		Description:     "D",
		ProblemCategory: "Technology",
		Solution:        "S",
	}
}

func strPtr(s string) *string { return &s }

func TestIdeaService_CreateIdea(t *testing.T) {
	ownerID := uuid.New()

	tests := []struct {
		name         string
		input        func() IdeaInput
		storeErr     error
		expectedKind apperr.Kind
		visibility   model.Visibility
	}{
		{
			name:       "defaults to private",
			input:      validIdeaInput,
			visibility: model.VisibilityPrivate,
		},
		{
			name: "public",
			input: func() IdeaInput {
				in := validIdeaInput()
				in.Visibility = model.VisibilityPublic
				return in
			},
			visibility: model.VisibilityPublic,
		},
		{
			name: "unknown category",
			input: func() IdeaInput {
				in := validIdeaInput()
				in.ProblemCategory = "technology"
				return in
			},
			expectedKind: apperr.KindValidation,
		},
		{
			name: "unknown visibility",
			input: func() IdeaInput {
				in := validIdeaInput()
				in.Visibility = "friends"
				return in
			},
			expectedKind: apperr.KindValidation,
		},
		{
			name: "missing solution",
			input: func() IdeaInput {
				in := validIdeaInput()
				in.Solution = ""
				return in
			},
			expectedKind: apperr.KindValidation,
		},
		{
			name:         "store failure",
			input:        validIdeaInput,
			storeErr:     errors.New("disk full"),
			expectedKind: apperr.KindStore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ideas := new(MockIdeaRepository)
			roles := new(MockIdeaRoleRepository)

			var ownerRole *model.IdeaRole
			if tt.expectedKind == 0 || tt.storeErr != nil {
				ideas.On("CreateWithOwnerRole", mock.Anything, mock.AnythingOfType("*model.Idea"), mock.AnythingOfType("*model.IdeaRole")).
					Run(func(args mock.Arguments) { ownerRole = args.Get(2).(*model.IdeaRole) }).
					Return(tt.storeErr)
			}

			service := NewIdeaService(ideas, roles, nil)
			idea, err := service.CreateIdea(context.Background(), ownerID, tt.input())

			if tt.expectedKind != 0 {
				assert.Equal(t, tt.expectedKind, apperr.KindOf(err))
				assert.Nil(t, idea)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "X", idea.Name)
				assert.Equal(t, "D", idea.Description)
				assert.Equal(t, "Technology", idea.ProblemCategory)
				assert.Equal(t, "S", idea.Solution)
				assert.Equal(t, tt.visibility, idea.Visibility)
				assert.Equal(t, ownerID, idea.OwnerID)
				assert.Equal(t, model.RoleIdeaOwner, idea.UserRole)

				require.NotNil(t, ownerRole)
				assert.Equal(t, model.RoleIdeaOwner, ownerRole.Role)
				assert.Equal(t, ownerID, ownerRole.UserID)
				assert.Equal(t, idea.ID, ownerRole.IdeaID)
			}

			ideas.AssertExpectations(t)
		})
	}
}

func TestIdeaService_ListIdeasFor(t *testing.T) {
	userID := uuid.New()
	owned := model.Idea{ID: uuid.New(), OwnerID: userID, CreatedAt: time.Now()}
	shared := model.Idea{ID: uuid.New(), OwnerID: uuid.New(), CreatedAt: time.Now().Add(-time.Hour)}

	ideas := new(MockIdeaRepository)
	roles := new(MockIdeaRoleRepository)
	funded := model.Idea{ID: uuid.New(), OwnerID: uuid.New(), CreatedAt: time.Now().Add(-2 * time.Hour)}

	ideas.On("ListForUser", mock.Anything, userID).Return([]model.Idea{owned, shared, funded}, nil)
	roles.On("ListByUser", mock.Anything, userID).Return([]model.IdeaRole{
		{IdeaID: owned.ID, UserID: userID, Role: model.RoleIdeaOwner},
		{IdeaID: shared.ID, UserID: userID, Role: model.RoleContractor},
		*model.NewIdeaRole(funded.ID, userID, model.DebtTerms{Amount: decimal.NewFromInt(50000)}),
		{IdeaID: shared.ID, UserID: userID, Role: model.RoleViewer},
	}, nil)

	service := NewIdeaService(ideas, roles, nil)
	list, err := service.ListIdeasFor(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, owned.ID, list[0].ID)
	assert.Equal(t, model.RoleIdeaOwner, list[0].UserRole)
	assert.Equal(t, shared.ID, list[1].ID)
	assert.Equal(t, model.RoleContractor, list[1].UserRole, "oldest held role wins")
	assert.Nil(t, list[1].DebtAmount)
	assert.Equal(t, model.RoleDebtFinancier, list[2].UserRole)
	require.NotNil(t, list[2].DebtAmount)
	assert.True(t, list[2].DebtAmount.Equal(decimal.NewFromInt(50000)))
	assert.Nil(t, list[2].EquityPercentage)
}

func TestIdeaService_GetIdea(t *testing.T) {
	ownerID := uuid.New()
	memberID := uuid.New()
	strangerID := uuid.New()
	ideaID := uuid.New()

	tests := []struct {
		name           string
		visibility     model.Visibility
		requester      uuid.UUID
		held           []model.IdeaRole
		expectedError  error
		expectedRole   model.RoleKind
		expectedEquity string
	}{
		{
			name:         "owner reads private idea",
			visibility:   model.VisibilityPrivate,
			requester:    ownerID,
			expectedRole: model.RoleIdeaOwner,
		},
		{
			name:         "role holder reads private idea",
			visibility:   model.VisibilityPrivate,
			requester:    memberID,
			held:         []model.IdeaRole{{IdeaID: ideaID, UserID: memberID, Role: model.RoleViewer}},
			expectedRole: model.RoleViewer,
		},
		{
			name:       "equity holder sees their share",
			visibility: model.VisibilityPrivate,
			requester:  memberID,
			held: []model.IdeaRole{
				*model.NewIdeaRole(ideaID, memberID, model.EquityTerms{Percentage: decimal.RequireFromString("12.5")}),
			},
			expectedRole:   model.RoleEquityOwner,
			expectedEquity: "12.5",
		},
		{
			name:          "stranger cannot read private idea",
			visibility:    model.VisibilityPrivate,
			requester:     strangerID,
			expectedError: apperr.ErrIdeaNotVisible,
		},
		{
			name:       "stranger reads public idea",
			visibility: model.VisibilityPublic,
			requester:  strangerID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ideas := new(MockIdeaRepository)
			roles := new(MockIdeaRoleRepository)
			ideas.On("FindByID", mock.Anything, ideaID).Return(&model.Idea{
				ID: ideaID, Name: "X", OwnerID: ownerID, Visibility: tt.visibility,
			}, nil)
			if tt.requester != ownerID {
				roles.On("FindByIdeaAndUser", mock.Anything, ideaID, tt.requester).Return(tt.held, nil)
			}

			service := NewIdeaService(ideas, roles, nil)
			idea, err := service.GetIdea(context.Background(), ideaID, tt.requester)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, idea)
			} else {
				require.NoError(t, err)
				assert.Equal(t, ideaID, idea.ID)
				assert.Equal(t, tt.expectedRole, idea.UserRole)
				if tt.expectedEquity != "" {
					require.NotNil(t, idea.EquityPercentage)
					assert.Equal(t, tt.expectedEquity, idea.EquityPercentage.String())
				} else {
					assert.Nil(t, idea.EquityPercentage)
				}
				assert.Nil(t, idea.DebtAmount)
			}

			roles.AssertExpectations(t)
		})
	}

	t.Run("missing idea", func(t *testing.T) {
		ideas := new(MockIdeaRepository)
		ideas.On("FindByID", mock.Anything, ideaID).Return(nil, gorm.ErrRecordNotFound)

		service := NewIdeaService(ideas, new(MockIdeaRoleRepository), nil)
		_, err := service.GetIdea(context.Background(), ideaID, ownerID)
		assert.Equal(t, apperr.ErrIdeaNotFound, err)
	})
}

func TestIdeaService_UpdateIdea(t *testing.T) {
	ownerID := uuid.New()
	ideaID := uuid.New()
	created := time.Now().Add(-time.Hour)

	current := func() *model.Idea {
		return &model.Idea{
			ID: ideaID, Name: "X", Description: "D", ProblemCategory: "Technology", Solution: "S",
			Visibility: model.VisibilityPrivate, OwnerID: ownerID, CreatedAt: created, UpdatedAt: created,
		}
	}

	t.Run("owner updates visibility only", func(t *testing.T) {
		ideas := new(MockIdeaRepository)
		public := model.VisibilityPublic

		updated := current()
		updated.Visibility = model.VisibilityPublic
		updated.UpdatedAt = time.Now()

		ideas.On("FindByID", mock.Anything, ideaID).Return(current(), nil).Once()
		ideas.On("Update", mock.Anything, ideaID, map[string]interface{}{"visibility": model.VisibilityPublic}).Return(nil)
		ideas.On("FindByID", mock.Anything, ideaID).Return(updated, nil).Once()

		service := NewIdeaService(ideas, new(MockIdeaRoleRepository), nil)
		idea, err := service.UpdateIdea(context.Background(), ideaID, ownerID, IdeaPatch{Visibility: &public})
		require.NoError(t, err)
		assert.Equal(t, model.VisibilityPublic, idea.Visibility)
		assert.Equal(t, "X", idea.Name)
		assert.True(t, idea.UpdatedAt.After(created))
		assert.Equal(t, model.RoleIdeaOwner, idea.UserRole)
		ideas.AssertExpectations(t)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		ideas := new(MockIdeaRepository)
		ideas.On("FindByID", mock.Anything, ideaID).Return(current(), nil)

		service := NewIdeaService(ideas, new(MockIdeaRoleRepository), nil)
		_, err := service.UpdateIdea(context.Background(), ideaID, uuid.New(), IdeaPatch{Name: strPtr("Y")})
		assert.Equal(t, apperr.ErrNotIdeaOwner, err)
		ideas.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid category", func(t *testing.T) {
		ideas := new(MockIdeaRepository)
		ideas.On("FindByID", mock.Anything, ideaID).Return(current(), nil)

		service := NewIdeaService(ideas, new(MockIdeaRoleRepository), nil)
		_, err := service.UpdateIdea(context.Background(), ideaID, ownerID, IdeaPatch{ProblemCategory: strPtr("Space")})
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		ideas.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty name", func(t *testing.T) {
		ideas := new(MockIdeaRepository)
		ideas.On("FindByID", mock.Anything, ideaID).Return(current(), nil)

		service := NewIdeaService(ideas, new(MockIdeaRoleRepository), nil)
		_, err := service.UpdateIdea(context.Background(), ideaID, ownerID, IdeaPatch{Name: strPtr("")})
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	t.Run("missing idea", func(t *testing.T) {
		ideas := new(MockIdeaRepository)
		ideas.On("FindByID", mock.Anything, ideaID).Return(nil, gorm.ErrRecordNotFound)

		service := NewIdeaService(ideas, new(MockIdeaRoleRepository), nil)
		_, err := service.UpdateIdea(context.Background(), ideaID, ownerID, IdeaPatch{Name: strPtr("Y")})
		assert.Equal(t, apperr.ErrIdeaNotFound, err)
	})
}
