package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BolajiAkerele2013/Cookit/internal/model"
)

// IdeaRoleRepository defines role persistence operations.
type IdeaRoleRepository interface {
	Create(ctx context.Context, role *model.IdeaRole) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.IdeaRole, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByIdea(ctx context.Context, ideaID uuid.UUID) ([]model.IdeaRole, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.IdeaRole, error)
	FindByIdeaAndUser(ctx context.Context, ideaID, userID uuid.UUID) ([]model.IdeaRole, error)
}

type ideaRoleRepository struct {
	db *gorm.DB
}

// NewIdeaRoleRepository creates a new role repository.
func NewIdeaRoleRepository(db *gorm.DB) IdeaRoleRepository {
	return &ideaRoleRepository{db: db}
}

func (r *ideaRoleRepository) Create(ctx context.Context, role *model.IdeaRole) error {
	return r.db.WithContext(ctx).Omit("User", "Idea").Create(role).Error
}

func (r *ideaRoleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.IdeaRole, error) {
	var role model.IdeaRole
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// Delete removes a role. It returns gorm.ErrRecordNotFound when nothing was deleted.
func (r *ideaRoleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.IdeaRole{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByIdea returns the idea's roles with their users, oldest first.
func (r *ideaRoleRepository) ListByIdea(ctx context.Context, ideaID uuid.UUID) ([]model.IdeaRole, error) {
	var roles []model.IdeaRole
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("idea_id = ?", ideaID).
		Order("created_at ASC").
		Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// ListByUser returns every role the user holds, oldest first.
func (r *ideaRoleRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.IdeaRole, error) {
	var roles []model.IdeaRole
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// FindByIdeaAndUser returns the roles a user holds on one idea.
func (r *ideaRoleRepository) FindByIdeaAndUser(ctx context.Context, ideaID, userID uuid.UUID) ([]model.IdeaRole, error) {
	var roles []model.IdeaRole
	if err := r.db.WithContext(ctx).
		Where("idea_id = ? AND user_id = ?", ideaID, userID).
		Order("created_at ASC").
		Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}
