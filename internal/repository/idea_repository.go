package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BolajiAkerele2013/Cookit/internal/model"
)

// IdeaRepository defines idea persistence operations.
type IdeaRepository interface {
	CreateWithOwnerRole(ctx context.Context, idea *model.Idea, ownerRole *model.IdeaRole) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Idea, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Idea, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
}

type ideaRepository struct {
	db *gorm.DB
}

// NewIdeaRepository creates a new idea repository.
func NewIdeaRepository(db *gorm.DB) IdeaRepository {
	return &ideaRepository{db: db}
}

// CreateWithOwnerRole inserts the idea and its owner role in one transaction,
// so an idea never exists without its IDEA_OWNER row.
func (r *ideaRepository) CreateWithOwnerRole(ctx context.Context, idea *model.Idea, ownerRole *model.IdeaRole) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(idea).Error; err != nil {
			return err
		}
		ownerRole.IdeaID = idea.ID
		return tx.Create(ownerRole).Error
	})
}

// FindByID finds an idea by ID.
func (r *ideaRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Idea, error) {
	var idea model.Idea
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&idea).Error; err != nil {
		return nil, err
	}
	return &idea, nil
}

// ListForUser returns ideas owned by the user or on which the user holds any role,
// newest first.
func (r *ideaRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Idea, error) {
	db := r.db.WithContext(ctx)
	memberOf := db.Model(&model.IdeaRole{}).Select("idea_id").Where("user_id = ?", userID)

	var ideas []model.Idea
	if err := db.Where("owner_id = ?", userID).
		Or("id IN (?)", memberOf).
		Order("created_at DESC").
		Find(&ideas).Error; err != nil {
		return nil, err
	}
	return ideas, nil
}

// Update writes the given columns and bumps updated_at. Concurrent updates are last-write-wins.
func (r *ideaRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.Idea{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
