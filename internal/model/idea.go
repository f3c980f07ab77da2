package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Visibility controls who may read an idea.
type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityPublic  Visibility = "public"
)

// Valid reports whether v is one of the known visibilities.
func (v Visibility) Valid() bool {
	return v == VisibilityPrivate || v == VisibilityPublic
}

// ProblemCategories lists the accepted problem categories in display order.
var ProblemCategories = []string{
	"Technology",
	"Healthcare",
	"Education",
	"Environment",
	"Finance",
	"Social Impact",
	"Entertainment",
	"Other",
}

// IsProblemCategory reports whether c is an accepted category. Matching is exact.
func IsProblemCategory(c string) bool {
	for _, known := range ProblemCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Idea is a tracked startup proposal owned by exactly one user.
type Idea struct {
	ID              uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	Name            string     `json:"name" gorm:"size:255;not null"`
	Description     string     `json:"description" gorm:"type:text;not null"`
	ProblemCategory string     `json:"problemCategory" gorm:"size:64;not null;index"`
	Solution        string     `json:"solution" gorm:"type:text;not null"`
	Visibility      Visibility `json:"visibility" gorm:"type:varchar(16);not null;default:'private'"`
	OwnerID         uuid.UUID  `json:"ownerId" gorm:"type:char(36);not null;index"`
	CreatedAt       time.Time  `json:"createdAt" gorm:"index"`
	UpdatedAt       time.Time  `json:"updatedAt"`

	// Filled by the service for the requesting user, not stored.
	UserRole         RoleKind         `json:"userRole,omitempty" gorm:"-"`
	EquityPercentage *decimal.Decimal `json:"equityPercentage,omitempty" gorm:"-"`
	DebtAmount       *decimal.Decimal `json:"debtAmount,omitempty" gorm:"-"`

	// Relations
	Owner *User `json:"-" gorm:"foreignKey:OwnerID"`
}

// BeforeCreate sets UUID and default visibility before creating the record.
func (i *Idea) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.Visibility == "" {
		i.Visibility = VisibilityPrivate
	}
	return nil
}

// SetHeldRole records the requesting user's role on the idea with its equity or debt terms.
func (i *Idea) SetHeldRole(r *IdeaRole) {
	i.UserRole = r.Role
	i.EquityPercentage, i.DebtAmount = nil, nil
	if r.EquityPercentage.Valid {
		pct := r.EquityPercentage.Decimal
		i.EquityPercentage = &pct
	}
	if r.DebtAmount.Valid {
		amount := r.DebtAmount.Decimal
		i.DebtAmount = &amount
	}
}
