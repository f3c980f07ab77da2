package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User represents a registered person who can own ideas or hold roles on them.
type User struct {
	ID        uuid.UUID                   `json:"id" gorm:"type:char(36);primaryKey"`
	Email     string                      `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Name      string                      `json:"name" gorm:"size:255;not null"`
	Password  string                      `json:"-" gorm:"column:password;size:255;not null"` // Never expose in JSON
	Skills    datatypes.JSONSlice[string] `json:"skills"`
	Interests datatypes.JSONSlice[string] `json:"interests"`
	Portfolio *string                     `json:"portfolio,omitempty" gorm:"type:text"`
	CreatedAt time.Time                   `json:"createdAt"`
	UpdatedAt time.Time                   `json:"updatedAt"`
}

// BeforeCreate sets UUID and empty profile lists before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Skills == nil {
		u.Skills = datatypes.JSONSlice[string]{}
	}
	if u.Interests == nil {
		u.Interests = datatypes.JSONSlice[string]{}
	}
	return nil
}
