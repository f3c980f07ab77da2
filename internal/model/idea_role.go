package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RoleKind is the kind of participation a user has in an idea.
type RoleKind string

const (
	RoleIdeaOwner     RoleKind = "IDEA_OWNER"
	RoleEquityOwner   RoleKind = "EQUITY_OWNER"
	RoleDebtFinancier RoleKind = "DEBT_FINANCIER"
	RoleContractor    RoleKind = "CONTRACTOR"
	RoleViewer        RoleKind = "VIEWER"
)

// Valid reports whether k is one of the five role kinds.
func (k RoleKind) Valid() bool {
	switch k {
	case RoleIdeaOwner, RoleEquityOwner, RoleDebtFinancier, RoleContractor, RoleViewer:
		return true
	}
	return false
}

// RoleTerms holds the kind-specific terms of a role. The concrete type decides the kind,
// so a role can never carry terms that belong to another kind.
type RoleTerms interface {
	Kind() RoleKind
	apply(r *IdeaRole)
}

// OwnerTerms marks the owner of the idea. It carries no terms.
type OwnerTerms struct{}

// ViewerTerms grants read access only.
type ViewerTerms struct{}

// EquityTerms gives a share of the idea.
type EquityTerms struct {
	Percentage decimal.Decimal
}

// DebtTerms records money lent to the idea.
type DebtTerms struct {
	Amount decimal.Decimal
}

// ContractTerms records a contract period. End is open when nil.
type ContractTerms struct {
	Start time.Time
	End   *time.Time
}

func (OwnerTerms) Kind() RoleKind    { return RoleIdeaOwner }
func (ViewerTerms) Kind() RoleKind   { return RoleViewer }
func (EquityTerms) Kind() RoleKind   { return RoleEquityOwner }
func (DebtTerms) Kind() RoleKind     { return RoleDebtFinancier }
func (ContractTerms) Kind() RoleKind { return RoleContractor }

func (OwnerTerms) apply(*IdeaRole)  {}
func (ViewerTerms) apply(*IdeaRole) {}

func (t EquityTerms) apply(r *IdeaRole) {
	r.EquityPercentage = decimal.NewNullDecimal(t.Percentage)
}

func (t DebtTerms) apply(r *IdeaRole) {
	r.DebtAmount = decimal.NewNullDecimal(t.Amount)
}

func (t ContractTerms) apply(r *IdeaRole) {
	start := t.Start
	r.StartDate = &start
	if t.End != nil {
		end := *t.End
		r.EndDate = &end
	}
}

// IdeaRole assigns a user to an idea under one role kind.
type IdeaRole struct {
	ID               uuid.UUID           `json:"id" gorm:"type:char(36);primaryKey"`
	IdeaID           uuid.UUID           `json:"ideaId" gorm:"type:char(36);not null;index"`
	UserID           uuid.UUID           `json:"userId" gorm:"type:char(36);not null;index"`
	Role             RoleKind            `json:"role" gorm:"column:role;type:varchar(32);not null"`
	EquityPercentage decimal.NullDecimal `json:"equityPercentage" gorm:"type:decimal(5,2)"`
	DebtAmount       decimal.NullDecimal `json:"debtAmount" gorm:"type:decimal(20,2)"`
	StartDate        *time.Time          `json:"startDate,omitempty" gorm:"type:date"`
	EndDate          *time.Time          `json:"endDate,omitempty" gorm:"type:date"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`

	// Relations
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Idea *Idea `json:"-" gorm:"foreignKey:IdeaID"`
}

// TableName keeps the historical table name.
func (IdeaRole) TableName() string {
	return "idea_users"
}

// NewIdeaRole builds a role whose kind and term columns come from terms.
func NewIdeaRole(ideaID, userID uuid.UUID, terms RoleTerms) *IdeaRole {
	r := &IdeaRole{
		IdeaID: ideaID,
		UserID: userID,
		Role:   terms.Kind(),
	}
	terms.apply(r)
	return r
}

// Terms rebuilds the kind-specific terms from the stored columns.
func (r *IdeaRole) Terms() RoleTerms {
	switch r.Role {
	case RoleIdeaOwner:
		return OwnerTerms{}
	case RoleEquityOwner:
		return EquityTerms{Percentage: r.EquityPercentage.Decimal}
	case RoleDebtFinancier:
		return DebtTerms{Amount: r.DebtAmount.Decimal}
	case RoleContractor:
		t := ContractTerms{End: r.EndDate}
		if r.StartDate != nil {
			t.Start = *r.StartDate
		}
		return t
	default:
		return ViewerTerms{}
	}
}

// BeforeCreate sets UUID before creating the record.
func (r *IdeaRole) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
