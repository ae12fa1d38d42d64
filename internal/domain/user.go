package domain

import (
	"context"
	"time"
)

// User is a FOP account, keyed externally by the Firebase uid
type User struct {
	ID                  int32     `json:"id"`
	FirebaseUID         string    `json:"uid"`
	Email               string    `json:"email"`
	FirstName           string    `json:"firstName"`
	LastName            string    `json:"lastName"`
	MiddleName          *string   `json:"middleName,omitempty"`
	Phone               *string   `json:"phone,omitempty"`
	TaxID               *string   `json:"taxId,omitempty"`
	FOPGroup            TaxGroup  `json:"fopGroup"`
	PaysESV             bool      `json:"paysEsv"`
	KVEDs               []string  `json:"kveds"`
	OnboardingCompleted bool      `json:"onboardingCompleted"`
	Calculations        int64     `json:"calculations"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// FullName joins last, first and middle names the way they appear on a declaration
func (u *User) FullName() string {
	name := u.LastName
	if u.FirstName != "" {
		if name != "" {
			name += " "
		}
		name += u.FirstName
	}
	if u.MiddleName != nil && *u.MiddleName != "" {
		name += " " + *u.MiddleName
	}
	return name
}

// UserUpdate carries the editable profile fields
type UserUpdate struct {
	FirstName  string
	LastName   string
	MiddleName *string
	Phone      *string
	Email      *string // nil keeps the stored email
}

// Onboarding carries the data collected by the onboarding wizard
type Onboarding struct {
	FirstName  string
	LastName   string
	MiddleName *string
	TaxID      string
	Email      string
	Phone      string
	TaxGroup   TaxGroup
	PaysESV    bool
	KVEDs      []string
}

// UserStats summarizes a user's activity
type UserStats struct {
	Calculations int64 `json:"calculations"`
	DaysInSystem int   `json:"days_in_system"`
	IncomeCount  int64 `json:"income_count"`
	ExpenseCount int64 `json:"expense_count"`
}

// UserRepository defines the interface for user persistence operations
type UserRepository interface {
	GetByID(ctx context.Context, id int32) (*User, error)
	GetByFirebaseUID(ctx context.Context, uid string) (*User, error)
	CreateOrGetByFirebaseUID(ctx context.Context, uid, email, firstName, lastName string) (*User, error)
	Update(ctx context.Context, id int32, update UserUpdate) (*User, error)
	CompleteOnboarding(ctx context.Context, id int32, onboarding Onboarding) (*User, error)
	IncrementCalculations(ctx context.Context, id int32) error
	ListOnboarded(ctx context.Context) ([]*User, error)
}
