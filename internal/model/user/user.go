package user

import (
	"context"
	"time"
)

// User is a row of the users relation. PasswordHash is empty for accounts
// that never set a password.
type User struct {
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ProfilePicture *string
	WalletAddress  *string
	NFTTier        *string
	UserID         string
	Email          string
	Name           string
	PasswordHash   string
	ID             int64
}

// ProfileUpdate holds the mutable fields of a profile. Nil fields are left
// unchanged.
type ProfileUpdate struct {
	Name           *string
	ProfilePicture *string
}

func (p ProfileUpdate) IsEmpty() bool {
	return p.Name == nil && p.ProfilePicture == nil
}

type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByUserID(ctx context.Context, userID string) (User, error)
	UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (User, error)
}
