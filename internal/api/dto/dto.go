package dto

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	passwordvalidator "github.com/wagslane/go-password-validator"

	"github.com/talx-hub/gopher-auth/internal/model"
	"github.com/talx-hub/gopher-auth/internal/model/user"
	"github.com/talx-hub/gopher-auth/internal/utils/password"
)

// ValidationError carries a message that is safe to show to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

var (
	errNameLength = invalid(
		"Name must be between 1 and %d characters", model.MaxNameLength)
	errPasswordLength = invalid(
		"Password must not exceed %d bytes", password.MaxLength)
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

func (r *LoginRequest) IsValid() error {
	if r.Email == "" || r.Password == "" {
		return invalid("Email and password are required")
	}
	return nil
}

type RegisterRequest struct {
	ProfilePicture *string `json:"profile_picture"`
	WalletAddress  *string `json:"wallet_address"`
	NFTTier        *string `json:"nft_tier"`
	Email          string  `json:"email"`
	Password       string  `json:"password"`
	Name           string  `json:"name"`
	UserID         string  `json:"user_id"`
}

func (r *RegisterRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
	r.Name = strings.TrimSpace(r.Name)
	r.UserID = strings.TrimSpace(r.UserID)
}

// IsValid checks required fields and length limits. minEntropyBits enables
// the password strength policy when positive.
func (r *RegisterRequest) IsValid(minEntropyBits float64) error {
	if r.Email == "" || r.Password == "" || r.Name == "" {
		return invalid("Email, password and name are required")
	}
	if utf8.RuneCountInString(r.Name) > model.MaxNameLength {
		return errNameLength
	}
	if len(r.Password) > password.MaxLength {
		return errPasswordLength
	}
	if minEntropyBits > 0 {
		if err := passwordvalidator.Validate(r.Password, minEntropyBits); err != nil {
			return &ValidationError{Message: err.Error()}
		}
	}
	return nil
}

func (r *RegisterRequest) ToUser(passwordHash string) user.User {
	return user.User{
		ProfilePicture: r.ProfilePicture,
		WalletAddress:  r.WalletAddress,
		NFTTier:        r.NFTTier,
		UserID:         r.UserID,
		Email:          r.Email,
		Name:           r.Name,
		PasswordHash:   passwordHash,
	}
}

type UpdateProfileRequest struct {
	Name           *string `json:"name"`
	ProfilePicture *string `json:"profile_picture"`
	UserID         string  `json:"userId"`
}

func (r *UpdateProfileRequest) Normalize() {
	r.UserID = strings.TrimSpace(r.UserID)
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		r.Name = &name
	}
}

func (r *UpdateProfileRequest) IsValid() error {
	if r.UserID == "" {
		return invalid("userId is required")
	}
	if r.Name != nil {
		if *r.Name == "" || utf8.RuneCountInString(*r.Name) > model.MaxNameLength {
			return errNameLength
		}
	}
	if r.ToUpdate().IsEmpty() {
		return invalid("Nothing to update")
	}
	return nil
}

func (r *UpdateProfileRequest) ToUpdate() user.ProfileUpdate {
	return user.ProfileUpdate{
		Name:           r.Name,
		ProfilePicture: r.ProfilePicture,
	}
}

// UserResponse is the public view of a user; it never carries the password
// hash.
type UserResponse struct {
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	ProfilePicture *string   `json:"profile_picture"`
	WalletAddress  *string   `json:"wallet_address"`
	NFTTier        *string   `json:"nft_tier"`
	UserID         string    `json:"user_id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	ID             int64     `json:"id"`
}

func NewUserResponse(u user.User) UserResponse {
	return UserResponse{
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
		ProfilePicture: u.ProfilePicture,
		WalletAddress:  u.WalletAddress,
		NFTTier:        u.NFTTier,
		UserID:         u.UserID,
		Email:          u.Email,
		Name:           u.Name,
		ID:             u.ID,
	}
}

type LoginResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
	Success bool         `json:"success"`
}

type UserEnvelope struct {
	Message string       `json:"message,omitempty"`
	User    UserResponse `json:"user"`
	Success bool         `json:"success"`
}

type ErrorResponse struct {
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
	Success bool   `json:"success"`
}

type HealthResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
	Database  string    `json:"database"`
}

func IsValidationError(err error) (*ValidationError, bool) {
	var vErr *ValidationError
	ok := errors.As(err, &vErr)
	return vErr, ok
}
