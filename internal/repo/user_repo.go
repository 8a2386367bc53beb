package repo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/talx-hub/gopher-auth/internal/model"
	"github.com/talx-hub/gopher-auth/internal/model/user"
)

const userColumns = `id, user_id, email, name, COALESCE(password_hash, ''),
	profile_picture, wallet_address, nft_tier, created_at, updated_at`

const (
	queryFindByEmail = `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	queryFindByUserID = `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`

	queryInsertUser = `INSERT INTO users
	(user_id, email, name, password_hash, profile_picture, wallet_address, nft_tier)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id, created_at, updated_at`

	queryUpdateProfile = `UPDATE users SET
		name = COALESCE($2, name),
		profile_picture = COALESCE($3, profile_picture),
		updated_at = clock_timestamp()
	WHERE user_id = $1
	RETURNING ` + userColumns
)

type UserRepository struct {
	DB
}

func NewUserRepository(pool connectionPool, log *slog.Logger) *UserRepository {
	return &UserRepository{
		DB{
			pool: pool,
			log:  log,
		},
	}
}

// Create inserts u and fills its store-assigned columns. An empty UserID is
// replaced with a random UUID. Duplicate email or user_id yields
// serviceerrs.ErrAlreadyExists.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	if u.UserID == "" {
		u.UserID = uuid.NewString()
	}

	var passwordHash *string
	if u.PasswordHash != "" {
		passwordHash = &u.PasswordHash
	}

	err := r.pool.QueryRow(ctx, queryInsertUser,
		u.UserID,
		u.Email,
		u.Name,
		passwordHash,
		u.ProfilePicture,
		u.WalletAddress,
		u.NFTTier,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		err = classifyError(err)
		r.log.LogAttrs(ctx,
			slog.LevelDebug,
			"failed to insert user",
			slog.String("email", u.Email),
			slog.Any(model.KeyLoggerError, err),
		)
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string,
) (user.User, error) {
	return r.findOne(ctx, queryFindByEmail, email)
}

func (r *UserRepository) FindByUserID(ctx context.Context, userID string,
) (user.User, error) {
	return r.findOne(ctx, queryFindByUserID, userID)
}

// UpdateProfile applies the non-nil fields of upd and refreshes updated_at.
func (r *UserRepository) UpdateProfile(ctx context.Context,
	userID string, upd user.ProfileUpdate,
) (user.User, error) {
	row := r.pool.QueryRow(ctx, queryUpdateProfile,
		userID, upd.Name, upd.ProfilePicture)
	u, err := scanUser(row)
	if err != nil {
		return user.User{}, fmt.Errorf(
			"failed to update profile of user %s: %w", userID, classifyError(err))
	}
	return u, nil
}

func (r *UserRepository) findOne(ctx context.Context, query, key string,
) (user.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, query, key))
	if err != nil {
		return user.User{}, fmt.Errorf(
			"failed to find user in DB: %w", classifyError(err))
	}
	return u, nil
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.UserID,
		&u.Email,
		&u.Name,
		&u.PasswordHash,
		&u.ProfilePicture,
		&u.WalletAddress,
		&u.NFTTier,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return user.User{}, err //nolint: wrapcheck // wrapped by callers
	}
	return u, nil
}
