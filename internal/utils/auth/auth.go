package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/talx-hub/gopher-auth/internal/model"
	"github.com/talx-hub/gopher-auth/internal/model/user"
	"github.com/talx-hub/gopher-auth/internal/serviceerrs"
)

const TokenExpire = model.DefaultTokenTTL

const issuer = "gopher-auth"

type Claims struct {
	jwt.RegisteredClaims
	Email     string `json:"email"`
	UserID    string `json:"user_id"`
	AccountID int64  `json:"id"`
}

// BuildJWTString signs a token for u that expires after ttl. A zero ttl means
// TokenExpire.
func BuildJWTString(u user.User, secret []byte, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", serviceerrs.ErrEmptySecret
	}
	if ttl <= 0 {
		ttl = TokenExpire
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256,
		Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    issuer,
				Subject:   u.UserID,
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			},
			AccountID: u.ID,
			Email:     u.Email,
			UserID:    u.UserID,
		},
	)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("JWT signing: %w", err)
	}
	return tokenString, nil
}

func CheckToken(tokenString string, secret []byte) (Claims, error) {
	if len(secret) == 0 {
		return Claims{}, serviceerrs.ErrEmptySecret
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(
		tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, serviceerrs.ErrTokenExpired
		}
		return Claims{}, fmt.Errorf("%w: %w", serviceerrs.ErrInvalidToken, err)
	}
	if claims.UserID == "" || claims.Subject != claims.UserID {
		return Claims{}, fmt.Errorf("%w: subject mismatch", serviceerrs.ErrInvalidToken)
	}

	return *claims, nil
}

func WithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, model.KeyContextClaims, c)
}

func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(model.KeyContextClaims).(Claims)
	return c, ok
}
