package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/talx-hub/gopher-auth/internal/api/dto"
	"github.com/talx-hub/gopher-auth/internal/api/respond"
	"github.com/talx-hub/gopher-auth/internal/serviceerrs"
	"github.com/talx-hub/gopher-auth/internal/utils/auth"
)

const (
	msgInvalidCredentials = "Invalid email or password"
	msgPasswordNotSet     = "Account not properly set up. Please contact support."
	msgLoginSuccess       = "Login successful"
	msgRegisterSuccess    = "User registered successfully"
	msgUserExists         = "User already exists"
)

type AuthOptions struct {
	Secret             string
	TokenTTL           time.Duration
	PasswordMinEntropy float64
}

type AuthHandler struct {
	logger     *slog.Logger
	repo       UserRepository
	hasher     PasswordHasher
	secret     string
	tokenTTL   time.Duration
	minEntropy float64
}

func NewAuthHandler(repo UserRepository, hasher PasswordHasher,
	log *slog.Logger, opts AuthOptions,
) *AuthHandler {
	return &AuthHandler{
		logger:     log,
		repo:       repo,
		hasher:     hasher,
		secret:     opts.Secret,
		tokenTTL:   opts.TokenTTL,
		minEntropy: opts.PasswordMinEntropy,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := requestLogger(r, h.logger)

	var req dto.LoginRequest
	if !decodeBody(w, r, log, &req) {
		return
	}
	if rejectInvalid(w, r, log, req.IsValid()) {
		return
	}

	u, err := h.repo.FindByEmail(ctx, req.Email)
	if errors.Is(err, serviceerrs.ErrNotFound) {
		respond.Error(ctx, w, log, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}
	if err != nil {
		respond.Internal(ctx, w, log, "failed to find user on login", err)
		return
	}

	if u.PasswordHash == "" {
		log.LogAttrs(ctx,
			slog.LevelWarn,
			"login attempt for account without password",
			slog.String("user_id", u.UserID),
		)
		respond.Error(ctx, w, log, http.StatusUnauthorized, msgPasswordNotSet)
		return
	}

	match, err := h.hasher.Verify(ctx, req.Password, u.PasswordHash)
	if err != nil {
		respond.Internal(ctx, w, log, "failed to verify password", err)
		return
	}
	if !match {
		respond.Error(ctx, w, log, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}

	token, err := auth.BuildJWTString(u, []byte(h.secret), h.tokenTTL)
	if err != nil {
		respond.Internal(ctx, w, log, "failed to issue token", err)
		return
	}

	respond.JSON(ctx, w, log, http.StatusOK, dto.LoginResponse{
		Success: true,
		Message: msgLoginSuccess,
		Token:   token,
		User:    dto.NewUserResponse(u),
	})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := requestLogger(r, h.logger)

	var req dto.RegisterRequest
	if !decodeBody(w, r, log, &req) {
		return
	}
	if rejectInvalid(w, r, log, req.IsValid(h.minEntropy)) {
		return
	}

	hashed, err := h.hasher.Hash(ctx, req.Password)
	if err != nil {
		respond.Internal(ctx, w, log, "failed to hash password", err)
		return
	}

	u := req.ToUser(hashed)
	err = h.repo.Create(ctx, &u)
	if errors.Is(err, serviceerrs.ErrAlreadyExists) {
		respond.Error(ctx, w, log, http.StatusConflict, msgUserExists)
		return
	}
	if err != nil {
		respond.Internal(ctx, w, log, "failed to create user", err)
		return
	}

	log.LogAttrs(ctx,
		slog.LevelInfo,
		"user registered",
		slog.String("user_id", u.UserID),
		slog.Int64("id", u.ID),
	)
	respond.JSON(ctx, w, log, http.StatusOK, dto.UserEnvelope{
		Success: true,
		Message: msgRegisterSuccess,
		User:    dto.NewUserResponse(u),
	})
}
