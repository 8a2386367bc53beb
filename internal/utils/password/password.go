package password

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/talx-hub/gopher-auth/internal/model"
	"github.com/talx-hub/gopher-auth/internal/serviceerrs"
	"github.com/talx-hub/gopher-auth/internal/utils/semaphore"
)

// MaxLength is the longest password bcrypt accepts, in bytes.
const MaxLength = 72

type Hasher struct {
	sema *semaphore.Semaphore
	cost int
}

type Option func(*Hasher)

// WithCost overrides the bcrypt cost factor.
func WithCost(cost int) Option {
	return func(h *Hasher) {
		h.cost = cost
	}
}

// New returns a Hasher that runs at most maxConcurrent bcrypt computations
// at a time.
func New(maxConcurrent uint64, opts ...Option) *Hasher {
	h := &Hasher{
		sema: semaphore.New(maxConcurrent),
		cost: model.DefaultBcryptCost,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Hasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := h.sema.Acquire(ctx); err != nil {
		return "", fmt.Errorf("%w: %w", serviceerrs.ErrHashBusy, err)
	}
	defer h.sema.Release()

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches hashed. An empty or malformed hash
// is a mismatch, not an error; the error is reserved for a slot that could not
// be acquired.
func (h *Hasher) Verify(ctx context.Context, plaintext, hashed string) (bool, error) {
	if hashed == "" {
		return false, nil
	}
	if err := h.sema.Acquire(ctx); err != nil {
		return false, fmt.Errorf("%w: %w", serviceerrs.ErrHashBusy, err)
	}
	defer h.sema.Release()

	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext))
	// mismatches and malformed hashes are both a plain "no"
	return err == nil, nil
}
