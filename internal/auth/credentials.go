// ABOUTME: Credential checking against the user store with bcrypt
// ABOUTME: Distinguishes bad credentials from provider faults for the sign-in action

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/ledgerview/ledgerview/internal/store"
)

// ErrInvalidCredentials is returned when the email or password is wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ProviderError wraps a sign-in failure that is not a credential mismatch,
// such as the user store being unreachable.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("auth provider: %v", e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// UserStore is the subset of the store the provider needs.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*store.User, error)
}

// CredentialsProvider verifies email/password pairs against the user store.
type CredentialsProvider struct {
	users  UserStore
	logger *slog.Logger
}

// NewCredentialsProvider creates a provider backed by the given user store.
func NewCredentialsProvider(users UserStore) *CredentialsProvider {
	return &CredentialsProvider{
		users:  users,
		logger: slog.Default().With("component", "auth"),
	}
}

// dummyHash is compared against when the user doesn't exist, so lookups for
// known and unknown emails take the same time.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// SignIn verifies the submitted credentials. It returns the matched user,
// ErrInvalidCredentials on a wrong email or password, or a *ProviderError
// when the store itself fails.
func (p *CredentialsProvider) SignIn(ctx context.Context, email, password string) (*store.User, error) {
	user, err := p.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Constant-time path for unknown emails
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, &ProviderError{Err: err}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	p.logger.Info("sign-in successful", "email", email)
	return user, nil
}

// HashPassword returns a bcrypt hash of the password at the default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}
