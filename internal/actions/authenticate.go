// ABOUTME: Sign-in action delegating credential checks to the auth provider
// ABOUTME: Maps known authentication failures to messages; unrecognized faults propagate

package actions

import (
	"context"
	"errors"

	"github.com/ledgerview/ledgerview/internal/auth"
	"github.com/ledgerview/ledgerview/internal/store"
)

// Sign-in messages shown on the login form.
const (
	MsgInvalidCredentials = "Invalid credentials. Please try again."
	MsgSignInFailed       = "Something went wrong. Please try again."
)

// SignInProvider attempts a credentials sign-in.
type SignInProvider interface {
	SignIn(ctx context.Context, email, password string) (*store.User, error)
}

// Authenticate attempts a credentials sign-in with the submitted form data.
// On success it returns the user and an empty message. Credential mismatches
// and provider faults come back as messages; any other error is returned
// unhandled for the caller to surface.
func Authenticate(ctx context.Context, provider SignInProvider, email, password string) (*store.User, string, error) {
	user, err := provider.SignIn(ctx, email, password)
	if err == nil {
		return user, "", nil
	}

	if errors.Is(err, auth.ErrInvalidCredentials) {
		return nil, MsgInvalidCredentials, nil
	}

	var provErr *auth.ProviderError
	if errors.As(err, &provErr) {
		return nil, MsgSignInFailed, nil
	}

	return nil, "", err
}
