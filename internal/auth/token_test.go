// ABOUTME: Tests for JWT token generation and verification
// ABOUTME: Covers round trips, expiry, tampering, and secret length enforcement

package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var tokenTestSecret = []byte("token-verifier-test-secret-32by!")

func TestJWTVerifier_RoundTrip(t *testing.T) {
	verifier, err := NewJWTVerifier(tokenTestSecret)
	if err != nil {
		t.Fatalf("NewJWTVerifier() error = %v", err)
	}

	token, err := verifier.Generate("user-123", time.Hour)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	userID, err := verifier.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if userID != "user-123" {
		t.Errorf("Verify() userID = %q, want user-123", userID)
	}
}

func TestJWTVerifier_Expired(t *testing.T) {
	verifier, _ := NewJWTVerifier(tokenTestSecret)

	token, err := verifier.Generate("user-123", -time.Minute)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	_, err = verifier.Verify(token)
	if !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Verify() error = %v, want ErrExpiredToken", err)
	}
}

func TestJWTVerifier_Tampered(t *testing.T) {
	verifier, _ := NewJWTVerifier(tokenTestSecret)

	token, _ := verifier.Generate("user-123", time.Hour)
	tampered := token[:len(token)-2] + "xx"

	if _, err := verifier.Verify(tampered); err == nil {
		t.Error("Verify() accepted a tampered token")
	}
}

func TestJWTVerifier_WrongSecret(t *testing.T) {
	verifier, _ := NewJWTVerifier(tokenTestSecret)
	other, _ := NewJWTVerifier([]byte(strings.Repeat("x", 32)))

	token, _ := verifier.Generate("user-123", time.Hour)

	if _, err := other.Verify(token); err == nil {
		t.Error("Verify() accepted a token signed with a different secret")
	}
}

func TestNewJWTVerifier_ShortSecret(t *testing.T) {
	_, err := NewJWTVerifier([]byte("too-short"))
	if !errors.Is(err, ErrShortSecret) {
		t.Errorf("NewJWTVerifier() error = %v, want ErrShortSecret", err)
	}
}
