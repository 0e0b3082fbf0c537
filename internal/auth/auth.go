// Package auth holds staff credentials and the authenticated staff member
// carried on a request context.
package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

type contextKey struct{}

// Staff identifies the brokerage employee behind a request.
type Staff struct {
	Name string
}

func WithStaff(ctx context.Context, s Staff) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

func FromContext(ctx context.Context) (Staff, bool) {
	s, ok := ctx.Value(contextKey{}).(Staff)
	return s, ok
}

// StaffName returns the authenticated staff name, or "" when auth is off.
func StaffName(ctx context.Context) string {
	s, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return s.Name
}

// HashPassword returns a bcrypt hash suitable for the staff config.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is empty")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// dummyHash is compared against for unknown names so a miss costs the same
// as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("homeeasy"), bcrypt.DefaultCost)

// Accounts verifies staff logins against bcrypt hashes.
type Accounts map[string]string

// Enabled reports whether any staff accounts are configured.
func (a Accounts) Enabled() bool { return len(a) > 0 }

// Verify reports whether password matches the hash stored for name.
func (a Accounts) Verify(name, password string) bool {
	hash, ok := a[name]
	if !ok {
		bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
