package mocks

import (
	"context"

	"github.com/phrazzld/styleai-api/internal/service/auth"
)

// MockTokenVerifier implements auth.TokenVerifier for testing
type MockTokenVerifier struct {
	VerifyFn func(ctx context.Context, token string) (*auth.Claims, error)

	// Default return values
	Claims *auth.Claims
	Err    error

	// LastToken records the most recent token passed to VerifyIDToken
	LastToken string
}

// Ensure MockTokenVerifier implements auth.TokenVerifier
var _ auth.TokenVerifier = (*MockTokenVerifier)(nil)

// VerifyIDToken implements auth.TokenVerifier
func (m *MockTokenVerifier) VerifyIDToken(ctx context.Context, token string) (*auth.Claims, error) {
	m.LastToken = token
	if m.VerifyFn != nil {
		return m.VerifyFn(ctx, token)
	}
	return m.Claims, m.Err
}
