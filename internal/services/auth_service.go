package services

import (
	"fmt"

	"github.com/taskflow/taskflow-api/internal/auth"
)

// AuthService ties the identity resolver and the token codec together into
// the login and token-validation entry points.
type AuthService struct {
	resolver *auth.Resolver
	codec    *auth.TokenCodec
}

// NewAuthService creates a new AuthService.
func NewAuthService(resolver *auth.Resolver, codec *auth.TokenCodec) *AuthService {
	return &AuthService{
		resolver: resolver,
		codec:    codec,
	}
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Identifier string
	Password   string
}

// LoginResult carries the signed token and the principal it was issued for.
type LoginResult struct {
	Token     string
	Principal auth.Principal
}

// Login authenticates a credential pair and issues a bearer token for the
// resolved principal.
func (s *AuthService) Login(input LoginInput) (*LoginResult, error) {
	principal, err := s.resolver.Authenticate(input.Identifier, input.Password)
	if err != nil {
		return nil, err
	}

	token, err := s.codec.Issue(principal.Subject())
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &LoginResult{
		Token:     token,
		Principal: principal,
	}, nil
}

// FromToken verifies a bearer token and reconstructs its acting principal.
// Every failure surfaces as auth.ErrInvalidToken.
func (s *AuthService) FromToken(tokenString string) (auth.Principal, error) {
	subject, err := s.codec.Verify(tokenString)
	if err != nil {
		return auth.Principal{}, err
	}
	return s.resolver.ResolveSubject(subject)
}
