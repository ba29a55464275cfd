// Package auth obtains the content API token and derives the session state
// screens are gated on. Tokens come from, in order: the POSDASH_TOKEN
// environment variable, the cached session file, a credentials login.
package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/h0rv/posdash/internal/domain"
)

// TokenEnvVar holds a token that bypasses login.
const TokenEnvVar = "POSDASH_TOKEN"

// ErrNoToken indicates a provider has no token to offer.
var ErrNoToken = errors.New("no token available")

// TokenProvider defines the interface for obtaining an API token.
type TokenProvider interface {
	Name() string
	GetToken(ctx context.Context) (string, error)
}

// EnvProvider reads the token from an environment variable.
type EnvProvider struct {
	Var string
}

func (e *EnvProvider) varName() string {
	if e.Var == "" {
		return TokenEnvVar
	}
	return e.Var
}

// Name identifies the provider in errors.
func (e *EnvProvider) Name() string { return e.varName() }

// GetToken reads the variable. Returns ErrNoToken if it is unset or empty.
func (e *EnvProvider) GetToken(context.Context) (string, error) {
	token := strings.TrimSpace(os.Getenv(e.varName()))
	if token == "" {
		return "", fmt.Errorf("%w: %s not set", ErrNoToken, e.varName())
	}
	return token, nil
}

// SessionFileProvider reads the token cached by a previous login. Expired
// sessions are skipped.
type SessionFileProvider struct {
	Store *SessionStore
}

// Name identifies the provider in errors.
func (s *SessionFileProvider) Name() string { return "session file" }

// GetToken loads the cached session.
func (s *SessionFileProvider) GetToken(context.Context) (string, error) {
	sess, err := s.Store.Load()
	if err != nil {
		return "", err
	}
	if FromToken(sess.JWT, s.Store.now()).Status != StatusAuthenticated {
		return "", fmt.Errorf("%w: cached session expired", ErrNoToken)
	}
	return sess.JWT, nil
}

// LoginFunc exchanges credentials for a session.
type LoginFunc func(ctx context.Context, creds domain.Credentials) (*domain.Session, error)

// CredentialsProvider logs in with an email and password and caches the
// resulting session when Store is set.
type CredentialsProvider struct {
	Email    string
	Password string
	Login    LoginFunc
	Store    *SessionStore
}

// Name identifies the provider in errors.
func (c *CredentialsProvider) Name() string { return "credentials login" }

// GetToken performs the login.
func (c *CredentialsProvider) GetToken(ctx context.Context) (string, error) {
	if c.Email == "" || c.Password == "" {
		return "", fmt.Errorf("%w: auth.email and auth.password not configured", ErrNoToken)
	}
	sess, err := c.Login(ctx, domain.Credentials{Identifier: c.Email, Password: c.Password})
	if err != nil {
		return "", fmt.Errorf("login failed: %w", err)
	}
	if c.Store != nil {
		if err := c.Store.Save(*sess); err != nil {
			return "", err
		}
	}
	return sess.JWT, nil
}

// GetToken tries each provider in order and returns the first token found.
// When all fail, the error lists every cause and how to fix it.
func GetToken(ctx context.Context, providers ...TokenProvider) (string, error) {
	causes := make([]string, 0, len(providers))
	for _, p := range providers {
		token, err := p.GetToken(ctx)
		if err == nil {
			return token, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		causes = append(causes, fmt.Sprintf("%s: %v", p.Name(), err))
	}

	return "", fmt.Errorf(
		"failed to obtain API token (%s).\n"+
			"Please either:\n"+
			"  1. Run 'posdash login' to sign in and cache a session, or\n"+
			"  2. Set auth.email and auth.password in posdash.yaml, or\n"+
			"  3. Set the %s environment variable",
		strings.Join(causes, "; "), TokenEnvVar,
	)
}
