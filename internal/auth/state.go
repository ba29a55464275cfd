package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Status is the session status screens are gated on.
type Status int

const (
	StatusLoading Status = iota
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	default:
		return "loading"
	}
}

// Identity is what the token says about the signed-in user.
type Identity struct {
	UserID    int
	Email     string
	ExpiresAt time.Time
}

// State is injected into every screen.
type State struct {
	Status   Status
	Identity Identity
	Token    string
}

// Loading is the state before token resolution finishes.
func Loading() State { return State{Status: StatusLoading} }

// Unauthenticated is the state without a usable token.
func Unauthenticated() State { return State{Status: StatusUnauthenticated} }

type claims struct {
	ID    int    `json:"id"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// FromToken decodes token without verifying its signature; the API verifies
// it on every request. Malformed or expired tokens are unauthenticated.
func FromToken(token string, now time.Time) State {
	if token == "" {
		return Unauthenticated()
	}
	var c claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &c); err != nil {
		return Unauthenticated()
	}

	id := Identity{UserID: c.ID, Email: c.Email}
	if c.ExpiresAt != nil {
		id.ExpiresAt = c.ExpiresAt.Time
		if !now.Before(id.ExpiresAt) {
			return Unauthenticated()
		}
	}
	return State{Status: StatusAuthenticated, Identity: id, Token: token}
}

// Requirement is a screen's access rule.
type Requirement int

const (
	// Public screens render for everyone.
	Public Requirement = iota
	// Private screens need a signed-in user.
	Private
	// GuestOnly screens, like login, are skipped once signed in.
	GuestOnly
)

// Decision is the outcome of Guard.
type Decision int

const (
	Render Decision = iota
	// Wait shows a spinner until the state resolves.
	Wait
	// Redirect sends private screens to login and guest screens home.
	Redirect
)

func (d Decision) String() string {
	switch d {
	case Wait:
		return "wait"
	case Redirect:
		return "redirect"
	default:
		return "render"
	}
}

// Guard decides how a screen with req renders under s.
func Guard(s State, req Requirement) Decision {
	switch req {
	case Private:
		switch s.Status {
		case StatusLoading:
			return Wait
		case StatusAuthenticated:
			return Render
		default:
			return Redirect
		}
	case GuestOnly:
		if s.Status == StatusAuthenticated {
			return Redirect
		}
		return Render
	default:
		return Render
	}
}
