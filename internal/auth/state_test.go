package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromToken(t *testing.T) {
	valid := signed(t, 42, now.Add(time.Hour))

	s := FromToken(valid, now)
	assert.Equal(t, StatusAuthenticated, s.Status)
	assert.Equal(t, 42, s.Identity.UserID)
	assert.True(t, now.Add(time.Hour).Equal(s.Identity.ExpiresAt))
	assert.Equal(t, valid, s.Token)

	assert.Equal(t, StatusUnauthenticated, FromToken("", now).Status)
	assert.Equal(t, StatusUnauthenticated, FromToken("not-a-jwt", now).Status)
	assert.Equal(t, StatusUnauthenticated, FromToken(signed(t, 42, now), now).Status, "expiry is exclusive")
}

func TestGuard(t *testing.T) {
	authed := State{Status: StatusAuthenticated}

	tests := []struct {
		name  string
		state State
		req   Requirement
		want  Decision
	}{
		{"private loading waits", Loading(), Private, Wait},
		{"private signed in renders", authed, Private, Render},
		{"private signed out redirects", Unauthenticated(), Private, Redirect},
		{"guest signed in redirects", authed, GuestOnly, Redirect},
		{"guest signed out renders", Unauthenticated(), GuestOnly, Render},
		{"guest loading renders", Loading(), GuestOnly, Render},
		{"public always renders", Unauthenticated(), Public, Render},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Guard(tt.state, tt.req))
		})
	}
}

func TestStatusAndDecisionStrings(t *testing.T) {
	assert.Equal(t, "loading", StatusLoading.String())
	assert.Equal(t, "authenticated", StatusAuthenticated.String())
	assert.Equal(t, "unauthenticated", StatusUnauthenticated.String())
	assert.Equal(t, "wait", Wait.String())
	assert.Equal(t, "redirect", Redirect.String())
	assert.Equal(t, "render", Render.String())
}
