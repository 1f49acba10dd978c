package bridge

import (
	"github.com/goliatone/go-auth-bridge/engine"
	"github.com/goliatone/go-router"
)

// GetSession returns the current session for a request, or nil. There are
// no partial results: a missing cookie, a malformed token, a bad signature,
// and an expired session all collapse to nil by design, so callers branch
// on presence only.
func GetSession(ctx router.Context, cfg Config, envs ...Environment) *engine.Session {
	normalized, err := DefineConfig(cfg, envs...)
	if err != nil {
		return nil
	}

	if normalized.Secret == "" {
		return nil
	}

	token := ctx.Cookies(normalized.CookieName)
	if token == "" {
		return nil
	}

	session, err := engine.ParseSession(token, []byte(normalized.Secret))
	if err != nil {
		return nil
	}

	return session
}

// CurrentUser is a convenience accessor for the session's profile. It
// returns nil when there is no valid session.
func CurrentUser(ctx router.Context, cfg Config, envs ...Environment) *engine.Profile {
	session := GetSession(ctx, cfg, envs...)
	if session == nil {
		return nil
	}
	return &session.User
}
