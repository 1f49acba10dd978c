package bridge

import (
	"fmt"
	"html"

	"github.com/goliatone/go-router"
)

// TemplateSessionKey is the global-data key templates read the session from.
var TemplateSessionKey = "current_session"

// TemplateHelpers returns helper functions and data for template renderers
// that accept a global-data map.
//
// In templates:
//
//	{{ signin_url("github") }}
//	{{ signout_url() }}
//	{% if current_session %}
//	{{ signin_button("github", "Sign in with GitHub") }}
func TemplateHelpers(cfg Config, envs ...Environment) map[string]any {
	normalized, err := DefineConfig(cfg, envs...)
	if err != nil {
		normalized = cfg
		if normalized.BasePath == "" {
			normalized.BasePath = DefaultPrefix
		}
	}

	base := normalized.BasePath

	return map[string]any{
		"signin_url": func(provider string) string {
			return base + "/signin/" + provider
		},
		"signout_url": func() string {
			return base + "/signout"
		},
		"session_url": func() string {
			return base + "/session"
		},
		"csrf_url": func() string {
			return base + "/csrf"
		},
		"providers_url": func() string {
			return base + "/providers"
		},
		"signin_button":  signinButton(base),
		"signout_button": signoutButton(base),
	}
}

// TemplateHelpersWithSession injects a known session as current_session.
// Useful when the caller already resolved the session for the request.
func TemplateHelpersWithSession(cfg Config, session any, envs ...Environment) map[string]any {
	helpers := TemplateHelpers(cfg, envs...)
	helpers[TemplateSessionKey] = session
	return helpers
}

// TemplateHelpersWithRouter resolves the session from the request context
// and returns helpers with current_session populated when a valid session
// cookie is present.
func TemplateHelpersWithRouter(ctx router.Context, cfg Config, envs ...Environment) map[string]any {
	helpers := TemplateHelpers(cfg, envs...)
	if session := GetSession(ctx, cfg, envs...); session != nil {
		helpers[TemplateSessionKey] = session
	}
	return helpers
}

// signinButton renders a minimal POST form targeting the signin route. The
// csrf token is left to the caller's form middleware; the field is emitted
// empty so markup stays valid either way.
func signinButton(base string) func(provider, label string) string {
	return func(provider, label string) string {
		if label == "" {
			label = "Sign in"
		}
		return fmt.Sprintf(
			`<form action="%s/signin/%s" method="post"><button type="submit">%s</button></form>`,
			base, html.EscapeString(provider), html.EscapeString(label),
		)
	}
}

func signoutButton(base string) func(label string) string {
	return func(label string) string {
		if label == "" {
			label = "Sign out"
		}
		return fmt.Sprintf(
			`<form action="%s/signout" method="post"><button type="submit">%s</button></form>`,
			base, html.EscapeString(label),
		)
	}
}
