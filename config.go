package bridge

import (
	"strings"
	"time"

	"dario.cat/mergo"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-auth-bridge/engine"
	"github.com/goliatone/go-errors"
)

// DefaultPrefix is the path prefix auth routes live under when the
// configuration does not set one.
const DefaultPrefix = "/api/auth"

// DefaultCookieName is the session cookie name.
const DefaultCookieName = "auth_session"

// Config is the user-authored configuration. Zero values are filled in by
// DefineConfig; the struct is safe to declare inline in application code or
// to load from a file through the loader subpackage.
type Config struct {
	// Providers lists the OAuth/OIDC providers, in display order
	Providers []engine.ProviderConfig `json:"providers" mapstructure:"providers"`

	// Secret signs sessions and flow tokens. Falls back to AUTH_SECRET.
	Secret string `json:"secret" mapstructure:"secret"`

	// Prefix is the route prefix, default "/api/auth"
	Prefix string `json:"prefix" mapstructure:"prefix"`

	// BasePath always mirrors the resolved Prefix after DefineConfig.
	// Any caller-supplied value is overwritten during the merge.
	BasePath string `json:"base_path" mapstructure:"base_path"`

	// TrustHost permits deriving URLs from request headers. Nil means
	// resolve from the environment; an explicit false always wins.
	TrustHost *bool `json:"trust_host" mapstructure:"trust_host"`

	// Origin is the canonical origin used for absolute URLs, e.g.
	// "https://app.example.com". Optional.
	Origin string `json:"origin" mapstructure:"origin"`

	// CookieName for the session cookie, default "auth_session"
	CookieName string `json:"cookie_name" mapstructure:"cookie_name"`

	// SessionTTL controls session lifetime, default 24h
	SessionTTL time.Duration `json:"session_ttl" mapstructure:"session_ttl"`

	// SuccessRedirect is the post-signin/signout fallback target
	SuccessRedirect string `json:"success_redirect" mapstructure:"success_redirect"`

	// ErrorRedirect receives flow errors as query parameters
	ErrorRedirect string `json:"error_redirect" mapstructure:"error_redirect"`
}

// Validate checks the shape of a merged configuration.
func (c Config) Validate() error {
	if err := validation.ValidateStruct(&c,
		validation.Field(&c.Prefix, validation.Required, validation.By(validatePathPrefix)),
		validation.Field(&c.CookieName, validation.Required),
	); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "invalid bridge configuration")
	}

	seen := map[string]bool{}
	for _, p := range c.Providers {
		if p.ID == "" {
			return errors.New("provider id is required", errors.CategoryValidation)
		}
		if seen[p.ID] {
			return errors.New("provider id must be unique", errors.CategoryValidation).
				WithMetadata(map[string]any{"provider": p.ID})
		}
		seen[p.ID] = true
	}

	return nil
}

func validatePathPrefix(value any) error {
	s, _ := value.(string)
	if !strings.HasPrefix(s, "/") {
		return errors.New("must start with /", errors.CategoryValidation)
	}
	if strings.HasSuffix(s, "/") && s != "/" {
		return errors.New("must not end with /", errors.CategoryValidation)
	}
	return nil
}

// DefineConfig merges user options with environment defaults into a
// normalized configuration. It is a pure function of its inputs: pass an
// Environment to pin the snapshot, otherwise the process environment is
// read once per call.
//
// Precedence:
//   - Secret: explicit value, else AUTH_SECRET
//   - TrustHost: explicit value wins, including false; else
//     AUTH_TRUST_HOST || Vercel || Cloudflare Pages || GO_ENV != production
//   - Prefix: explicit value, else "/api/auth"
//   - BasePath: always the resolved Prefix
func DefineConfig(cfg Config, envs ...Environment) (Config, error) {
	var env Environment
	if len(envs) > 0 {
		env = envs[0]
	} else {
		env = CurrentEnvironment()
	}

	defaults := Config{
		Prefix:          DefaultPrefix,
		CookieName:      DefaultCookieName,
		SessionTTL:      engine.DefaultSessionTTL,
		SuccessRedirect: "/",
		ErrorRedirect:   "/login?error=auth_failed",
	}

	if err := mergo.Merge(&cfg, defaults); err != nil {
		return cfg, errors.Wrap(err, errors.CategoryInternal, "failed to merge configuration defaults")
	}

	if cfg.Secret == "" {
		cfg.Secret = env.Secret
	}

	if cfg.TrustHost == nil {
		trust := env.trustFallback()
		cfg.TrustHost = &trust
	}

	// BasePath mirrors the resolved prefix unconditionally; callers cannot
	// decouple the two.
	cfg.BasePath = cfg.Prefix

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// engineConfig maps the normalized configuration into the engine's shape.
func (c Config) engineConfig() engine.Config {
	trust := false
	if c.TrustHost != nil {
		trust = *c.TrustHost
	}

	return engine.Config{
		BasePath:        c.BasePath,
		Secret:          c.Secret,
		TrustHost:       trust,
		Origin:          c.Origin,
		CookieName:      c.CookieName,
		SessionTTL:      c.SessionTTL,
		SuccessRedirect: c.SuccessRedirect,
		ErrorRedirect:   c.ErrorRedirect,
		Providers:       c.Providers,
	}
}
