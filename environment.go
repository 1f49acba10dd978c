package bridge

import (
	"os"
	"strings"
)

// Environment variable names the bridge consumes.
const (
	EnvSecret    = "AUTH_SECRET"
	EnvTrustHost = "AUTH_TRUST_HOST"
	EnvVercel    = "VERCEL"
	EnvCFPages   = "CF_PAGES"
	EnvName      = "GO_ENV"
)

// Environment is a point-in-time snapshot of the variables configuration
// resolution depends on. It exists so DefineConfig and GetSession can take an
// explicit override instead of reading process state, which keeps tests
// deterministic.
type Environment struct {
	// Secret is the signing secret, from AUTH_SECRET
	Secret string

	// TrustHost is the explicit trust flag, from AUTH_TRUST_HOST
	TrustHost bool

	// Vercel marks a Vercel deployment
	Vercel bool

	// CFPages marks a Cloudflare Pages deployment
	CFPages bool

	// Name is the environment name, from GO_ENV. Empty means development.
	Name string
}

// CurrentEnvironment reads a fresh snapshot from the process environment.
// Nothing is cached; each call re-reads.
func CurrentEnvironment() Environment {
	return Environment{
		Secret:    os.Getenv(EnvSecret),
		TrustHost: ParseBool(os.Getenv(EnvTrustHost)),
		Vercel:    ParseBool(os.Getenv(EnvVercel)),
		CFPages:   ParseBool(os.Getenv(EnvCFPages)),
		Name:      os.Getenv(EnvName),
	}
}

// trustFallback computes the trust-host value used when the configuration
// does not set one explicitly. Hosted platforms terminate TLS in front of
// the app, and anything that is not production is assumed to be a dev
// machine behind a proxy.
func (e Environment) trustFallback() bool {
	return e.TrustHost || e.Vercel || e.CFPages || e.Name != "production"
}

// ParseBool reports whether an environment string is truthy. Only the
// literal tokens 1, true, yes, and on count, case-insensitively; everything
// else, including "0" and empty, is false. This is a public contract for
// users setting environment variables, stricter than strconv.ParseBool.
func ParseBool(value string) bool {
	switch strings.ToLower(value) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
