// Package engine implements the authentication request handler the bridge
// adapter delegates to. It routes the auth sub-paths (signin, signout,
// callback, session, csrf, providers) and leans on golang.org/x/oauth2 for
// the provider flows and golang-jwt for session tokens; nothing here keeps
// server-side state.
package engine

import (
	"crypto/sha256"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"golang.org/x/oauth2"
)

// Logger holds the logging methods the engine uses
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] ENGINE "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] ENGINE "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] ENGINE "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

// Config carries the normalized settings the engine needs. The adapter layer
// builds one from its merged configuration; the engine applies no precedence
// rules of its own beyond zero-value defaults.
type Config struct {
	// BasePath all auth routes live under, e.g. "/api/auth"
	BasePath string

	// Secret signs session, state, and csrf tokens
	Secret string

	// TrustHost permits deriving absolute URLs from forwarded request headers
	TrustHost bool

	// Origin is the canonical origin (scheme://host) used for absolute URLs.
	// When set it wins over any request-derived host.
	Origin string

	// CookieName for the session token (default "auth_session")
	CookieName string

	// CSRFCookieName for the csrf token (default "auth_csrf")
	CSRFCookieName string

	// SessionTTL controls session token and cookie lifetime
	SessionTTL time.Duration

	// SuccessRedirect is the fallback redirect after signin/signout
	SuccessRedirect string

	// ErrorRedirect receives flow errors as query parameters
	ErrorRedirect string

	Providers []ProviderConfig

	// HTTPClient overrides the client used for provider calls (tests)
	HTTPClient *http.Client

	Logger Logger
}

// ProviderInfo is the public description of a configured provider.
type ProviderInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	SignInURL   string `json:"signin_url"`
	CallbackURL string `json:"callback_url"`
}

// Engine serves the authentication sub-routes under a base path.
type Engine struct {
	cfg       Config
	providers map[string]*Provider
	order     []string
	state     *StateCodec
	csrf      *CSRFCodec
	logger    Logger
}

// New validates the configuration and builds an Engine.
func New(cfg Config) (*Engine, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}
	if cfg.BasePath == "" {
		cfg.BasePath = "/api/auth"
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "auth_session"
	}
	if cfg.CSRFCookieName == "" {
		cfg.CSRFCookieName = "auth_csrf"
	}
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.SuccessRedirect == "" {
		cfg.SuccessRedirect = "/"
	}
	if cfg.ErrorRedirect == "" {
		cfg.ErrorRedirect = "/login?error=auth_failed"
	}
	if cfg.Logger == nil {
		cfg.Logger = defLogger{}
	}

	e := &Engine{
		cfg:       cfg,
		providers: map[string]*Provider{},
		state:     NewStateCodec(deriveKey("state", cfg.Secret), 0),
		csrf:      NewCSRFCodec(deriveKey("csrf", cfg.Secret), 0),
		logger:    cfg.Logger,
	}

	for _, pc := range cfg.Providers {
		provider, err := newProvider(pc, joinPath(cfg.Origin, cfg.BasePath, "callback", pc.ID), cfg.HTTPClient)
		if err != nil {
			return nil, err
		}
		if _, dup := e.providers[pc.ID]; dup {
			return nil, errors.New("duplicate provider id", errors.CategoryValidation).
				WithMetadata(map[string]any{"provider": pc.ID})
		}
		e.providers[pc.ID] = provider
		e.order = append(e.order, pc.ID)
	}

	return e, nil
}

// SessionSecret exposes the key session tokens are signed with so the
// adapter's session accessor can delegate parsing.
func (e *Engine) SessionSecret() []byte {
	return []byte(e.cfg.Secret)
}

// CookieName returns the session cookie name the engine issues.
func (e *Engine) CookieName() string {
	return e.cfg.CookieName
}

// Handle is the universal request handler: it dispatches by the first path
// segment after the base path. Callers are expected to have matched the base
// path already; anything unknown below it is a 404.
func (e *Engine) Handle(ctx router.Context) error {
	action, param := splitAction(ctx.Path(), e.cfg.BasePath)
	method := strings.ToUpper(ctx.Method())

	switch action {
	case "providers":
		if method != "GET" {
			return e.methodNotAllowed(ctx)
		}
		return e.Providers(ctx)
	case "csrf":
		if method != "GET" {
			return e.methodNotAllowed(ctx)
		}
		return e.CSRF(ctx)
	case "session":
		if method != "GET" {
			return e.methodNotAllowed(ctx)
		}
		return e.Session(ctx)
	case "signin":
		if method == "POST" {
			if param == "" {
				return ctx.JSON(router.StatusBadRequest, map[string]string{
					"error": "provider is required",
				})
			}
			return e.SignIn(ctx, param)
		}
		return e.SignInOptions(ctx)
	case "callback":
		if param == "" {
			return ctx.JSON(router.StatusBadRequest, map[string]string{
				"error": "provider is required",
			})
		}
		return e.Callback(ctx, param)
	case "signout":
		if method != "POST" {
			return e.methodNotAllowed(ctx)
		}
		return e.SignOut(ctx)
	default:
		return ctx.JSON(http.StatusNotFound, map[string]string{
			"error": ErrUnknownAction.Message,
		})
	}
}

// Providers returns the configured providers keyed by id.
func (e *Engine) Providers(ctx router.Context) error {
	out := make(map[string]ProviderInfo, len(e.order))
	for _, id := range e.order {
		out[id] = e.providerInfo(ctx, id)
	}
	return ctx.JSON(router.StatusOK, out)
}

// SignInOptions lists the sign-in entry points, in configuration order.
func (e *Engine) SignInOptions(ctx router.Context) error {
	infos := make([]ProviderInfo, 0, len(e.order))
	for _, id := range e.order {
		infos = append(infos, e.providerInfo(ctx, id))
	}
	return ctx.JSON(router.StatusOK, map[string]any{
		"providers": infos,
	})
}

// CSRF issues a token, mirrors it into a cookie, and returns it.
func (e *Engine) CSRF(ctx router.Context) error {
	token, err := e.csrf.Issue()
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to issue csrf token")
	}

	ctx.Cookie(&router.Cookie{
		Name:     e.cfg.CSRFCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(DefaultCSRFTTL),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})

	return ctx.JSON(router.StatusOK, map[string]string{
		"csrf_token": token,
	})
}

// Session returns the current session, or a JSON null when there is none.
// Absent, malformed, and expired cookies are indistinguishable here.
func (e *Engine) Session(ctx router.Context) error {
	token := ctx.Cookies(e.cfg.CookieName)
	if token == "" {
		return ctx.JSON(router.StatusOK, (*Session)(nil))
	}

	session, err := ParseSession(token, e.SessionSecret())
	if err != nil {
		e.logger.Debug("session cookie rejected", "error", err)
		return ctx.JSON(router.StatusOK, (*Session)(nil))
	}

	return ctx.JSON(router.StatusOK, session)
}

// SignIn starts the provider flow: CSRF check, PKCE, signed state, redirect.
func (e *Engine) SignIn(ctx router.Context, providerID string) error {
	if err := e.verifyCSRF(ctx); err != nil {
		return ctx.JSON(router.StatusForbidden, map[string]string{
			"error": ErrCSRFMismatch.Message,
		})
	}

	provider, ok := e.providers[providerID]
	if !ok {
		return ctx.JSON(http.StatusNotFound, map[string]string{
			"error": ErrProviderNotFound.Message,
		})
	}

	redirectURL := ctx.FormValue("callback_url")
	if redirectURL == "" {
		redirectURL = ctx.Query("callback_url")
	}
	if redirectURL == "" {
		redirectURL = e.cfg.SuccessRedirect
	}

	verifier := oauth2.GenerateVerifier()

	stateToken, err := e.state.Encode(&OAuthState{
		Provider:    providerID,
		Verifier:    verifier,
		RedirectURL: redirectURL,
	})
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to encode oauth state")
	}

	return ctx.Redirect(provider.AuthCodeURL(stateToken, verifier), http.StatusFound)
}

// Callback completes the provider flow and establishes the session cookie.
// Flow failures redirect to the error target; they are not surfaced as
// response errors because the user agent arrives here via provider redirect.
func (e *Engine) Callback(ctx router.Context, providerID string) error {
	if errCode := ctx.Query("error"); errCode != "" {
		target := appendQueryParam(e.cfg.ErrorRedirect, "error", errCode)
		if desc := ctx.Query("error_description"); desc != "" {
			target = appendQueryParam(target, "desc", desc)
		}
		return ctx.Redirect(target, http.StatusFound)
	}

	code := ctx.Query("code")
	stateToken := ctx.Query("state")
	if code == "" || stateToken == "" {
		return ctx.Redirect(appendQueryParam(e.cfg.ErrorRedirect, "error", "missing_params"), http.StatusFound)
	}

	provider, ok := e.providers[providerID]
	if !ok {
		return ctx.JSON(http.StatusNotFound, map[string]string{
			"error": ErrProviderNotFound.Message,
		})
	}

	state, err := e.state.Decode(stateToken)
	if err != nil || state.Provider != providerID {
		return ctx.Redirect(appendQueryParam(e.cfg.ErrorRedirect, "error", TextCodeInvalidState), http.StatusFound)
	}

	token, err := provider.Exchange(ctx.Context(), code, state.Verifier)
	if err != nil {
		e.logFlowError("token exchange failed", err)
		return ctx.Redirect(appendQueryParam(e.cfg.ErrorRedirect, "error", TextCodeExchangeFailed), http.StatusFound)
	}

	profile, err := provider.Profile(ctx.Context(), token)
	if err != nil {
		e.logFlowError("profile fetch failed", err)
		return ctx.Redirect(appendQueryParam(e.cfg.ErrorRedirect, "error", TextCodeProfileFailed), http.StatusFound)
	}

	signed, err := SignSession(profile, providerID, e.SessionSecret(), e.cfg.SessionTTL)
	if err != nil {
		return err
	}

	ctx.Cookie(&router.Cookie{
		Name:     e.cfg.CookieName,
		Value:    signed,
		Path:     "/",
		Expires:  time.Now().Add(e.cfg.SessionTTL),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})

	redirectURL := state.RedirectURL
	if redirectURL == "" {
		redirectURL = e.cfg.SuccessRedirect
	}

	return ctx.Redirect(redirectURL, http.StatusFound)
}

// SignOut expires the session cookie and redirects.
func (e *Engine) SignOut(ctx router.Context) error {
	if err := e.verifyCSRF(ctx); err != nil {
		return ctx.JSON(router.StatusForbidden, map[string]string{
			"error": ErrCSRFMismatch.Message,
		})
	}

	ctx.Cookie(&router.Cookie{
		Name:     e.cfg.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})

	redirectURL := ctx.FormValue("callback_url")
	if redirectURL == "" {
		redirectURL = e.cfg.SuccessRedirect
	}

	return ctx.Redirect(redirectURL, http.StatusFound)
}

func (e *Engine) providerInfo(ctx router.Context, id string) ProviderInfo {
	pc := e.providers[id].config
	origin := e.requestOrigin(ctx)
	return ProviderInfo{
		ID:          pc.ID,
		Name:        pc.Name,
		Type:        pc.Type,
		SignInURL:   joinPath(origin, e.cfg.BasePath, "signin", pc.ID),
		CallbackURL: joinPath(origin, e.cfg.BasePath, "callback", pc.ID),
	}
}

// requestOrigin resolves the origin absolute URLs are built against. A
// configured Origin always wins; forwarded headers are consulted only when
// the host is trusted.
func (e *Engine) requestOrigin(ctx router.Context) string {
	if e.cfg.Origin != "" {
		return strings.TrimRight(e.cfg.Origin, "/")
	}
	if !e.cfg.TrustHost {
		return ""
	}

	host := ctx.GetString("X-Forwarded-Host", "")
	if host == "" {
		host = ctx.GetString("Host", "")
	}
	if host == "" {
		return ""
	}

	proto := ctx.GetString("X-Forwarded-Proto", "")
	if proto == "" {
		proto = "https"
	}

	return proto + "://" + host
}

func (e *Engine) verifyCSRF(ctx router.Context) error {
	token := ctx.FormValue(CSRFFormField)
	if token == "" {
		token = ctx.GetString(CSRFHeaderName, "")
	}
	return e.csrf.Verify(token)
}

func (e *Engine) methodNotAllowed(ctx router.Context) error {
	return ctx.JSON(http.StatusMethodNotAllowed, map[string]string{
		"error": ErrMethodNotAllowed.Message,
	})
}

func (e *Engine) logFlowError(msg string, err error) {
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		e.logger.Error(msg, "error", richErr.Message, "details", print.MaybePrettyJSON(richErr.Metadata))
		return
	}
	e.logger.Error(msg, "error", err)
}

// splitAction returns the first path segment after the base path plus the
// remainder, e.g. /api/auth/callback/github -> ("callback", "github").
func splitAction(path, basePath string) (string, string) {
	if !strings.HasPrefix(path, basePath) {
		return "", ""
	}

	rest := strings.Trim(strings.TrimPrefix(path, basePath), "/")
	if rest == "" {
		return "", ""
	}

	parts := strings.SplitN(rest, "/", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

func joinPath(origin string, parts ...string) string {
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.Trim(part, "/")
		if trimmed != "" {
			segments = append(segments, trimmed)
		}
	}
	return strings.TrimRight(origin, "/") + "/" + strings.Join(segments, "/")
}

func deriveKey(purpose, secret string) []byte {
	sum := sha256.Sum256([]byte(purpose + ":" + secret))
	return sum[:]
}

func appendQueryParam(rawURL, key, value string) string {
	if rawURL == "" {
		return ""
	}

	parsed, err := url.Parse(rawURL)
	if err == nil {
		query := parsed.Query()
		query.Set(key, value)
		parsed.RawQuery = query.Encode()
		return parsed.String()
	}

	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + url.QueryEscape(key) + "=" + url.QueryEscape(value)
}
