package engine

import "github.com/goliatone/go-errors"

const (
	TextCodeProviderNotFound = "auth_provider_not_found"
	TextCodeUnknownAction    = "auth_unknown_action"
	TextCodeMethodNotAllowed = "auth_method_not_allowed"
	TextCodeInvalidState     = "auth_invalid_state"
	TextCodeStateExpired     = "auth_state_expired"
	TextCodeCSRFMismatch     = "auth_csrf_mismatch"
	TextCodeExchangeFailed   = "auth_token_exchange_failed"
	TextCodeProfileFailed    = "auth_profile_fetch_failed"
	TextCodeMissingSecret    = "auth_missing_secret"
	TextCodeUntrustedHost    = "auth_untrusted_host"
)

// ErrProviderNotFound is returned when a requested provider is not configured.
var ErrProviderNotFound = errors.New("auth provider not found", errors.CategoryNotFound).
	WithTextCode(TextCodeProviderNotFound).
	WithCode(errors.CodeNotFound)

// ErrUnknownAction is returned for paths under the base path that match no action.
var ErrUnknownAction = errors.New("unknown auth action", errors.CategoryNotFound).
	WithTextCode(TextCodeUnknownAction).
	WithCode(errors.CodeNotFound)

// ErrMethodNotAllowed is returned when an action exists but not for the method.
var ErrMethodNotAllowed = errors.New("method not allowed for auth action", errors.CategoryBadInput).
	WithTextCode(TextCodeMethodNotAllowed).
	WithCode(errors.CodeBadRequest)

// ErrInvalidState is returned when the OAuth state is missing, invalid, or tampered.
var ErrInvalidState = errors.New("invalid oauth state", errors.CategoryBadInput).
	WithTextCode(TextCodeInvalidState).
	WithCode(errors.CodeBadRequest)

// ErrStateExpired is returned when the OAuth state has expired.
var ErrStateExpired = errors.New("oauth state expired", errors.CategoryBadInput).
	WithTextCode(TextCodeStateExpired).
	WithCode(errors.CodeBadRequest)

// ErrCSRFMismatch is returned when a mutating request carries no valid CSRF token.
var ErrCSRFMismatch = errors.New("csrf token mismatch", errors.CategoryAuth).
	WithTextCode(TextCodeCSRFMismatch).
	WithCode(errors.CodeForbidden)

// ErrTokenExchangeFailed is returned when a provider code exchange fails.
var ErrTokenExchangeFailed = errors.New("token exchange failed", errors.CategoryAuth).
	WithTextCode(TextCodeExchangeFailed).
	WithCode(errors.CodeUnauthorized)

// ErrProfileFetchFailed is returned when fetching the provider profile fails.
var ErrProfileFetchFailed = errors.New("failed to fetch provider profile", errors.CategoryAuth).
	WithTextCode(TextCodeProfileFailed).
	WithCode(errors.CodeUnauthorized)

// ErrMissingSecret is returned when the engine is built without a signing secret.
var ErrMissingSecret = errors.New("auth secret is required", errors.CategoryValidation).
	WithTextCode(TextCodeMissingSecret).
	WithCode(errors.CodeBadRequest)

// ErrUntrustedHost is returned when absolute URLs would depend on the request
// host but trust-host is disabled and no origin is configured.
var ErrUntrustedHost = errors.New("host not trusted and no origin configured", errors.CategoryAuth).
	WithTextCode(TextCodeUntrustedHost).
	WithCode(errors.CodeForbidden)

// IsMissingSecret reports whether err is the missing-secret configuration
// error, matched by text code so wrapped instances still qualify.
func IsMissingSecret(err error) bool {
	var rich *errors.Error
	if errors.As(err, &rich) {
		return rich.TextCode == TextCodeMissingSecret
	}
	return false
}
