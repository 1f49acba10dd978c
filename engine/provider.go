package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"golang.org/x/oauth2"
)

// ProviderTypeOAuth identifies plain OAuth2 providers.
const ProviderTypeOAuth = "oauth"

// ProviderTypeOIDC identifies OpenID Connect providers.
const ProviderTypeOIDC = "oidc"

// ProviderConfig describes one upstream identity provider. The adapter layer
// passes these through untouched; the engine materializes them into oauth2
// client configurations.
type ProviderConfig struct {
	ID           string   `json:"id" mapstructure:"id"`
	Name         string   `json:"name" mapstructure:"name"`
	Type         string   `json:"type" mapstructure:"type"`
	ClientID     string   `json:"client_id" mapstructure:"client_id"`
	ClientSecret string   `json:"client_secret" mapstructure:"client_secret"`
	AuthURL      string   `json:"auth_url" mapstructure:"auth_url"`
	TokenURL     string   `json:"token_url" mapstructure:"token_url"`
	UserInfoURL  string   `json:"user_info_url" mapstructure:"user_info_url"`
	Scopes       []string `json:"scopes" mapstructure:"scopes"`
}

// Provider wraps a ProviderConfig with a ready oauth2 client configuration.
type Provider struct {
	config     ProviderConfig
	oauth      *oauth2.Config
	httpClient *http.Client
}

func newProvider(pc ProviderConfig, callbackURL string, client *http.Client) (*Provider, error) {
	if pc.ID == "" {
		return nil, errors.New("provider id is required", errors.CategoryValidation)
	}
	if pc.Name == "" {
		pc.Name = strings.ToUpper(pc.ID[:1]) + pc.ID[1:]
	}
	if pc.Type == "" {
		pc.Type = ProviderTypeOAuth
	}

	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &Provider{
		config: pc,
		oauth: &oauth2.Config{
			ClientID:     pc.ClientID,
			ClientSecret: pc.ClientSecret,
			RedirectURL:  callbackURL,
			Scopes:       pc.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  pc.AuthURL,
				TokenURL: pc.TokenURL,
			},
		},
		httpClient: client,
	}, nil
}

// ID returns the provider identifier.
func (p *Provider) ID() string {
	return p.config.ID
}

// AuthCodeURL builds the provider authorization redirect with PKCE.
func (p *Provider) AuthCodeURL(state, verifier string) string {
	return p.oauth.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
}

// Exchange trades an authorization code for a provider token.
func (p *Provider) Exchange(ctx context.Context, code, verifier string) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	token, err := p.oauth.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, errors.Wrap(err, ErrTokenExchangeFailed.Category, ErrTokenExchangeFailed.Message).
			WithTextCode(ErrTokenExchangeFailed.TextCode).
			WithMetadata(map[string]any{"provider": p.config.ID})
	}

	return token, nil
}

// Profile fetches and normalizes the provider user profile.
func (p *Provider) Profile(ctx context.Context, token *oauth2.Token) (*Profile, error) {
	if p.config.UserInfoURL == "" {
		return nil, errors.New("provider has no user info endpoint", errors.CategoryValidation).
			WithMetadata(map[string]any{"provider": p.config.ID})
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	client := p.oauth.Client(ctx, token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.UserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, wrapProfileError(p.config.ID, err, 0)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapProfileError(p.config.ID, err, resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, wrapProfileError(p.config.ID, fmt.Errorf("unexpected status %d", resp.StatusCode), resp.StatusCode)
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, wrapProfileError(p.config.ID, err, resp.StatusCode)
	}

	return profileFromClaims(raw), nil
}

func wrapProfileError(provider string, err error, status int) error {
	return errors.Wrap(err, ErrProfileFetchFailed.Category, ErrProfileFetchFailed.Message).
		WithTextCode(ErrProfileFetchFailed.TextCode).
		WithMetadata(map[string]any{
			"provider": provider,
			"status":   status,
		})
}

// profileFromClaims maps the loose userinfo payloads providers return onto a
// normalized profile. Key sets differ per provider (OIDC uses sub/picture,
// GitHub uses id/login/avatar_url) so we probe the common spellings.
func profileFromClaims(raw map[string]any) *Profile {
	profile := &Profile{}

	profile.ID = firstString(raw, "sub", "id", "user_id")
	profile.Name = firstString(raw, "name", "login", "username")
	profile.Email = firstString(raw, "email")
	profile.Image = firstString(raw, "picture", "avatar_url", "image")

	return profile
}

func firstString(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		value, ok := raw[key]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			// numeric ids (e.g. GitHub) come back as JSON numbers
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}
