package engine

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// DefaultSessionTTL is used when the adapter does not configure one.
const DefaultSessionTTL = 24 * time.Hour

// Issuer is stamped on session tokens minted by the engine.
const Issuer = "go-auth-bridge"

// Profile is the normalized identity a provider reported for the user.
type Profile struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Image string `json:"image,omitempty"`
}

// Session is what callers see: who is signed in and until when. The adapter
// layer treats it as opaque, callers only check for presence.
type Session struct {
	User     Profile   `json:"user"`
	Provider string    `json:"provider,omitempty"`
	Expires  time.Time `json:"expires"`
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Picture  string `json:"picture,omitempty"`
	Provider string `json:"provider,omitempty"`
}

// SignSession mints the session cookie value for a freshly authenticated user.
func SignSession(profile *Profile, provider string, secret []byte, ttl time.Duration) (string, error) {
	if profile == nil {
		return "", errors.New("profile must not be nil", errors.CategoryInternal)
	}
	if ttl == 0 {
		ttl = DefaultSessionTTL
	}

	now := time.Now()
	claims := &sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   profile.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Name:     profile.Name,
		Email:    profile.Email,
		Picture:  profile.Image,
		Provider: provider,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign session token")
	}

	return signed, nil
}

// ParseSession validates a session cookie value and rebuilds the session.
// Expired, malformed, and badly signed tokens all fail the same way.
func ParseSession(tokenString string, secret []byte) (*Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithIssuer(Issuer), jwt.WithExpirationRequired())

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return nil, errors.New("unable to decode session claims", errors.CategoryAuth)
	}

	session := &Session{
		User: Profile{
			ID:    claims.Subject,
			Name:  claims.Name,
			Email: claims.Email,
			Image: claims.Picture,
		},
		Provider: claims.Provider,
	}
	if claims.ExpiresAt != nil {
		session.Expires = claims.ExpiresAt.Time
	}

	return session, nil
}
