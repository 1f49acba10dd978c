package engine

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DefaultStateTTL bounds how long an authorization redirect stays redeemable.
const DefaultStateTTL = 10 * time.Minute

// OAuthState is the payload carried through the provider round trip in the
// state parameter. It is HMAC signed, never stored server side.
type OAuthState struct {
	Nonce       string `json:"n"`
	Provider    string `json:"p"`
	Verifier    string `json:"v,omitempty"`
	RedirectURL string `json:"r,omitempty"`
	IssuedAt    int64  `json:"iat"`
	ExpiresAt   int64  `json:"exp"`
}

// StateCodec signs and verifies OAuth state tokens.
type StateCodec struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewStateCodec creates a codec keyed off the engine secret.
func NewStateCodec(key []byte, ttl time.Duration) *StateCodec {
	if ttl == 0 {
		ttl = DefaultStateTTL
	}
	return &StateCodec{
		key: key,
		ttl: ttl,
		now: time.Now,
	}
}

// Encode signs the state and returns a URL-safe token.
func (sc *StateCodec) Encode(state *OAuthState) (string, error) {
	if state == nil {
		return "", ErrInvalidState
	}

	now := sc.now()
	if state.IssuedAt == 0 {
		state.IssuedAt = now.Unix()
	}
	if state.ExpiresAt == 0 {
		state.ExpiresAt = now.Add(sc.ttl).Unix()
	}
	if state.Nonce == "" {
		state.Nonce = uuid.NewString()
	}

	payload, err := json.Marshal(state)
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha256.New, sc.key)
	mac.Write(payload)
	signature := mac.Sum(nil)

	return base64.RawURLEncoding.EncodeToString(append(signature, payload...)), nil
}

// Decode verifies the signature and expiry and returns the state.
func (sc *StateCodec) Decode(token string) (*OAuthState, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrInvalidState
	}

	if len(data) < sha256.Size {
		return nil, ErrInvalidState
	}

	signature, payload := data[:sha256.Size], data[sha256.Size:]

	mac := hmac.New(sha256.New, sc.key)
	mac.Write(payload)
	if !hmac.Equal(signature, mac.Sum(nil)) {
		return nil, ErrInvalidState
	}

	var state OAuthState
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, ErrInvalidState
	}

	if sc.now().Unix() > state.ExpiresAt {
		return nil, ErrStateExpired
	}

	return &state, nil
}
