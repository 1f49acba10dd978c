package engine

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// DefaultCSRFTTL bounds how long an issued CSRF token stays valid.
const DefaultCSRFTTL = 24 * time.Hour

// CSRFFormField is the form field mutating requests carry the token in.
const CSRFFormField = "_token"

// CSRFHeaderName is the header alternative to the form field.
const CSRFHeaderName = "X-CSRF-Token"

// CSRFCodec issues and verifies stateless HMAC-signed CSRF tokens.
type CSRFCodec struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewCSRFCodec creates a codec keyed off the engine secret.
func NewCSRFCodec(key []byte, ttl time.Duration) *CSRFCodec {
	if ttl == 0 {
		ttl = DefaultCSRFTTL
	}
	return &CSRFCodec{
		key: key,
		ttl: ttl,
		now: time.Now,
	}
}

// Issue generates a fresh token bound to a random nonce and the current time.
func (cc *CSRFCodec) Issue() (string, error) {
	nonce := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	payload := fmt.Sprintf("%d:%s", cc.now().UTC().Unix(), hex.EncodeToString(nonce))

	mac := hmac.New(sha256.New, cc.key)
	mac.Write([]byte(payload))
	signature := mac.Sum(nil)

	token := payload + ":" + hex.EncodeToString(signature)
	return base64.RawURLEncoding.EncodeToString([]byte(token)), nil
}

// Verify checks signature and expiry. Any malformed token fails closed.
func (cc *CSRFCodec) Verify(token string) error {
	if token == "" {
		return ErrCSRFMismatch
	}

	decoded, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return ErrCSRFMismatch
	}

	parts := strings.Split(string(decoded), ":")
	if len(parts) != 3 {
		return ErrCSRFMismatch
	}

	timestamp, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return ErrCSRFMismatch
	}

	if _, err := hex.DecodeString(parts[1]); err != nil {
		return ErrCSRFMismatch
	}

	signature, err := hex.DecodeString(parts[2])
	if err != nil {
		return ErrCSRFMismatch
	}

	payload := parts[0] + ":" + parts[1]
	mac := hmac.New(sha256.New, cc.key)
	mac.Write([]byte(payload))
	if !hmac.Equal(signature, mac.Sum(nil)) {
		return ErrCSRFMismatch
	}

	if cc.ttl > 0 {
		expiresAt := time.Unix(timestamp, 0).Add(cc.ttl)
		if cc.now().UTC().After(expiresAt) {
			return ErrCSRFMismatch
		}
	}

	return nil
}
