// internal/token/token.go
//
// Stateless signed bearer tokens.
//
// Context
// -------
// A token is base64url(JSON claims) + "." + base64url(HMAC-SHA256 over
// the encoded claims).  Possession of a validly-signed, unexpired token
// is proof of authentication; nothing is persisted server-side and no
// revocation list exists.  Rotating the signing secret invalidates the
// entire fleet's tokens at once.
//
// Central-admin and site-admin tokens share one signing secret but are
// structurally tagged by the Kind claim, so a site token can never be
// accepted on a central-only route and vice versa.
//
// Verify distinguishes two failures: ErrTokenInvalid (malformed or bad
// signature) and ErrTokenExpired (structurally sound, past exp).  The
// caller-visible message stays generic either way; the distinction is
// for logs and for clients that want to trigger a re-login flow.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Errors returned by Verify.
var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

// Kind discriminates the two principal populations.
type Kind string

const (
	KindCentral Kind = "central"
	KindSite    Kind = "site"
)

// Claims is the decoded token payload.  TenantID and TenantSlug are set
// only for site-admin tokens; Role only for central-admin tokens.
type Claims struct {
	Kind       Kind   `json:"kind"`
	Subject    int64  `json:"sub"`
	Email      string `json:"email,omitempty"`
	Role       string `json:"role,omitempty"`
	TenantID   int64  `json:"tenantId,omitempty"`
	TenantSlug string `json:"tenantSlug,omitempty"`
	IssuedAt   int64  `json:"iat"`
	ExpiresAt  int64  `json:"exp"`
}

// Issuer mints and verifies tokens with one HMAC secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

// NewIssuer builds an Issuer.  ttl applies to every minted token.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

// TTL returns the configured token lifetime (used for cookie max-age).
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Mint signs claims and returns the opaque token string.  IssuedAt and
// ExpiresAt are stamped here; callers only fill identity fields.
func (i *Issuer) Mint(c Claims) (string, error) {
	now := time.Now()
	c.IssuedAt = now.Unix()
	c.ExpiresAt = now.Add(i.ttl).Unix()

	payload, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	enc := base64.RawURLEncoding.EncodeToString(payload)
	return enc + "." + i.sign(enc), nil
}

// Verify checks signature and expiry, returning the decoded claims.
func (i *Issuer) Verify(raw string) (*Claims, error) {
	enc, sig, ok := strings.Cut(raw, ".")
	if !ok || enc == "" || sig == "" {
		return nil, ErrTokenInvalid
	}

	want := i.sign(enc)
	if !hmac.Equal([]byte(sig), []byte(want)) {
		return nil, ErrTokenInvalid
	}

	payload, err := base64.RawURLEncoding.DecodeString(enc)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	var c Claims
	if err := json.Unmarshal(payload, &c); err != nil {
		return nil, ErrTokenInvalid
	}
	if c.Kind != KindCentral && c.Kind != KindSite {
		return nil, ErrTokenInvalid
	}

	if time.Now().Unix() >= c.ExpiresAt {
		return nil, ErrTokenExpired
	}
	return &c, nil
}

// sign computes the base64url HMAC-SHA256 of the encoded payload.
func (i *Issuer) sign(enc string) string {
	mac := hmac.New(sha256.New, i.secret)
	mac.Write([]byte(enc))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
