package token

import (
	"crypto/rsa"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SchemePrefix is the Authorization scheme label carried by issued tokens.
const SchemePrefix = "Bearer "

// DefaultSessionLength is the reference session policy: tokens expire exactly
// two weeks after issue.
const DefaultSessionLength = 14 * 24 * time.Hour

// Codec signs and verifies identity tokens with a process-wide RSA keypair.
// It is immutable after construction and safe for concurrent use.
type Codec struct {
	private       *rsa.PrivateKey
	public        *rsa.PublicKey
	sessionLength time.Duration
}

// NewCodec builds a Codec from PEM-encoded key material.
func NewCodec(privatePEM, publicPEM []byte, sessionLength time.Duration) (*Codec, error) {
	if sessionLength <= 0 {
		return nil, fmt.Errorf("%w: non-positive session length", ErrConfig)
	}

	private, err := jwt.ParseRSAPrivateKeyFromPEM(privatePEM)
	if err != nil {
		return nil, fmt.Errorf("%w: private key: %v", ErrConfig, err)
	}
	public, err := jwt.ParseRSAPublicKeyFromPEM(publicPEM)
	if err != nil {
		return nil, fmt.Errorf("%w: public key: %v", ErrConfig, err)
	}

	return &Codec{
		private:       private,
		public:        public,
		sessionLength: sessionLength,
	}, nil
}

// LoadCodec reads PEM key files from disk and builds a Codec.
// Intended for process startup; a failure here is fatal.
func LoadCodec(privatePath, publicPath string, sessionLength time.Duration) (*Codec, error) {
	privatePEM, err := os.ReadFile(privatePath)
	if err != nil {
		return nil, fmt.Errorf("%w: read private key: %v", ErrConfig, err)
	}
	publicPEM, err := os.ReadFile(publicPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read public key: %v", ErrConfig, err)
	}
	return NewCodec(privatePEM, publicPEM, sessionLength)
}

// SessionLength returns the fixed token lifetime.
func (c *Codec) SessionLength() time.Duration {
	return c.sessionLength
}

// Issue signs a token for subject with iat=now and exp=now+session length.
// The returned string includes the "Bearer " prefix and is suitable both as
// an Authorization header value and as the token field of a user response.
func (c *Codec) Issue(subject string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.sessionLength)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(c.private)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return SchemePrefix + signed, nil
}

// Decode strips the scheme prefix, verifies signature and expiry against now,
// and returns the subject. Any failure is ErrUnauthorized.
func (c *Codec) Decode(headerValue string, now time.Time) (string, error) {
	raw, ok := strings.CutPrefix(headerValue, SchemePrefix)
	if !ok {
		return "", ErrUnauthorized
	}

	claims := jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (any, error) { return c.public, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil || claims.Subject == "" {
		return "", ErrUnauthorized
	}

	return claims.Subject, nil
}
