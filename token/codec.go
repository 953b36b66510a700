package token

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-booking-server/auth"
	apperrors "github.com/jrsteele09/go-booking-server/internal/errors"
	"github.com/pkg/errors"
)

// DefaultIssuer is used when the codec is built without an issuer.
const DefaultIssuer = "go-booking-server"

// Codec turns session claims into signed cookie values and back.
type Codec struct {
	signer  Signer
	issuer  string
	maxAge  time.Duration
	nowFunc func() time.Time
}

type CodecOption func(*Codec)

// WithNowTime overrides the clock used for iat/exp.
func WithNowTime(nowFunc func() time.Time) CodecOption {
	return func(c *Codec) {
		c.nowFunc = nowFunc
	}
}

func WithIssuer(issuer string) CodecOption {
	return func(c *Codec) {
		c.issuer = issuer
	}
}

func NewCodec(signer Signer, maxAge time.Duration, options ...CodecOption) (*Codec, error) {
	if signer == nil {
		return nil, errors.New("[NewCodec] signer is required")
	}
	if maxAge <= 0 {
		return nil, errors.New("[NewCodec] max age must be positive")
	}
	c := &Codec{
		signer:  signer,
		issuer:  DefaultIssuer,
		maxAge:  maxAge,
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// MaxAge is the lifetime of every encoded session.
func (c *Codec) MaxAge() time.Duration {
	return c.maxAge
}

// Encode signs claims with a fresh iat/exp window. The returned time is the
// expiry, for the cookie.
func (c *Codec) Encode(claims auth.Claims) (string, time.Time, error) {
	now := c.nowFunc().UTC().Truncate(time.Second)
	expires := now.Add(c.maxAge)

	claims.Issuer = c.issuer
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.NotBefore = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(expires)
	if claims.Subject == "" {
		claims.Subject = claims.ID
	}
	claims.RegisteredClaims.ID = uuid.New().String()

	signed, err := c.signer.Sign(claims)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "[Encode]")
	}
	return signed, expires, nil
}

// Decode verifies raw and returns its claims. Any failure, expiry or a claim
// outside auth.Claims included, is ErrInvalidToken.
func (c *Codec) Decode(raw string) (*auth.Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "[Decode] empty token")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{c.signer.GetSigningMethod().Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(c.issuer),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.nowFunc),
	)

	claims := &auth.Claims{}
	token, err := parser.ParseWithClaims(raw, claims, c.signer.GetVerificationKey)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "[Decode] %s", err.Error())
	}
	if !token.Valid {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "[Decode] token not valid")
	}
	if claims.ID == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "[Decode] token has no user id")
	}
	if err := rejectUnknownClaims(parser, raw); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "[Decode] %s", err.Error())
	}
	return claims, nil
}

// rejectUnknownClaims re-reads the verified payload and fails on any key that
// auth.Claims does not declare.
func rejectUnknownClaims(parser *jwt.Parser, raw string) error {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return errors.New("malformed token")
	}
	payload, err := parser.DecodeSegment(parts[1])
	if err != nil {
		return errors.Wrap(err, "payload")
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&auth.Claims{}); err != nil {
		return errors.Wrap(err, "payload")
	}
	return nil
}
