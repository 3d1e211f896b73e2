package jwt

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"

	"eduplatform/internal/pkg/errs"
)

const (
	// SessionLifetime is how long an issued session token stays valid.
	SessionLifetime = 7 * 24 * time.Hour

	// TokenIssuer identifies the issuer of the token.
	TokenIssuer = "eduplatform"
)

var errUnexpectedSigningMethod = errors.New("unexpected signing method")

// Validator turns a raw bearer token into verified claims.
type Validator interface {
	Validate(tokenString string) (*Payload, error)
}

// Issuer signs and validates session tokens with a single static HMAC secret.
// There is no key rotation and no revocation list.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer returns an Issuer using secret and the default session lifetime.
func NewIssuer(secret string) *Issuer {
	return &Issuer{
		secret: []byte(secret),
		ttl:    SessionLifetime,
		now:    time.Now,
	}
}

// WithClock returns a copy of the issuer that reads time from now.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	cp := *i
	cp.now = now
	return &cp
}

// Issue signs a token for the given identity. The returned payload is the
// exact claim set that was signed.
func (i *Issuer) Issue(userID int64, role, username, email string) (string, *Payload, error) {
	now := i.now()

	payload := &Payload{
		StandardClaims: jwt.StandardClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(i.ttl).Unix(),
			Issuer:    TokenIssuer,
		},
		UserID:   userID,
		Role:     role,
		Username: username,
		Email:    email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", nil, err
	}

	return signed, payload, nil
}

// Validate verifies the signature and expiry of tokenString.
// It fails with ErrMissingToken for an empty string, ErrInvalidToken for a
// malformed or badly signed token, and ErrExpiredToken once now > exp.
// A token is accepted up to and including its expiry second.
func (i *Issuer) Validate(tokenString string) (*Payload, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, errs.NewError(errs.ErrMissingToken)
	}

	claims := &Payload{}
	parser := &jwt.Parser{
		ValidMethods:         []string{jwt.SigningMethodHS256.Alg()},
		SkipClaimsValidation: true,
	}

	_, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errUnexpectedSigningMethod
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, errs.NewError(errs.ErrInvalidToken)
	}

	if claims.ExpiresAt == 0 {
		return nil, errs.NewError(errs.ErrInvalidToken)
	}

	if i.now().Unix() > claims.ExpiresAt {
		return nil, errs.NewError(errs.ErrExpiredToken)
	}

	return claims, nil
}
