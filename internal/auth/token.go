package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every verification failure. Callers never learn
// whether a token was malformed, expired, or forged; the distinction is only
// logged server-side.
var ErrInvalidToken = errors.New("invalid or expired token")

// Subject identifies what a token was issued for: a user row or a company row.
type Subject struct {
	ID   uint64
	Kind PrincipalKind
}

// Claims is the wire shape of the access token payload. Kind is omitted for
// user subjects so tokens issued by earlier revisions keep verifying.
type Claims struct {
	Kind string `json:"kind,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies bearer tokens with a shared HS256 secret.
// It is stateless; there is no revocation.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenCodec(secret []byte, ttl time.Duration) *TokenCodec {
	return &TokenCodec{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a token for the given subject with the configured TTL.
func (tc *TokenCodec) Issue(subject Subject) (string, error) {
	now := tc.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(subject.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tc.ttl)),
		},
	}
	if subject.Kind == PrincipalCompany {
		claims.Kind = string(PrincipalCompany)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tc.secret)
}

// Verify parses and validates a token string and returns its subject.
// Verification is all-or-nothing: any failure yields ErrInvalidToken.
func (tc *TokenCodec) Verify(tokenString string) (Subject, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return tc.secret, nil
	}, jwt.WithTimeFunc(tc.now))
	if err != nil || !parsed.Valid {
		return Subject{}, ErrInvalidToken
	}

	if claims.Subject == "" {
		return Subject{}, ErrInvalidToken
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return Subject{}, ErrInvalidToken
	}

	kind := PrincipalUser
	switch claims.Kind {
	case "", string(PrincipalUser):
		// user is the default for tokens that predate the kind claim
	case string(PrincipalCompany):
		kind = PrincipalCompany
	default:
		return Subject{}, ErrInvalidToken
	}

	return Subject{ID: id, Kind: kind}, nil
}
