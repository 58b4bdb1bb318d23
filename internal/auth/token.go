// Package auth provides token issuance/verification, password hashing, and
// the per-request authorization gate.
//
// Tokens are HS256 JWTs signed with a shared secret. Each login issues a
// pair from one claims object: a short-lived access token and a 7-day
// refresh token delivered via cookie. The claims embed a snapshot of the
// user's profile taken at issuance time; the snapshot goes stale until the
// next login/refresh cycle, which is why "give me my current profile" always
// goes back to the store instead of trusting the token.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tuanvq/soundrise/internal/apperror"
	"github.com/tuanvq/soundrise/internal/model"
)

// RefreshTokenTTL is the fixed lifetime of refresh tokens. There is no
// server-side revocation list: a rotated-away refresh token stays valid
// until this expiry. Accepted limitation, not a bug.
const RefreshTokenTTL = 7 * 24 * time.Hour

// Claims is the signed token payload: the registered claims plus the profile
// snapshot embedded at issuance time.
type Claims struct {
	jwt.RegisteredClaims
	Email    string         `json:"email"`
	Address  string         `json:"address"`
	IsVerify bool           `json:"isVerify"`
	Name     string         `json:"name"`
	Type     model.Provider `json:"type"`
	Role     model.Role     `json:"role"`
	Gender   string         `json:"gender"`
	Age      int            `json:"age"`
}

// UserID parses the numeric user id out of the subject claim.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("auth: token subject %q is not a user id: %w", c.Subject, err)
	}
	return id, nil
}

// TokenPair is the result of one issuance: both tokens are signed from the
// same claims, differing only in expiry.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenService signs and verifies JWTs with a shared HMAC secret.
type TokenService struct {
	secret    []byte
	issuer    string
	accessTTL time.Duration
}

// NewTokenService creates a TokenService. A misconfigured secret is a
// startup-class error and is rejected here, never per-request.
// The secret should be at least 32 bytes of random data in production.
func NewTokenService(secret, issuer string, accessTTL time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if issuer == "" {
		return nil, errors.New("auth: JWT issuer must not be empty")
	}
	if accessTTL <= 0 {
		return nil, fmt.Errorf("auth: access token TTL must be positive, got %s", accessTTL)
	}
	return &TokenService{
		secret:    []byte(secret),
		issuer:    issuer,
		accessTTL: accessTTL,
	}, nil
}

// IssuePair builds one claims object from the user and signs it twice.
func (s *TokenService) IssuePair(u *model.User) (*TokenPair, error) {
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  strconv.FormatInt(u.ID, 10),
			Issuer:   s.issuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
		Email:    u.Email,
		Address:  u.Address,
		IsVerify: u.IsVerify,
		Name:     u.Name,
		Type:     u.Type,
		Role:     u.Role,
		Gender:   u.Gender,
		Age:      u.Age,
	}

	access, err := s.sign(claims, now.Add(s.accessTTL))
	if err != nil {
		return nil, fmt.Errorf("auth: signing access token: %w", err)
	}
	refresh, err := s.sign(claims, now.Add(RefreshTokenTTL))
	if err != nil {
		return nil, fmt.Errorf("auth: signing refresh token: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *TokenService) sign(c Claims, expiresAt time.Time) (string, error) {
	c.ExpiresAt = jwt.NewNumericDate(expiresAt)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return token.SignedString(s.secret)
}

// Verify parses and validates a token string and returns its claims.
//
// Pure function of the token and the secret, no I/O. Every failure mode
// (bad signature, malformed structure, expired, wrong issuer, missing
// subject) collapses into the same InvalidToken error so the wire boundary
// never reveals which check failed. Restricting to HS256 via
// jwt.WithValidMethods closes the algorithm-confusion hole.
func (s *TokenService) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, apperror.InvalidToken()
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, apperror.InvalidToken()
	}
	if _, err := claims.UserID(); err != nil {
		return nil, apperror.InvalidToken()
	}

	return claims, nil
}
