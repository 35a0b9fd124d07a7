package helpers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidSessionToken = errors.New("invalid or expired token")

func SignSessionToken(secret []byte, userID, email, role string, now time.Time, ttl time.Duration) (string, error) {
	claims := SessionClaims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func ValidateSessionToken(secret []byte, tokenStr string, now time.Time) (*SessionClaims, error) {
	if tokenStr == "" {
		return nil, errors.New("missing token")
	}
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidSessionToken
	}
	return claims, nil
}

var ErrEmailNotVerified = errors.New("identity provider has not verified the email")

// SocialVerifier validates identity-provider tokens against a remote JWKS.
// Tokens must be minted for our audience; the issuer is checked when set.
type SocialVerifier struct {
	jwks     *keyfunc.JWKS
	audience string
	issuer   string
}

func NewSocialVerifier(ctx context.Context, jwksURL, audience, issuer string) (*SocialVerifier, error) {
	if audience == "" {
		return nil, errors.New("social audience is required")
	}
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load JWKS from %s: %w", jwksURL, err)
	}
	return NewSocialVerifierFromJWKS(jwks, audience, issuer), nil
}

func NewSocialVerifierFromJWKS(jwks *keyfunc.JWKS, audience, issuer string) *SocialVerifier {
	return &SocialVerifier{jwks: jwks, audience: audience, issuer: issuer}
}

func (sv *SocialVerifier) Validate(tokenStr string) (*SocialClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithExpirationRequired(),
		jwt.WithAudience(sv.audience),
	}
	if sv.issuer != "" {
		opts = append(opts, jwt.WithIssuer(sv.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenStr, &SocialClaims{}, sv.jwks.Keyfunc, opts...)
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	claims, ok := token.Claims.(*SocialClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidSessionToken
	}
	if claims.Email == "" {
		return nil, errors.New("token has no email claim")
	}
	if !claims.EmailVerified {
		return nil, ErrEmailNotVerified
	}
	return claims, nil
}

func (sv *SocialVerifier) Close() {
	if sv != nil && sv.jwks != nil {
		sv.jwks.EndBackground()
	}
}

func StringTrim(s string) string {
	return strings.TrimSpace(s)
}

// TrimID normalizes ids coming from paths: clients sometimes pass quoted JSON strings.
func TrimID(s string) string {
	return strings.Trim(strings.TrimSpace(s), "\"'")
}

// BearerToken extracts the token from an "Authorization: Bearer ..." header value.
func BearerToken(header string) string {
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
