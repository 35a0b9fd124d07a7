package helpers

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionToken(t *testing.T) {
	secret := []byte("session-secret")
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	token, err := SignSessionToken(secret, "user-1", "a@b.co", "staff", now, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateSessionToken(secret, token, now.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "staff", claims.Role)

	_, err = ValidateSessionToken(secret, token, now.Add(2*time.Hour))
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = ValidateSessionToken([]byte("other"), token, now)
	assert.Error(t, err)

	_, err = ValidateSessionToken(secret, "", now)
	assert.Error(t, err)

	anonymous, err := SignSessionToken(secret, "", "a@b.co", "user", now, time.Hour)
	require.NoError(t, err)
	_, err = ValidateSessionToken(secret, anonymous, now)
	assert.ErrorIs(t, err, ErrInvalidSessionToken)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer  abc "))
	assert.Empty(t, BearerToken("Basic abc"))
	assert.Empty(t, BearerToken("Bearer"))
	assert.Empty(t, BearerToken(""))
}

func TestTrimID(t *testing.T) {
	assert.Equal(t, "65f0", TrimID(` "65f0" `))
	assert.Equal(t, "65f0", TrimID("'65f0'"))
}

func TestEnhancedClaimsRoles(t *testing.T) {
	c := &EnhancedClaims{UserID: "u1", Role: "admin"}
	assert.True(t, c.IsAdmin())
	assert.False(t, c.IsStaff())
	assert.True(t, c.IsOwner("u1"))
	assert.Equal(t, "guest", (&EnhancedClaims{}).GetSafeRole())
}

func newTestSocialVerifier(t *testing.T) (*SocialVerifier, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	jwks := keyfunc.NewGiven(map[string]keyfunc.GivenKey{
		"idp-key": keyfunc.NewGivenRSA(&key.PublicKey, keyfunc.GivenKeyOptions{Algorithm: jwt.SigningMethodRS256.Alg()}),
	})
	return NewSocialVerifierFromJWKS(jwks, "cinepass-web", "https://idp.example.com"), key
}

func signSocialToken(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = "idp-key"
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestSocialVerifier_Validate(t *testing.T) {
	sv, key := newTestSocialVerifier(t)
	base := func() jwt.MapClaims {
		return jwt.MapClaims{
			"sub":            "idp-user-1",
			"iss":            "https://idp.example.com",
			"aud":            "cinepass-web",
			"exp":            time.Now().Add(time.Hour).Unix(),
			"email":          "guest@example.com",
			"email_verified": true,
		}
	}

	claims, err := sv.Validate(signSocialToken(t, key, base()))
	require.NoError(t, err)
	assert.Equal(t, "guest@example.com", claims.Email)

	stringVerified := base()
	stringVerified["email_verified"] = "true"
	_, err = sv.Validate(signSocialToken(t, key, stringVerified))
	require.NoError(t, err)

	t.Run("other audience", func(t *testing.T) {
		c := base()
		c["aud"] = "someone-elses-app"
		_, err := sv.Validate(signSocialToken(t, key, c))
		assert.ErrorIs(t, err, jwt.ErrTokenInvalidAudience)
	})

	t.Run("missing audience", func(t *testing.T) {
		c := base()
		delete(c, "aud")
		_, err := sv.Validate(signSocialToken(t, key, c))
		assert.ErrorIs(t, err, jwt.ErrTokenRequiredClaimMissing)
	})

	t.Run("other issuer", func(t *testing.T) {
		c := base()
		c["iss"] = "https://evil.example.com"
		_, err := sv.Validate(signSocialToken(t, key, c))
		assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
	})

	t.Run("unverified email", func(t *testing.T) {
		c := base()
		c["email_verified"] = false
		_, err := sv.Validate(signSocialToken(t, key, c))
		assert.ErrorIs(t, err, ErrEmailNotVerified)

		delete(c, "email_verified")
		_, err = sv.Validate(signSocialToken(t, key, c))
		assert.ErrorIs(t, err, ErrEmailNotVerified)
	})
}
