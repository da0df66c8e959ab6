package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueVerify(t *testing.T) {
	s, err := NewSigner("secret", time.Hour)
	require.NoError(t, err)

	tok, err := s.Issue("user-1", "Ada")
	require.NoError(t, err)

	claims, err := s.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "Ada", claims.Name)
	assert.NotNil(t, claims.ExpiresAt)
}

func TestVerifyRejects(t *testing.T) {
	s, _ := NewSigner("secret", time.Minute)
	other, _ := NewSigner("other", time.Minute)
	tok, _ := other.Issue("user-1", "")

	_, err := s.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = s.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// expired
	s.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, _ := s.Issue("user-1", "")
	s.now = time.Now
	_, err = s.Verify(old)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))

	// wrong algorithm
	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", Issuer: issuer},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	_, err = s.Verify(none)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewSignerRequiresSecret(t *testing.T) {
	_, err := NewSigner("", 0)
	assert.Error(t, err)
}

func TestIssueWithoutExpiry(t *testing.T) {
	s, _ := NewSigner("secret", 0)
	tok, err := s.Issue("u", "")
	require.NoError(t, err)
	claims, err := s.Verify(tok)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s, _ := NewSigner("secret", time.Hour)
	tok, _ := s.Issue("user-7", "")

	r := gin.New()
	who := func(c *gin.Context) { c.String(http.StatusOK, UserID(c)) }
	r.GET("/required", s.Required(), who)
	r.GET("/optional", s.Optional(), who)

	tests := []struct {
		path   string
		header string
		code   int
		body   string
	}{
		{"/required", "Bearer " + tok, 200, "user-7"},
		{"/required", "", 401, ""},
		{"/required", "Bearer garbage", 401, ""},
		{"/required", tok, 401, ""},
		{"/optional", "Bearer " + tok, 200, "user-7"},
		{"/optional", "", 200, ""},
		{"/optional", "Bearer garbage", 200, ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, tt.code, rec.Code, "%s %q", tt.path, tt.header)
		if tt.code == 200 {
			assert.Equal(t, tt.body, rec.Body.String(), "%s %q", tt.path, tt.header)
		}
	}
}
