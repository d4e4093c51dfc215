package jwt_test

import (
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Paw-Connect/user-service/internal/jwt"
)

func TestTokenIssuer_IssueAndValidate(t *testing.T) {
	issuer := jwt.NewTokenIssuer("test-secret", time.Hour)
	userID := uuid.New()

	token, err := issuer.Issue(userID, []string{"volunteer", "admin"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := issuer.Validate(token)
	require.NoError(t, err)
	require.Equal(t, userID.String(), claims["sub"])

	roles, ok := claims["roles"].([]interface{})
	require.True(t, ok)
	require.Len(t, roles, 2)
	require.Equal(t, "volunteer", roles[0])

	exp, ok := claims["exp"].(float64)
	require.True(t, ok)
	require.Greater(t, int64(exp), time.Now().Unix())
}

func TestTokenIssuer_ExpiredTokenRejected(t *testing.T) {
	issuer := jwt.NewTokenIssuer("test-secret", -time.Minute)

	token, err := issuer.Issue(uuid.New(), []string{"volunteer"})
	require.NoError(t, err)

	_, err = issuer.Validate(token)
	require.ErrorIs(t, err, jwtv5.ErrTokenExpired)
}

func TestTokenIssuer_TamperedTokenRejected(t *testing.T) {
	issuer := jwt.NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Issue(uuid.New(), []string{"volunteer"})
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = issuer.Validate(tampered)
	require.Error(t, err)
}

func TestTokenIssuer_WrongSecretRejected(t *testing.T) {
	issuer := jwt.NewTokenIssuer("test-secret", time.Hour)
	other := jwt.NewTokenIssuer("other-secret", time.Hour)

	token, err := issuer.Issue(uuid.New(), []string{"volunteer"})
	require.NoError(t, err)

	_, err = other.Validate(token)
	require.Error(t, err)
}
