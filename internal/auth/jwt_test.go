package auth

import (
	"testing"
	"time"

	"dutyfree/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	v := NewVerifier("secret", "dutyfree")
	tok, err := v.Issue(domain.Identity{UserID: "u1", Email: "a@b.c"}, time.Hour)
	require.NoError(t, err)

	id, err := v.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, domain.Identity{UserID: "u1", Email: "a@b.c"}, id)
}

func TestVerifyExpired(t *testing.T) {
	v := NewVerifier("secret", "dutyfree")
	tok, err := v.Issue(domain.Identity{UserID: "u1"}, -time.Minute)
	require.NoError(t, err)

	_, err = v.Verify(tok)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifyWrongSecret(t *testing.T) {
	tok, err := NewVerifier("other", "x").Issue(domain.Identity{UserID: "u1"}, time.Hour)
	require.NoError(t, err)

	_, err = NewVerifier("secret", "x").Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsNoneAlg(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "u1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewVerifier("secret", "x").Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyDisabled(t *testing.T) {
	_, err := NewVerifier("", "x").Verify("anything")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
