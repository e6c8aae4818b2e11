package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuer_RoundTrip(t *testing.T) {
	iss := NewIssuer("s3cret", time.Hour, "estampa-fina")
	id := uuid.New()

	token, err := iss.GenerateToken(id, "ana@example.com", "Ana", "manager", "v1")
	require.NoError(t, err)

	claims, err := iss.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "manager", claims.Role)
	assert.Equal(t, "v1", claims.TokenVersion)
	assert.Equal(t, "estampa-fina", claims.Issuer)
}

func TestIssuer_RejectsForeignSignature(t *testing.T) {
	token, err := NewIssuer("one", time.Hour, "x").GenerateToken(uuid.New(), "", "", "", "")
	require.NoError(t, err)

	_, err = NewIssuer("two", time.Hour, "x").ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_RejectsExpired(t *testing.T) {
	iss := &Issuer{secret: []byte("k"), expiry: -time.Minute, issuer: "x"}
	token, err := iss.GenerateToken(uuid.New(), "", "", "", "")
	require.NoError(t, err)

	_, err = iss.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_MissingToken(t *testing.T) {
	_, err := NewIssuer("k", 0, "x").ValidateToken("")
	assert.ErrorIs(t, err, ErrMissingToken)
}
