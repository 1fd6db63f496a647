package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEd25519RoundTrip(t *testing.T) {
	require.NoError(t, Init(time.Hour))

	token, err := CreateJWT("celestia1alice")
	require.NoError(t, err)

	wallet, err := AuthenticateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "celestia1alice", wallet)

	_, err = AuthenticateJWT(token + "x")
	assert.Error(t, err)
}

func TestSharedSecretAcceptsExternalTokens(t *testing.T) {
	require.NoError(t, InitWithSecret("s3cret", 0))

	// Shape of tokens minted by the wallet login service.
	external := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"walletAddress": "celestia1bob",
		"exp":           time.Now().Add(time.Hour).Unix(),
	})
	signed, err := external.SignedString([]byte("s3cret"))
	require.NoError(t, err)

	wallet, err := AuthenticateJWT(signed)
	require.NoError(t, err)
	assert.Equal(t, "celestia1bob", wallet)

	forged, err := external.SignedString([]byte("other"))
	require.NoError(t, err)
	_, err = AuthenticateJWT(forged)
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	require.NoError(t, InitWithSecret("s3cret", time.Hour))
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "celestia1carol",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	signed, err := expired.SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = AuthenticateJWT(signed)
	assert.Error(t, err)
}

func TestAlgorithmMismatchRejected(t *testing.T) {
	require.NoError(t, InitWithSecret("s3cret", time.Hour))
	token, err := CreateJWT("celestia1dave")
	require.NoError(t, err)

	require.NoError(t, Init(time.Hour))
	_, err = AuthenticateJWT(token)
	assert.Error(t, err)
}
