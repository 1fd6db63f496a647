// internal/auth/session.go
package auth

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	signingMethod jwt.SigningMethod
	signingKey    interface{}
	verifyKey     interface{}

	// tokenTTL is how long issued tokens live; 0 means no exp claim.
	tokenTTL time.Duration
)

// ErrNotInitialized is returned when no key material has been configured.
var ErrNotInitialized = errors.New("auth keys not initialized")

// Init generates a fresh ed25519 key pair at runtime. Tokens only verify
// within this process.
func Init(ttl time.Duration) error {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return fmt.Errorf("failed to generate ed25519 key pair: %w", err)
	}
	signingMethod, signingKey, verifyKey = jwt.SigningMethodEdDSA, priv, pub
	tokenTTL = ttl
	return nil
}

// InitWithSecret uses a shared HMAC secret, so tokens issued by the wallet
// login service verify here.
func InitWithSecret(secret string, ttl time.Duration) error {
	if secret == "" {
		return errors.New("empty jwt secret")
	}
	key := []byte(secret)
	signingMethod, signingKey, verifyKey = jwt.SigningMethodHS256, key, key
	tokenTTL = ttl
	return nil
}

// InitFromPath reads raw ed25519 private/public keys from file.
func InitFromPath(privatePath, publicPath string, ttl time.Duration) error {
	privateKeyData, err := os.ReadFile(privatePath)
	if err != nil {
		return fmt.Errorf("failed to read private key file: %w", err)
	}
	publicKeyData, err := os.ReadFile(publicPath)
	if err != nil {
		return fmt.Errorf("failed to read public key file: %w", err)
	}
	signingMethod = jwt.SigningMethodEdDSA
	signingKey = ed25519.PrivateKey(privateKeyData)
	verifyKey = ed25519.PublicKey(publicKeyData)
	tokenTTL = ttl
	return nil
}

// CreateJWT signs a token whose subject is the wallet address.
func CreateJWT(wallet string) (string, error) {
	if signingMethod == nil {
		return "", ErrNotInitialized
	}
	claims := jwt.MapClaims{
		"sub":           wallet,
		"walletAddress": wallet,
	}
	if tokenTTL > 0 {
		claims["exp"] = time.Now().Add(tokenTTL).Unix()
	}
	return jwt.NewWithClaims(signingMethod, claims).SignedString(signingKey)
}

// AuthenticateJWT verifies a token and returns the wallet it was issued to.
func AuthenticateJWT(tokenString string) (string, error) {
	if signingMethod == nil {
		return "", ErrNotInitialized
	}
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != signingMethod.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return verifyKey, nil
	})
	if err != nil {
		return "", fmt.Errorf("jwt parse error: %w", err)
	}
	if !t.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid jwt claims")
	}
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub, nil
	}
	if wallet, ok := claims["walletAddress"].(string); ok && wallet != "" {
		return wallet, nil
	}
	return "", fmt.Errorf("missing sub in jwt")
}
