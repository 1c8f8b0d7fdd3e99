package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims custom claims for session tokens. SessionID points at the stored
// session row; the token is only as valid as that row.
type JWTClaims struct {
	SessionID string `json:"session_id"`
	Username  string `json:"username"`
	jwt.RegisteredClaims
}

// ResetClaims are the claims of a short-lived password-reset token. The
// purpose claim keeps a session token from passing as a reset token and the
// other way around.
type ResetClaims struct {
	Username string `json:"username"`
	Purpose  string `json:"purpose"`
	jwt.RegisteredClaims
}

const resetPurpose = "password_reset"

// ResetTokenTTL is how long a password-reset token stays usable
const ResetTokenTTL = 5 * time.Minute

// JWTUtil provides JWT generation and validation
type JWTUtil struct {
	secretKey       string
	expirationHours int64
}

// NewJWTUtil creates a new JWTUtil
func NewJWTUtil(secretKey string, expirationHours int64) *JWTUtil {
	return &JWTUtil{secretKey: secretKey, expirationHours: expirationHours}
}

// Expiration returns the configured token lifetime
func (ju *JWTUtil) Expiration() time.Duration {
	return time.Hour * time.Duration(ju.expirationHours)
}

// GenerateToken wraps a session id and username in a signed token
func (ju *JWTUtil) GenerateToken(sessionID, username string) (string, error) {
	claims := &JWTClaims{
		SessionID: sessionID,
		Username:  username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ju.Expiration())),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   username,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(ju.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// GenerateResetToken signs a short-lived password-reset token for username
func (ju *JWTUtil) GenerateResetToken(username string) (string, error) {
	claims := &ResetClaims{
		Username: username,
		Purpose:  resetPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ResetTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   username,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(ju.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign reset token: %w", err)
	}
	return tokenString, nil
}

// ValidateResetToken checks a password-reset token and returns the username
// it was issued for
func (ju *JWTUtil) ValidateResetToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ResetClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(ju.secretKey), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse reset token: %w", err)
	}

	claims, ok := token.Claims.(*ResetClaims)
	if !ok || !token.Valid || claims.Purpose != resetPurpose {
		return "", fmt.Errorf("invalid reset token")
	}
	return claims.Username, nil
}

// ValidateToken validates the JWT token and returns its claims
func (ju *JWTUtil) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(ju.secretKey), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
