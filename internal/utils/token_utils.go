package utils

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the JWT claims carried by both token kinds.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"typ"`
	Username  string `json:"username,omitempty"`
	Email     string `json:"email,omitempty"`
}

// GenerateJWT signs claims with HS256.
func GenerateJWT(claims Claims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseAndValidateJWT parses a JWT token string, validates its signature and standard claims.
// The returned error wraps the jwt package sentinels (jwt.ErrTokenExpired, jwt.ErrTokenSignatureInvalid, ...).
func ParseAndValidateJWT(tokenString string, secretKey string, issuer string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secretKey), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}

	return claims, nil
}
