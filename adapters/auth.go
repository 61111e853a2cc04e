package adapters

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
)

// jwtLifetime is how long a signed access token stays valid.
const jwtLifetime = 30 * time.Minute

// authorization returns the Authorization header value for a target.
func authorization(t Target) string {
	token := t.Credential
	if t.Auth == AuthJWT {
		signed, err := SignJWT(t.Credential, time.Now())
		if err == nil {
			token = signed
		}
		// Fall back to the raw credential; the provider will reject it with a 401 the caller can see.
	}
	return "Bearer " + token
}

// SignJWT signs an HS256 token from a credential in "access_key,secret_key" form.
func SignJWT(credential string, now time.Time) (string, error) {
	parts := strings.Split(credential, ",")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid credential format, expected 'access_key,secret_key'")
	}
	accessKey := strings.TrimSpace(parts[0])
	secretKey := strings.TrimSpace(parts[1])
	if accessKey == "" || secretKey == "" {
		return "", fmt.Errorf("access key and secret key are required")
	}

	claims := jwt.MapClaims{
		"iss": accessKey,
		"exp": now.Add(jwtLifetime).Unix(),
		"nbf": now.Add(-5 * time.Second).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["typ"] = "JWT"
	return token.SignedString([]byte(secretKey))
}
