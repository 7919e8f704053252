package configs

import (
	"encoding/base64"
	"fmt"

	"github.com/gorilla/securecookie"
)

// GenerateAndPrintSessionKeys prints fresh key material for the session
// cookie store and the CSRF middleware, ready to paste into .env.
func GenerateAndPrintSessionKeys() error {
	authKey := securecookie.GenerateRandomKey(64)
	encKey := securecookie.GenerateRandomKey(32)
	csrfKey := securecookie.GenerateRandomKey(32)
	if authKey == nil || encKey == nil || csrfKey == nil {
		return fmt.Errorf("failed to generate random keys")
	}

	fmt.Printf("APP_AUTH_KEY=%s\n", base64.StdEncoding.EncodeToString(authKey))
	fmt.Printf("APP_ENC_KEY=%s\n", base64.StdEncoding.EncodeToString(encKey))
	fmt.Printf("CSRF_KEY=%s\n", base64.StdEncoding.EncodeToString(csrfKey))
	return nil
}

// DecodeKey accepts base64 key material and falls back to the raw bytes
// for keys that were not encoded.
func DecodeKey(value string) []byte {
	if decoded, err := base64.StdEncoding.DecodeString(value); err == nil && len(decoded) > 0 {
		return decoded
	}
	return []byte(value)
}
