package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/securedocs/securedocs/backend/go-services/internal/config"
	"github.com/securedocs/securedocs/backend/go-services/internal/document"
)

// GenerateWalletToken creates a signed JWT whose subject is the wallet
// address. Used by the dev token endpoint and by integration tests; in
// production the identity provider issues tokens.
func GenerateWalletToken(cfg *config.Config, address string, ttl time.Duration) (string, error) {
	address = document.NormalizeIdentity(address)
	if address == "" {
		return "", errors.New("address required")
	}
	claims := jwt.MapClaims{
		"sub": address,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(cfg.JWT.Secret))
}

// ParseWalletToken validates a token minted by GenerateWalletToken and
// returns the wallet address.
func ParseWalletToken(cfg *config.Config, raw string) (string, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.JWT.Secret), nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return "", errors.New("invalid token")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}
