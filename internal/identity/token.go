package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"scriptqueue/internal/services"
)

type tokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func (s *Service) issueToken(userID, username string) (string, error) {
	now := time.Now().UTC()
	claims := tokenClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", services.Wrap(services.ErrUnavailable, "identity", "token", "sign token", err)
	}
	return signed, nil
}

// VerifyToken validates signature and expiry and returns the embedded claims.
func (s *Service) VerifyToken(raw string) (*Claims, error) {
	var claims tokenClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, services.Wrap(services.ErrAuth, "identity", "token", "invalid or expired token", err)
	}
	if claims.Subject == "" || claims.Username == "" {
		return nil, services.Wrap(services.ErrAuth, "identity", "token", "malformed token claims", nil)
	}
	return &Claims{UserID: claims.Subject, Username: claims.Username}, nil
}
