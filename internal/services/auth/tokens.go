package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/abriltello/portafolioAI/internal/interfaces"
	"github.com/abriltello/portafolioAI/internal/models"
)

// Issuer is the iss claim on every access token.
const Issuer = "portafolio-server"

// SignToken creates a signed HS256 access token for user
func (s *Service) SignToken(user *models.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"jti":   uuid.New().String(),
		"sub":   user.UserID,
		"email": user.Email,
		"name":  user.Name,
		"role":  user.Role,
		"iss":   Issuer,
		"iat":   now.Unix(),
		"exp":   now.Add(s.config.GetTokenExpiry()).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies an access token
func (s *Service) ValidateToken(tokenString string) (*interfaces.TokenClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	}, jwt.WithExpirationRequired(), jwt.WithIssuer(Issuer), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	sub, _ := claims.GetSubject()
	if sub == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	out := &interfaces.TokenClaims{UserID: sub}
	out.Email, _ = claims["email"].(string)
	out.Name, _ = claims["name"].(string)
	out.Role, _ = claims["role"].(string)
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

// ShouldRefresh reports whether more than half of the token lifetime has elapsed.
func (s *Service) ShouldRefresh(claims *interfaces.TokenClaims) bool {
	if !s.config.GetSlidingExpiry() || claims == nil || claims.IssuedAt.IsZero() || claims.ExpiresAt.IsZero() {
		return false
	}
	lifetime := claims.ExpiresAt.Sub(claims.IssuedAt)
	return s.now().After(claims.IssuedAt.Add(lifetime / 2))
}

