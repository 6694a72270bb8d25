package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	adminRole      = "admin"
	adminTokenType = "admin"
)

// JWTService emite y valida los tokens de operador que habilitan el disparo manual.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

type AdminClaims struct {
	Operator  string `json:"op"`
	Role      string `json:"role"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

var (
	ErrJWTInvalid = errors.New("jwt invalid")
	ErrJWTExpired = errors.New("jwt expired")
)

func NewJWTService(secret string, ttl time.Duration) *JWTService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "art-advisor",
		now:    time.Now,
	}
}

// Enabled indica si hay secreto configurado; sin secreto el disparo manual queda cerrado.
func (s *JWTService) Enabled() bool {
	return s != nil && len(s.secret) > 0
}

// IssueAdminToken firma un token HS256 para el operador indicado.
func (s *JWTService) IssueAdminToken(operator string) (string, time.Time, error) {
	operator = strings.TrimSpace(operator)
	if !s.Enabled() || operator == "" {
		return "", time.Time{}, ErrJWTInvalid
	}
	now := s.now().UTC()
	expires := now.Add(s.ttl)
	claims := AdminClaims{
		Operator:  operator,
		Role:      adminRole,
		TokenType: adminTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   operator,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

func (s *JWTService) ParseAdminToken(token string) (AdminClaims, error) {
	if !s.Enabled() || strings.TrimSpace(token) == "" {
		return AdminClaims{}, ErrJWTInvalid
	}
	var claims AdminClaims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	_, err := parser.ParseWithClaims(token, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return AdminClaims{}, ErrJWTExpired
		}
		return AdminClaims{}, ErrJWTInvalid
	}
	if !s.isValidClaims(claims) {
		return AdminClaims{}, ErrJWTInvalid
	}
	return claims, nil
}

func (s *JWTService) isValidClaims(claims AdminClaims) bool {
	if claims.TokenType != adminTokenType || claims.Role != adminRole {
		return false
	}
	if strings.TrimSpace(claims.Operator) == "" || claims.Subject != claims.Operator {
		return false
	}
	return claims.Issuer == s.issuer
}
