package authenticating

//go:generate mockgen -source=service.go -destination=mocks/mock_authenticator.go -package=mocks

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sus-dashboard-api/internal/config"
	"github.com/vfg2006/sus-dashboard-api/internal/domain"
	"github.com/vfg2006/sus-dashboard-api/pkg/apiErrors"
	"golang.org/x/crypto/bcrypt"
)

// RoleAdmin é o único papel emitido: o operador que pode recarregar a base
const RoleAdmin = 1

type Authenticator interface {
	LoginUser(email, password string) (string, error)
	ValidateToken(tokenString string) (*domain.Claims, error)
}

type Service struct {
	cfg config.Auth
	now func() time.Time
}

func NewService(cfg config.Auth) Authenticator {
	return &Service{
		cfg: cfg,
		now: time.Now,
	}
}

func handleEmail(s string) string {
	email := strings.ToLower(s)
	email = strings.TrimSpace(email)
	email = strings.ReplaceAll(email, " ", "")
	return email
}

func (s *Service) LoginUser(email, password string) (string, error) {
	if email == "" || password == "" {
		return "", NewAuthError(ErrMissingRequiredData, apiErrors.ErrMissingRequiredData, "Email e senha são obrigatórios")
	}

	if s.cfg.AdminEmail == "" || s.cfg.AdminPasswordHash == "" || s.cfg.Secret == "" {
		return "", NewAuthError(ErrAuthNotConfigured, apiErrors.ErrInternalServer, "Administrador não configurado")
	}

	if handleEmail(email) != handleEmail(s.cfg.AdminEmail) {
		logrus.WithField("email", handleEmail(email)).Warn("authenticating: tentativa de login com email desconhecido")
		return "", NewAuthError(ErrInvalidCredentials, apiErrors.ErrInvalidCredentials, "Email ou senha incorretos")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(password)); err != nil {
		logrus.WithField("email", handleEmail(email)).Warn("authenticating: senha incorreta")
		return "", NewAuthError(ErrInvalidCredentials, apiErrors.ErrInvalidCredentials, "Email ou senha incorretos")
	}

	token, err := s.generateJWT(handleEmail(email))
	if err != nil {
		return "", NewAuthError(err, apiErrors.ErrInternalServer, "Erro ao gerar token de autenticação")
	}

	return token, nil
}

func (s *Service) generateJWT(email string) (string, error) {
	now := s.now()
	claims := domain.Claims{
		UserEmail:  email,
		UserRoleID: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.Secret))
}

func (s *Service) ValidateToken(tokenString string) (*domain.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &domain.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, NewAuthError(ErrExpiredToken, apiErrors.ErrExpiredToken, "Sessão expirada")
		}
		return nil, NewAuthError(ErrInvalidToken, apiErrors.ErrInvalidToken, err.Error())
	}

	if claims, ok := token.Claims.(*domain.Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, NewAuthError(ErrInvalidToken, apiErrors.ErrInvalidToken, "")
}
