package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims são as informações do operador autenticado carregadas no token
type Claims struct {
	UserEmail  string `json:"email"`
	UserRoleID int    `json:"role_id"`
	jwt.RegisteredClaims
}
