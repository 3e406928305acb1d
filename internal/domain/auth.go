package domain

import "github.com/golang-jwt/jwt/v5"

// Claims são as claims do token emitido no login do painel. O serviço opera
// com uma única credencial administrativa provisionada por configuração.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}
