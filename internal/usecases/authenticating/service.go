package authenticating

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/config"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// Authenticator é a autenticação de administrador único do painel: uma
// credencial vinda da configuração, sem tabela de usuários. Sem segredo
// configurado o painel roda aberto e Login é rejeitado.
type Authenticator interface {
	Enabled() bool
	Login(username, password string) (string, error)
	ValidateToken(tokenString string) (*domain.Claims, error)
}

type Service struct {
	cfg *config.Config
}

func NewService(cfg *config.Config) Authenticator {
	return &Service{cfg: cfg}
}

func (s *Service) Enabled() bool {
	return s.cfg.AuthEnabled()
}

// Login confere a credencial do administrador e emite o JWT. Usuário errado
// e senha errada produzem o mesmo erro.
func (s *Service) Login(username, password string) (string, error) {
	if !s.Enabled() {
		return "", ErrAuthDisabled
	}

	if username == "" || password == "" {
		return "", ErrMissingCredentials
	}

	if username != s.cfg.Auth.AdminUser {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.Auth.AdminPasswordHash), []byte(password)); err != nil {
		logrus.WithField("username", username).Info("Tentativa de login com senha incorreta")
		return "", ErrInvalidCredentials
	}

	token, err := s.generateJWT(username)
	if err != nil {
		return "", err
	}

	return token, nil
}

func (s *Service) generateJWT(username string) (string, error) {
	ttl := time.Duration(s.cfg.Auth.TokenTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}

	claims := domain.Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.Auth.Secret))
}

func (s *Service) ValidateToken(tokenString string) (*domain.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &domain.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Auth.Secret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*domain.Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
