package authenticating

import "github.com/pkg/errors"

var (
	// ErrMissingCredentials indica login sem usuário ou senha.
	ErrMissingCredentials = errors.New("username and password are required")

	// ErrInvalidCredentials indica usuário ou senha incorretos. A mensagem é
	// a mesma para os dois casos, de propósito.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken indica token ausente, malformado, expirado ou com
	// assinatura inválida.
	ErrInvalidToken = errors.New("invalid token")

	// ErrAuthDisabled indica tentativa de login com a autenticação
	// desligada (nenhum segredo configurado).
	ErrAuthDisabled = errors.New("authentication is disabled")
)
