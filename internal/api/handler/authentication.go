package handler

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/usecases/authenticating"
	"github.com/vfg2006/meta-ads-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/meta-ads-dashboard-api/pkg/log"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login autentica o administrador do painel e devolve o JWT.
func Login(service authenticating.Authenticator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Corpo da requisição inválido", nil)
			return
		}

		token, err := service.Login(req.Username, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, authenticating.ErrMissingCredentials):
				apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Usuário e senha são obrigatórios", nil)
			case errors.Is(err, authenticating.ErrAuthDisabled):
				apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Autenticação desabilitada neste servidor", nil)
			default:
				logger.WithField("username", req.Username).Info("auth: login attempt rejected")
				apiErrors.WriteError(w, apiErrors.ErrInvalidCredentials, "Credenciais inválidas", nil)
			}
			return
		}

		logger.WithField("username", req.Username).Info("auth: login succeeded")
		writeJSON(w, http.StatusOK, map[string]string{"token": token})
	})
}
