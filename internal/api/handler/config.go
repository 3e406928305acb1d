package handler

import (
	"net/http"

	"github.com/vfg2006/meta-ads-dashboard-api/internal/config"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/domain"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/usecases/settings"
	"github.com/vfg2006/meta-ads-dashboard-api/pkg/log"
)

// GetConfig expõe os defaults efetivos do servidor para o front end montar a
// primeira consulta. O token nunca sai daqui, só o fato de ele existir.
func GetConfig(cfg *config.Config, settingsSvc settings.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		accounts := []domain.AccountRef{}
		hasToken := cfg.Meta.AccessToken != ""
		if settingsSvc != nil {
			accounts = settingsSvc.Accounts()
			hasToken = hasToken || settingsSvc.Token() != ""
		}

		logger.WithField("accounts", len(accounts)).Debug("config: serving effective server defaults")

		writeJSON(w, http.StatusOK, domain.ConfigResponse{
			APIVersion:           cfg.Meta.Version,
			DefaultLevel:         cfg.Meta.DefaultLevel,
			DefaultTimeIncrement: cfg.Meta.DefaultTimeIncrement,
			DefaultFields:        cfg.Meta.DefaultFields,
			Accounts:             accounts,
			HasServerToken:       hasToken,
		})
	})
}
