package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/domain"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/usecases/settings"
	"github.com/vfg2006/meta-ads-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/meta-ads-dashboard-api/pkg/log"
)

type metricRequest struct {
	Name    string `json:"name"`
	Formula string `json:"formula"`
	Enabled bool   `json:"enabled"`
}

// GetSettings devolve as configurações atuais do painel.
func GetSettings(service settings.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, service.Get())
	})
}

// UpdateSettings substitui as configurações inteiras.
func UpdateSettings(service settings.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		var req domain.Settings
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Corpo da requisição inválido", nil)
			return
		}

		if err := service.Update(&req); err != nil {
			writeSettingsError(w, err)
			return
		}

		logger.WithFields(log.Fields{
			"accounts": len(req.Accounts),
			"metrics":  len(req.CustomMetrics),
		}).Info("settings: settings updated")

		writeJSON(w, http.StatusOK, service.Get())
	})
}

// ListMetrics lista as métricas customizadas, habilitadas ou não.
func ListMetrics(service settings.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, service.ListMetrics())
	})
}

// CreateMetric cria uma métrica customizada. A fórmula é validada contra uma
// linha de amostra antes de qualquer persistência.
func CreateMetric(service settings.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		var req metricRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Corpo da requisição inválido", nil)
			return
		}

		metric, err := service.CreateMetric(req.Name, req.Formula, req.Enabled)
		if err != nil {
			writeSettingsError(w, err)
			return
		}

		logger.WithFields(log.Fields{
			"metric_id": metric.ID,
			"enabled":   metric.Enabled,
		}).Info("settings: custom metric created")

		writeJSON(w, http.StatusCreated, metric)
	})
}

// UpdateMetric atualiza nome, fórmula e estado de uma métrica existente.
func UpdateMetric(service settings.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		var req metricRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Corpo da requisição inválido", nil)
			return
		}

		metric, err := service.UpdateMetric(id, req.Name, req.Formula, req.Enabled)
		if err != nil {
			writeSettingsError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, metric)
	})
}

// DeleteMetric remove uma métrica customizada.
func DeleteMetric(service settings.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		if err := service.DeleteMetric(id); err != nil {
			writeSettingsError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
	})
}

func writeSettingsError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, settings.ErrInvalidFormula):
		apiErrors.WriteError(w, apiErrors.ErrInvalidFormula, "Fórmula inválida", nil)
	case errors.Is(err, settings.ErrMetricNotFound):
		apiErrors.WriteError(w, apiErrors.ErrMetricNotFound, "Métrica não encontrada", nil)
	case errors.Is(err, settings.ErrMissingName):
		apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Nome da métrica é obrigatório", nil)
	default:
		apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao persistir configurações", nil)
	}
}
