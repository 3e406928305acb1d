package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/vfg2006/meta-ads-dashboard-api/infrastructure/integrator/meta/metaclient"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/domain"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/usecases/insighting"
	"github.com/vfg2006/meta-ads-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/meta-ads-dashboard-api/pkg/log"
)

// PostInsights atende a consulta tabular crua: valida o corpo, delega ao
// serviço e devolve as linhas achatadas.
func PostInsights(service insighting.Insighter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		req, ok := decodeInsightsRequest(w, r)
		if !ok {
			return
		}

		logger.WithFields(log.Fields{
			"accounts": req.Accounts,
			"level":    req.Level,
		}).Info("insights: fetching insights")

		resp, err := service.FetchInsights(r.Context(), req)
		if err != nil {
			writeInsightError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	})
}

// PostDashboard executa o ciclo completo de atualização do painel.
func PostDashboard(service insighting.Insighter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		req, ok := decodeInsightsRequest(w, r)
		if !ok {
			return
		}

		logger.WithFields(log.Fields{
			"accounts": req.Accounts,
			"level":    req.Level,
		}).Info("insights: refreshing dashboard")

		resp, err := service.RefreshDashboard(r.Context(), req)
		if err != nil {
			writeInsightError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	})
}

func decodeInsightsRequest(w http.ResponseWriter, r *http.Request) (*domain.InsightsRequest, bool) {
	req := &domain.InsightsRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Corpo da requisição inválido", nil)
		return nil, false
	}

	if err := validate.Struct(req); err != nil {
		var details []string
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			for _, fieldErr := range validationErrs {
				details = append(details, fieldErr.Error())
			}
		}

		apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Requisição de insights inválida", details)
		return nil, false
	}

	return req, true
}

// writeInsightError traduz falhas do pipeline de busca para o payload
// estruturado da API. Erros terminais do Graph API viram 4xx: a causa está
// na consulta do chamador, não no servidor.
func writeInsightError(w http.ResponseWriter, r *http.Request, err error) {
	logger := log.ForContext(r.Context())

	var graphErr *metaclient.GraphError
	if errors.As(err, &graphErr) {
		logger.WithFields(log.Fields{
			"status": graphErr.Status,
			"code":   graphErr.Code,
		}).Warn("insights: graph api rejected the query")

		apiErrors.WriteError(w, apiErrors.ErrUpstreamRejected, graphErr.Message, nil)
		return
	}

	var transportErr *metaclient.TransportError
	if errors.As(err, &transportErr) {
		logger.WithField("error", err.Error()).Error("insights: graph api unreachable")
		apiErrors.WriteError(w, apiErrors.ErrExternalService, "Graph API indisponível", nil)
		return
	}

	logger.WithField("error", err.Error()).Error("insights: fetch failed")
	apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao buscar insights", nil)
}
