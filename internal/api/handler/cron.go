package handler

import (
	"net/http"

	"github.com/vfg2006/meta-ads-dashboard-api/internal/scheduler"
	"github.com/vfg2006/meta-ads-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/meta-ads-dashboard-api/pkg/log"
)

// RunInsightSync dispara manualmente um ciclo de aquecimento do cache.
func RunInsightSync(service *scheduler.InsightSyncService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		if service == nil {
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Serviço de sincronização não disponível", nil)
			return
		}

		runID := service.RunNow()
		if runID == "" {
			writeJSON(w, http.StatusConflict, map[string]any{
				"started": false,
				"reason":  "sincronização já em andamento",
			})
			return
		}

		logger.WithField("run_id", runID).Info("cron: manual insight sync triggered")
		writeJSON(w, http.StatusAccepted, map[string]any{
			"started": true,
			"runId":   runID,
		})
	})
}

// GetCronStatus devolve o estado corrente do agendador.
func GetCronStatus(service *scheduler.InsightSyncService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if service == nil {
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Serviço de sincronização não disponível", nil)
			return
		}

		writeJSON(w, http.StatusOK, service.Status())
	})
}
