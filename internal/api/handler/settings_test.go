package handler

import (
	"net/http"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vfg2006/meta-ads-dashboard-api/internal/config"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/domain"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/usecases/settings"
	"github.com/vfg2006/meta-ads-dashboard-api/pkg/apiErrors"
)

func newSettingsService(t *testing.T) settings.Service {
	t.Helper()
	cfg := &config.Config{}
	cfg.Meta.Accounts = []string{"act_123:Loja A"}
	return settings.NewService(cfg, nil)
}

// metricsRouter monta as rotas de métricas num httprouter real para que o
// parâmetro :id chegue ao handler pelo contexto, como em produção.
func metricsRouter(service settings.Service) http.Handler {
	r := httprouter.New()
	r.Handler(http.MethodPut, "/api/settings/metrics/:id", UpdateMetric(service))
	r.Handler(http.MethodDelete, "/api/settings/metrics/:id", DeleteMetric(service))
	return r
}

func TestGetSettings(t *testing.T) {
	service := newSettingsService(t)

	rec := doRequest(t, GetSettings(service), http.MethodGet, "/api/settings", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp domain.Settings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"act_123"}, resp.Accounts)
}

func TestUpdateSettings(t *testing.T) {
	service := newSettingsService(t)

	rec := doRequest(t, UpdateSettings(service), http.MethodPut, "/api/settings",
		`{"accounts":["act_123"],"manualAccounts":[{"id":"act_999","name":"Loja B"}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, service.Accounts(), 2)
}

func TestUpdateSettingsRejectsMalformedBody(t *testing.T) {
	service := newSettingsService(t)

	rec := doRequest(t, UpdateSettings(service), http.MethodPut, "/api/settings", `{oops`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apiErrors.ErrInvalidFormat, decodeAPIError(t, rec).Code)
}

func TestUpdateSettingsRejectsBrokenEmbeddedFormula(t *testing.T) {
	service := newSettingsService(t)

	rec := doRequest(t, UpdateSettings(service), http.MethodPut, "/api/settings",
		`{"accounts":["act_123"],"customMetrics":[{"id":"m1","name":"Quebrada","formula":"spend / 0"}]}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apiErrors.ErrInvalidFormula, decodeAPIError(t, rec).Code)
}

func TestCreateMetric(t *testing.T) {
	service := newSettingsService(t)

	rec := doRequest(t, CreateMetric(service), http.MethodPost, "/api/settings/metrics",
		`{"name":"ROAS Real","formula":"action_values_purchase / spend","enabled":true}`)

	require.Equal(t, http.StatusCreated, rec.Code)

	var metric domain.CustomMetric
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &metric))
	assert.Equal(t, "roas_real", metric.ID)
	assert.True(t, metric.Enabled)
}

func TestCreateMetricRejectsInvalidFormula(t *testing.T) {
	service := newSettingsService(t)

	rec := doRequest(t, CreateMetric(service), http.MethodPost, "/api/settings/metrics",
		`{"name":"Quebrada","formula":"spend +"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apiErrors.ErrInvalidFormula, decodeAPIError(t, rec).Code)
}

func TestCreateMetricRequiresName(t *testing.T) {
	service := newSettingsService(t)

	rec := doRequest(t, CreateMetric(service), http.MethodPost, "/api/settings/metrics",
		`{"formula":"spend / clicks"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apiErrors.ErrMissingRequiredData, decodeAPIError(t, rec).Code)
}

func TestUpdateMetric(t *testing.T) {
	service := newSettingsService(t)
	metric, err := service.CreateMetric("ROAS Real", "action_values_purchase / spend", true)
	require.NoError(t, err)

	rec := doRequest(t, metricsRouter(service), http.MethodPut,
		"/api/settings/metrics/"+metric.ID,
		`{"name":"ROAS Real","formula":"action_values_purchase / spend","enabled":false}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var updated domain.CustomMetric
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, metric.ID, updated.ID)
	assert.False(t, updated.Enabled)
}

func TestUpdateMetricNotFound(t *testing.T) {
	service := newSettingsService(t)

	rec := doRequest(t, metricsRouter(service), http.MethodPut,
		"/api/settings/metrics/nope",
		`{"name":"Qualquer","formula":"spend"}`)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apiErrors.ErrMetricNotFound, decodeAPIError(t, rec).Code)
}

func TestDeleteMetric(t *testing.T) {
	service := newSettingsService(t)
	metric, err := service.CreateMetric("ROAS Real", "action_values_purchase / spend", true)
	require.NoError(t, err)

	rec := doRequest(t, metricsRouter(service), http.MethodDelete,
		"/api/settings/metrics/"+metric.ID, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, service.ListMetrics())
}

func TestListMetrics(t *testing.T) {
	service := newSettingsService(t)
	_, err := service.CreateMetric("Ativa", "spend", true)
	require.NoError(t, err)
	_, err = service.CreateMetric("Inativa", "clicks", false)
	require.NoError(t, err)

	rec := doRequest(t, ListMetrics(service), http.MethodGet, "/api/settings/metrics", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var metrics []domain.CustomMetric
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &metrics))
	assert.Len(t, metrics, 2)
}
