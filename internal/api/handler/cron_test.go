package handler

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vfg2006/meta-ads-dashboard-api/internal/config"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/domain"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/scheduler"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/usecases/settings"
	"github.com/vfg2006/meta-ads-dashboard-api/pkg/apiErrors"
)

type stubInsighter struct {
	fetches int64
}

func (s *stubInsighter) FetchInsights(context.Context, *domain.InsightsRequest) (*domain.InsightsResponse, error) {
	atomic.AddInt64(&s.fetches, 1)
	return &domain.InsightsResponse{}, nil
}

func (s *stubInsighter) RefreshDashboard(context.Context, *domain.InsightsRequest) (*domain.DashboardResponse, error) {
	return &domain.DashboardResponse{}, nil
}

func newSyncService(t *testing.T) (*scheduler.InsightSyncService, *stubInsighter) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Meta.Accounts = []string{"act_123:Loja A"}
	cfg.InsightSync.LookbackDays = 30

	insighter := &stubInsighter{}
	svc := scheduler.NewInsightSyncService(cfg, insighter, settings.NewService(cfg, nil), nil)
	return svc, insighter
}

func waitForIdle(t *testing.T, svc *scheduler.InsightSyncService) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		status := svc.Status()
		if !status.Running && status.LastEndedAt != nil {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("sincronização não terminou dentro do prazo")
}

func TestRunInsightSync(t *testing.T) {
	svc, insighter := newSyncService(t)

	rec := doRequest(t, RunInsightSync(svc), http.MethodPost, "/api/cron/insights/run", "")

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["started"])
	assert.NotEmpty(t, resp["runId"])

	waitForIdle(t, svc)
	assert.Equal(t, int64(1), atomic.LoadInt64(&insighter.fetches))
}

func TestRunInsightSyncNilService(t *testing.T) {
	rec := doRequest(t, RunInsightSync(nil), http.MethodPost, "/api/cron/insights/run", "")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, apiErrors.ErrInternalServer, decodeAPIError(t, rec).Code)
}

func TestGetCronStatus(t *testing.T) {
	svc, _ := newSyncService(t)

	rec := doRequest(t, GetCronStatus(svc), http.MethodGet, "/api/cron/status", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var status scheduler.InsightSyncStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.False(t, status.Running)
	assert.False(t, status.Enabled)
}
