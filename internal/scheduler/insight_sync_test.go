package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	repomocks "github.com/vfg2006/meta-ads-dashboard-api/infrastructure/repository/mocks"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/config"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/domain"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/usecases/insighting/mocks"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/usecases/settings"
)

func syncConfig() *config.Config {
	return &config.Config{
		Meta: config.Meta{
			Accounts: []string{"act_123:Loja A", "act_456:Loja B"},
		},
		InsightSync: config.InsightSync{
			CronSchedule: "0 3 * * *",
			LookbackDays: 30,
			Enabled:      true,
		},
		Cache: config.Cache{RetentionDays: 90},
	}
}

func waitForIdle(t *testing.T, svc *InsightSyncService) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if status := svc.Status(); !status.Running && status.LastEndedAt != nil {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("sincronização não terminou no prazo")
}

func TestRunNowWarmsEachAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cfg := syncConfig()
	settingsSvc := settings.NewService(cfg, nil)

	insightSvc := mocks.NewMockInsighter(ctrl)
	insightSvc.EXPECT().
		FetchInsights(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, req *domain.InsightsRequest) (*domain.InsightsResponse, error) {
			require.Len(t, req.Accounts, 1)
			assert.NotEmpty(t, req.Since)
			assert.NotEmpty(t, req.Until)
			return &domain.InsightsResponse{}, nil
		}).
		Times(2)

	cacheRepo := repomocks.NewMockInsightCacheRepository(ctrl)
	cacheRepo.EXPECT().DeleteOlderThan(90 * 24 * time.Hour).Return(int64(3), nil)

	svc := NewInsightSyncService(cfg, insightSvc, settingsSvc, cacheRepo)

	runID := svc.RunNow()
	require.NotEmpty(t, runID)

	waitForIdle(t, svc)

	status := svc.Status()
	assert.Equal(t, runID, status.LastRunID)
	assert.Empty(t, status.LastError)
}

func TestRunNowToleratesPartialFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cfg := syncConfig()
	cfg.Cache.RetentionDays = 0
	settingsSvc := settings.NewService(cfg, nil)

	insightSvc := mocks.NewMockInsighter(ctrl)
	first := insightSvc.EXPECT().
		FetchInsights(gomock.Any(), gomock.Any()).
		Return(nil, assert.AnError)
	insightSvc.EXPECT().
		FetchInsights(gomock.Any(), gomock.Any()).
		Return(&domain.InsightsResponse{}, nil).
		After(first)

	svc := NewInsightSyncService(cfg, insightSvc, settingsSvc, nil)

	require.NotEmpty(t, svc.RunNow())
	waitForIdle(t, svc)

	// Uma conta quebrada não marca o ciclo inteiro como falho.
	assert.Empty(t, svc.Status().LastError)
}

func TestRunNowReportsTotalFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cfg := syncConfig()
	cfg.Cache.RetentionDays = 0
	settingsSvc := settings.NewService(cfg, nil)

	insightSvc := mocks.NewMockInsighter(ctrl)
	insightSvc.EXPECT().
		FetchInsights(gomock.Any(), gomock.Any()).
		Return(nil, assert.AnError).
		Times(2)

	svc := NewInsightSyncService(cfg, insightSvc, settingsSvc, nil)

	require.NotEmpty(t, svc.RunNow())
	waitForIdle(t, svc)

	assert.NotEmpty(t, svc.Status().LastError)
}

func TestStatusDefaults(t *testing.T) {
	cfg := syncConfig()
	svc := NewInsightSyncService(cfg, nil, settings.NewService(cfg, nil), nil)

	status := svc.Status()
	assert.True(t, status.Enabled)
	assert.False(t, status.Running)
	assert.Equal(t, "0 3 * * *", status.CronSchedule)
	assert.Nil(t, status.LastStartedAt)
}
