package insighting

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vfg2006/meta-ads-dashboard-api/infrastructure/repository"
	repomocks "github.com/vfg2006/meta-ads-dashboard-api/infrastructure/repository/mocks"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/config"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/domain"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/usecases/insighting/mocks"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/usecases/settings"
)

func insightConfig() *config.Config {
	return &config.Config{
		Meta: config.Meta{
			DefaultLevel:         "campaign",
			DefaultTimeIncrement: "all_days",
			DefaultFields:        []string{"campaign_id", "campaign_name", "impressions", "clicks", "spend", "actions", "date_start", "date_stop"},
		},
		Cache: config.Cache{TTLMinutes: 60},
	}
}

func campaignRow(id string, impressions, clicks, spend string) domain.FlatRow {
	return domain.FlatRow{
		"campaign_id":   id,
		"campaign_name": "Campanha " + id,
		"impressions":   impressions,
		"clicks":        clicks,
		"spend":         spend,
		"date_start":    "2024-01-01",
		"date_stop":     "2024-01-31",
	}
}

func TestFetchInsightsAppliesServerDefaults(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().
		FetchInsights(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *domain.InsightsRequest) (*domain.InsightsResponse, error) {
			assert.Equal(t, "campaign", req.Level)
			assert.Equal(t, "all_days", req.TimeIncrement)
			assert.Equal(t, "last_30d", req.DatePreset)
			assert.NotEmpty(t, req.Fields)
			return &domain.InsightsResponse{Count: 0, Rows: []domain.FlatRow{}}, nil
		})

	svc := NewService(insightConfig(), fetcher, nil)

	resp, err := svc.FetchInsights(context.Background(), &domain.InsightsRequest{Accounts: []string{"act_123"}})
	require.NoError(t, err)
	assert.Zero(t, resp.Count)
}

func TestFetchInsightsResolvesTokenFromSettings(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cfg := insightConfig()
	settingsSvc := settings.NewService(cfg, nil)
	require.NoError(t, settingsSvc.Update(&domain.Settings{Token: "settings-token"}))

	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().
		FetchInsights(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *domain.InsightsRequest) (*domain.InsightsResponse, error) {
			assert.Equal(t, "settings-token", req.Token)
			return &domain.InsightsResponse{}, nil
		})

	svc := NewService(cfg, fetcher, settingsSvc)
	_, err := svc.FetchInsights(context.Background(), &domain.InsightsRequest{Accounts: []string{"act_123"}})
	require.NoError(t, err)
}

func TestFetchInsightsServedFromCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fetcher := mocks.NewMockFetcher(ctrl)
	cache := repomocks.NewMockInsightCacheRepository(ctrl)
	cache.EXPECT().
		Get(gomock.Any(), time.Hour).
		Return(&repository.CachedInsights{
			Rows:          []domain.FlatRow{campaignRow("1", "100", "5", "10")},
			RemovedFields: []string{"reach"},
		}, nil)

	svc := NewServiceWithCache(insightConfig(), fetcher, nil, cache)

	resp, err := svc.FetchInsights(context.Background(), &domain.InsightsRequest{Accounts: []string{"act_123"}})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, []string{"reach"}, resp.RemovedFields)
}

func TestFetchInsightsCacheMissStoresResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rows := []domain.FlatRow{campaignRow("1", "100", "5", "10")}

	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().
		FetchInsights(gomock.Any(), gomock.Any()).
		Return(&domain.InsightsResponse{Count: 1, Rows: rows}, nil)

	cache := repomocks.NewMockInsightCacheRepository(ctrl)
	cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil)
	cache.EXPECT().Put(gomock.Any(), rows, gomock.Nil()).Return(nil)

	svc := NewServiceWithCache(insightConfig(), fetcher, nil, cache)

	resp, err := svc.FetchInsights(context.Background(), &domain.InsightsRequest{Accounts: []string{"act_123"}})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Count)
}

func TestRefreshDashboardJointQueries(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cfg := insightConfig()
	settingsSvc := settings.NewService(cfg, nil)
	_, err := settingsSvc.CreateMetric("Custo por Clique Dobrado", "spend / clicks * 2", true)
	require.NoError(t, err)

	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().
		FetchInsights(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *domain.InsightsRequest) (*domain.InsightsResponse, error) {
			if len(req.Breakdowns) == 0 {
				// Consulta principal: a mesma campanha em dois dias.
				return &domain.InsightsResponse{
					Count: 2,
					Rows: []domain.FlatRow{
						campaignRow("1", "100", "2", "10"),
						campaignRow("1", "100", "3", "10"),
					},
					RemovedFields: []string{"reach"},
				}, nil
			}

			require.Len(t, req.Breakdowns, 1)
			row := campaignRow("1", "100", "5", "40")
			row[req.Breakdowns[0]] = "slice_a"
			return &domain.InsightsResponse{Count: 1, Rows: []domain.FlatRow{row}}, nil
		}).
		Times(5)

	svc := NewService(cfg, fetcher, settingsSvc)

	out, err := svc.RefreshDashboard(context.Background(), &domain.InsightsRequest{Accounts: []string{"act_123"}})
	require.NoError(t, err)

	require.Len(t, out.Rows, 1)
	assert.Equal(t, 200.0, out.Rows[0].Impressions)
	assert.InDelta(t, 0.025, out.Rows[0].CTR, 1e-9)
	assert.Equal(t, 200.0, out.Totals.Impressions)

	require.Len(t, out.Breakdowns, 4)
	for _, dimension := range domain.DashboardBreakdowns {
		entries, ok := out.Breakdowns[dimension]
		require.True(t, ok, dimension)
		require.Len(t, entries, 1)
		assert.Equal(t, "slice_a", entries[0].Name)
		assert.InDelta(t, 100.0, entries[0].Percent, 1e-9)
	}

	require.Len(t, out.CustomMetrics, 1)
	assert.InDelta(t, 8.0, out.CustomMetrics[0].Values["1"], 1e-9)

	assert.Equal(t, []string{"reach"}, out.RemovedFields)
}

func TestRefreshDashboardAbortsOnAnyFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().
		FetchInsights(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *domain.InsightsRequest) (*domain.InsightsResponse, error) {
			if len(req.Breakdowns) == 1 && req.Breakdowns[0] == "gender" {
				return nil, errors.New("graph api unavailable")
			}
			return &domain.InsightsResponse{Rows: []domain.FlatRow{}}, nil
		}).
		MinTimes(1).
		MaxTimes(5)

	svc := NewService(insightConfig(), fetcher, nil)

	_, err := svc.RefreshDashboard(context.Background(), &domain.InsightsRequest{Accounts: []string{"act_123"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "graph api unavailable")
}

func TestRefreshDashboardSkipsNonFiniteMetricValues(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cfg := insightConfig()
	settingsSvc := settings.NewService(cfg, nil)
	_, err := settingsSvc.CreateMetric("CPC Manual", "spend / clicks", true)
	require.NoError(t, err)

	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().
		FetchInsights(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *domain.InsightsRequest) (*domain.InsightsResponse, error) {
			return &domain.InsightsResponse{
				Count: 1,
				Rows:  []domain.FlatRow{campaignRow("1", "100", "0", "10")},
			}, nil
		}).
		Times(5)

	svc := NewService(cfg, fetcher, settingsSvc)

	out, err := svc.RefreshDashboard(context.Background(), &domain.InsightsRequest{Accounts: []string{"act_123"}})
	require.NoError(t, err)

	require.Len(t, out.CustomMetrics, 1)
	_, present := out.CustomMetrics[0].Values["1"]
	assert.False(t, present, "valor não finito não entra no mapa")
}
