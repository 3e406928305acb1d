package handler

import (
	"net/http"

	"github.com/vfg2006/meta-ads-dashboard-api/internal/api/handler/router"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/config"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/scheduler"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/usecases/authenticating"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/usecases/insighting"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/usecases/settings"
)

func Ping() []router.Route {
	return []router.Route{
		{
			Path:    "/api/ping",
			Method:  http.MethodGet,
			Handler: PingHandler(),
		},
	}
}

func Config(cfg *config.Config, settingsSvc settings.Service) []router.Route {
	return []router.Route{
		{
			Path:    "/api/config",
			Method:  http.MethodGet,
			Handler: GetConfig(cfg, settingsSvc),
		},
	}
}

func Authentication(service authenticating.Authenticator) []router.Route {
	return []router.Route{
		{
			Path:    "/api/login",
			Method:  http.MethodPost,
			Handler: Login(service),
		},
	}
}

func Insights(service insighting.Insighter) []router.Route {
	return []router.Route{
		{
			Path:    "/api/insights",
			Method:  http.MethodPost,
			Handler: PostInsights(service),
		},
		{
			Path:    "/api/dashboard",
			Method:  http.MethodPost,
			Handler: PostDashboard(service),
		},
	}
}

func Settings(service settings.Service) []router.Route {
	return []router.Route{
		{
			Path:    "/api/settings",
			Method:  http.MethodGet,
			Handler: GetSettings(service),
		},
		{
			Path:    "/api/settings",
			Method:  http.MethodPut,
			Handler: UpdateSettings(service),
		},
		{
			Path:    "/api/settings/metrics",
			Method:  http.MethodGet,
			Handler: ListMetrics(service),
		},
		{
			Path:    "/api/settings/metrics",
			Method:  http.MethodPost,
			Handler: CreateMetric(service),
		},
		{
			Path:    "/api/settings/metrics/:id",
			Method:  http.MethodPut,
			Handler: UpdateMetric(service),
		},
		{
			Path:    "/api/settings/metrics/:id",
			Method:  http.MethodDelete,
			Handler: DeleteMetric(service),
		},
	}
}

func CronJobs(service *scheduler.InsightSyncService) []router.Route {
	return []router.Route{
		{
			Path:    "/api/cron/insights/run",
			Method:  http.MethodPost,
			Handler: RunInsightSync(service),
		},
		{
			Path:    "/api/cron/status",
			Method:  http.MethodGet,
			Handler: GetCronStatus(service),
		},
	}
}
