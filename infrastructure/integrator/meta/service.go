package meta

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/meta-ads-dashboard-api/infrastructure/integrator/meta/metaclient"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/config"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/domain"
)

// MetaIntegrator é a fachada sobre o Graph API: delega a busca resiliente ao
// client e achata cada linha bruta no modelo tabular do painel.
type MetaIntegrator struct {
	cfg    *config.Config
	Client metaclient.Client
}

func New(cfg *config.Config, client metaclient.Client) *MetaIntegrator {
	return &MetaIntegrator{
		cfg:    cfg,
		Client: client,
	}
}

// FetchInsights busca e achata os insights das contas solicitadas.
func (s *MetaIntegrator) FetchInsights(ctx context.Context, req *domain.InsightsRequest) (*domain.InsightsResponse, error) {
	resultActionType := req.ResultActionType
	if resultActionType == "" {
		resultActionType = s.cfg.Meta.ResultActionType
	}

	token := req.Token
	if token == "" {
		token = s.cfg.Meta.AccessToken
	}

	fetched, err := s.Client.FetchInsights(ctx, &metaclient.FetchRequest{
		Accounts:              req.Accounts,
		Level:                 req.Level,
		Fields:                req.Fields,
		Since:                 req.Since,
		Until:                 req.Until,
		DatePreset:            req.DatePreset,
		TimeIncrement:         req.TimeIncrement,
		Breakdowns:            req.Breakdowns,
		UseUnifiedAttribution: req.UseUnifiedAttribution,
		ActionReportTime:      req.ActionReportTime,
		AccessToken:           token,
		APIVersion:            req.APIVersion,
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"accounts": req.Accounts,
			"level":    req.Level,
			"error":    err.Error(),
		}).Error("insights: failed to fetch insights from graph api")
		return nil, err
	}

	rows := make([]domain.FlatRow, 0, len(fetched.Rows))
	for _, raw := range fetched.Rows {
		rows = append(rows, FlattenRow(raw, resultActionType))
	}

	logrus.WithFields(logrus.Fields{
		"accounts":       len(req.Accounts),
		"rows":           len(rows),
		"removed_fields": fetched.RemovedFields,
	}).Debug("insights: successfully fetched and flattened insight rows")

	return &domain.InsightsResponse{
		Count:         len(rows),
		Rows:          rows,
		RemovedFields: fetched.RemovedFields,
	}, nil
}
