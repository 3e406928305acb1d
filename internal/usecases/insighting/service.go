package insighting

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vfg2006/meta-ads-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/config"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/domain"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/usecases/aggregating"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/usecases/formula"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/usecases/normalizing"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/usecases/settings"
)

type service struct {
	cfg         *config.Config
	fetcher     Fetcher
	settingsSvc settings.Service
	cache       repository.InsightCacheRepository

	// refreshMu serializa ciclos de atualização do dashboard: duas
	// atualizações simultâneas quintuplicariam as chamadas ao Graph API
	// sem nenhum ganho.
	refreshMu sync.Mutex
}

func NewService(cfg *config.Config, fetcher Fetcher, settingsSvc settings.Service) Insighter {
	return &service{
		cfg:         cfg,
		fetcher:     fetcher,
		settingsSvc: settingsSvc,
	}
}

// WithCache liga o cache de insights em Postgres: consultas repetidas dentro
// do TTL são servidas do banco, sem bater no Graph API.
func (s *service) WithCache(cache repository.InsightCacheRepository) Insighter {
	s.cache = cache
	return s
}

// NewServiceWithCache monta o serviço já com o cache ligado.
func NewServiceWithCache(cfg *config.Config, fetcher Fetcher, settingsSvc settings.Service, cache repository.InsightCacheRepository) Insighter {
	svc := &service{
		cfg:         cfg,
		fetcher:     fetcher,
		settingsSvc: settingsSvc,
	}
	return svc.WithCache(cache)
}

// FetchInsights resolve os defaults do servidor, consulta o cache e delega a
// busca resiliente ao integrador.
func (s *service) FetchInsights(ctx context.Context, req *domain.InsightsRequest) (*domain.InsightsResponse, error) {
	resolved := s.applyDefaults(req)

	if cached := s.fromCache(resolved); cached != nil {
		return cached, nil
	}

	resp, err := s.fetcher.FetchInsights(ctx, resolved)
	if err != nil {
		return nil, err
	}

	s.store(resolved, resp)
	return resp, nil
}

// RefreshDashboard executa um ciclo completo: a consulta principal mais as
// quatro de breakdown, despachadas juntas e aguardadas em conjunto. Qualquer
// falha aborta o ciclo inteiro; atualizações sobrepostas são serializadas.
func (s *service) RefreshDashboard(ctx context.Context, req *domain.InsightsRequest) (*domain.DashboardResponse, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	started := time.Now()

	main := s.applyDefaults(req)
	main.Breakdowns = nil

	var mainResp *domain.InsightsResponse
	breakdownResps := make([]*domain.InsightsResponse, len(domain.DashboardBreakdowns))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		mainResp, err = s.FetchInsights(gctx, main)
		return err
	})

	for i, dimension := range domain.DashboardBreakdowns {
		i, dimension := i, dimension
		g.Go(func() error {
			breakdownReq := s.applyDefaults(req)
			breakdownReq.Breakdowns = []string{dimension}

			var err error
			breakdownResps[i], err = s.FetchInsights(gctx, breakdownReq)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		logrus.WithFields(logrus.Fields{
			"accounts": req.Accounts,
			"error":    err.Error(),
		}).Error("insights: dashboard refresh aborted")
		return nil, err
	}

	rows := aggregating.AggregateByID(normalizing.NormalizeAll(mainResp.Rows))
	totals := aggregating.Totals(rows)

	breakdowns := make(map[string][]*domain.BreakdownEntry, len(domain.DashboardBreakdowns))
	removed := mainResp.RemovedFields
	for i, dimension := range domain.DashboardBreakdowns {
		normalized := normalizing.NormalizeAll(breakdownResps[i].Rows)
		breakdowns[dimension] = aggregating.BreakdownDistribution(normalized, dimension)
		removed = appendUnique(removed, breakdownResps[i].RemovedFields...)
	}

	logrus.WithFields(logrus.Fields{
		"accounts": len(main.Accounts),
		"rows":     len(rows),
		"elapsed":  time.Since(started).String(),
	}).Info("insights: dashboard refresh completed")

	return &domain.DashboardResponse{
		Rows:          rows,
		Totals:        totals,
		Breakdowns:    breakdowns,
		CustomMetrics: s.evaluateCustomMetrics(rows),
		RemovedFields: removed,
	}, nil
}

// evaluateCustomMetrics avalia as métricas habilitadas sobre as linhas já
// agregadas. Resultados não finitos (divisão por zero em produção) ficam de
// fora do mapa; a tabela renderiza "-".
func (s *service) evaluateCustomMetrics(rows []*domain.NormalizedRow) []domain.DashboardMetric {
	if s.settingsSvc == nil {
		return nil
	}

	enabled := s.settingsSvc.EnabledMetrics()
	if len(enabled) == 0 {
		return nil
	}

	fields := s.settingsSvc.PermittedFields()
	out := make([]domain.DashboardMetric, 0, len(enabled))

	for _, metric := range enabled {
		ev, err := formula.Compile(metric.Formula, fields)
		if err != nil {
			// Fórmula persistida que não compila mais (catálogo mudou):
			// pula a métrica em vez de derrubar o ciclo.
			logrus.WithFields(logrus.Fields{
				"metric": metric.ID,
				"error":  err.Error(),
			}).Warn("insights: skipping custom metric that no longer compiles")
			continue
		}

		values := make(map[string]float64, len(rows))
		for _, row := range rows {
			v := ev.Eval(row)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			values[row.ID] = v
		}

		out = append(out, domain.DashboardMetric{
			ID:     metric.ID,
			Name:   metric.Name,
			Values: values,
		})
	}

	return out
}

// applyDefaults materializa os defaults do servidor em uma cópia da
// requisição: nível, campos, incremento de tempo e o token resolvido na
// ordem requisição > configurações persistidas > servidor.
func (s *service) applyDefaults(req *domain.InsightsRequest) *domain.InsightsRequest {
	resolved := *req

	resolved.Accounts = append([]string(nil), req.Accounts...)
	resolved.Fields = append([]string(nil), req.Fields...)
	resolved.Breakdowns = append([]string(nil), req.Breakdowns...)

	if resolved.Level == "" {
		resolved.Level = s.cfg.Meta.DefaultLevel
	}
	if len(resolved.Fields) == 0 {
		resolved.Fields = append([]string(nil), s.cfg.Meta.DefaultFields...)
	}
	if resolved.TimeIncrement == "" {
		resolved.TimeIncrement = s.cfg.Meta.DefaultTimeIncrement
	}
	if resolved.Since == "" && resolved.Until == "" && resolved.DatePreset == "" {
		resolved.DatePreset = "last_30d"
	}

	if resolved.Token == "" && s.settingsSvc != nil {
		resolved.Token = s.settingsSvc.Token()
	}

	return &resolved
}

func (s *service) fromCache(req *domain.InsightsRequest) *domain.InsightsResponse {
	if s.cache == nil {
		return nil
	}

	ttl := time.Duration(s.cfg.Cache.TTLMinutes) * time.Minute
	cached, err := s.cache.Get(repository.CacheKey(req), ttl)
	if err != nil {
		logrus.WithField("error", err.Error()).Warn("insights: cache lookup failed, falling back to graph api")
		return nil
	}
	if cached == nil {
		return nil
	}

	return &domain.InsightsResponse{
		Count:         len(cached.Rows),
		Rows:          cached.Rows,
		RemovedFields: cached.RemovedFields,
	}
}

func (s *service) store(req *domain.InsightsRequest, resp *domain.InsightsResponse) {
	if s.cache == nil || resp == nil {
		return
	}

	if err := s.cache.Put(repository.CacheKey(req), resp.Rows, resp.RemovedFields); err != nil {
		logrus.WithField("error", err.Error()).Warn("insights: failed to store fetch result in cache")
	}
}

func appendUnique(list []string, items ...string) []string {
	for _, item := range items {
		exists := false
		for _, have := range list {
			if have == item {
				exists = true
				break
			}
		}
		if !exists {
			list = append(list, item)
		}
	}
	return list
}
