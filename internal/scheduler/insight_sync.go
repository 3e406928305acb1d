package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/meta-ads-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/config"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/domain"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/usecases/insighting"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/usecases/settings"
	"github.com/vfg2006/meta-ads-dashboard-api/pkg/utils"
)

// InsightSyncStatus é o estado corrente do agendador, exposto em
// GET /api/cron/status.
type InsightSyncStatus struct {
	Enabled       bool       `json:"enabled"`
	Running       bool       `json:"running"`
	CronSchedule  string     `json:"cronSchedule"`
	LastRunID     string     `json:"lastRunId,omitempty"`
	LastStartedAt *time.Time `json:"lastStartedAt,omitempty"`
	LastEndedAt   *time.Time `json:"lastEndedAt,omitempty"`
	LastError     string     `json:"lastError,omitempty"`
}

// InsightSyncService aquece o cache de insights: em cada ciclo re-busca os
// insights padrão das contas configuradas para a janela de lookback e apaga
// entradas de cache vencidas.
type InsightSyncService struct {
	scheduler   *gocron.Scheduler
	cfg         *config.Config
	insightSvc  insighting.Insighter
	settingsSvc settings.Service
	cacheRepo   repository.InsightCacheRepository

	mu      sync.Mutex
	running bool
	status  InsightSyncStatus
}

func NewInsightSyncService(
	cfg *config.Config,
	insightSvc insighting.Insighter,
	settingsSvc settings.Service,
	cacheRepo repository.InsightCacheRepository,
) *InsightSyncService {
	scheduler := gocron.NewScheduler(time.Local)

	logrus.WithFields(logrus.Fields{
		"cron_schedule": cfg.InsightSync.CronSchedule,
		"lookback_days": cfg.InsightSync.LookbackDays,
		"sync_enabled":  cfg.InsightSync.Enabled,
	}).Info("Configuração do agendador de sincronização de insights carregada")

	return &InsightSyncService{
		scheduler:   scheduler,
		cfg:         cfg,
		insightSvc:  insightSvc,
		settingsSvc: settingsSvc,
		cacheRepo:   cacheRepo,
		status: InsightSyncStatus{
			Enabled:      cfg.InsightSync.Enabled,
			CronSchedule: cfg.InsightSync.CronSchedule,
		},
	}
}

// Start agenda a sincronização e para o agendador quando o contexto morre.
func (s *InsightSyncService) Start(ctx context.Context) error {
	if !s.cfg.InsightSync.Enabled {
		logrus.Info("Sincronização de insights desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.cfg.InsightSync.CronSchedule).Info("Iniciando agendador de sincronização de insights")

	_, err := s.scheduler.Cron(s.cfg.InsightSync.CronSchedule).Do(func() {
		s.runSync(context.Background())
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar sincronização de insights: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de sincronização de insights")
		s.scheduler.Stop()
	}()

	return nil
}

// RunNow dispara um ciclo manual em background. Retorna o id da execução ou
// vazio quando já existe um ciclo em andamento.
func (s *InsightSyncService) RunNow() string {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		logrus.Info("Sincronização de insights já em andamento, ignorando disparo manual")
		return ""
	}
	s.mu.Unlock()

	runID := s.newRunID()
	go s.runSyncWithID(context.Background(), runID)
	return runID
}

// Status retorna uma cópia do estado corrente.
func (s *InsightSyncService) Status() InsightSyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.status
	out.Running = s.running
	return out
}

func (s *InsightSyncService) runSync(ctx context.Context) {
	s.runSyncWithID(ctx, s.newRunID())
}

func (s *InsightSyncService) runSyncWithID(ctx context.Context, runID string) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		logrus.Info("Sincronização de insights já em andamento, ignorando")
		return
	}
	s.running = true
	started := time.Now()
	s.status.LastRunID = runID
	s.status.LastStartedAt = &started
	s.status.LastEndedAt = nil
	s.status.LastError = ""
	s.mu.Unlock()

	log := logrus.WithField("run_id", runID)
	log.Info("Iniciando ciclo de sincronização de insights")

	err := s.warmCache(ctx, log)

	if s.cacheRepo != nil && s.cfg.Cache.RetentionDays > 0 {
		retention := time.Duration(s.cfg.Cache.RetentionDays) * 24 * time.Hour
		if deleted, cleanupErr := s.cacheRepo.DeleteOlderThan(retention); cleanupErr != nil {
			log.Warnf("Erro ao limpar entradas vencidas do cache: %v", cleanupErr)
		} else if deleted > 0 {
			log.Infof("Removidas %d entradas vencidas do cache", deleted)
		}
	}

	ended := time.Now()

	s.mu.Lock()
	s.running = false
	s.status.LastEndedAt = &ended
	if err != nil {
		s.status.LastError = err.Error()
	}
	s.mu.Unlock()

	if err != nil {
		log.Errorf("Ciclo de sincronização de insights terminou com erro: %v", err)
		return
	}
	log.WithField("elapsed", ended.Sub(started).String()).Info("Ciclo de sincronização de insights concluído")
}

// warmCache re-busca os insights padrão de cada conta configurada. Cada
// conta é consultada individualmente: uma conta com token revogado não
// derruba o aquecimento das demais.
func (s *InsightSyncService) warmCache(ctx context.Context, log *logrus.Entry) error {
	accounts := s.settingsSvc.Accounts()
	if len(accounts) == 0 {
		log.Info("Nenhuma conta configurada, nada a sincronizar")
		return nil
	}

	since := time.Now().AddDate(0, 0, -s.cfg.InsightSync.LookbackDays).Format("2006-01-02")
	until := time.Now().Format("2006-01-02")

	var failures int
	for _, account := range accounts {
		req := &domain.InsightsRequest{
			Accounts: []string{account.ID},
			Since:    since,
			Until:    until,
		}

		if _, err := s.insightSvc.FetchInsights(ctx, req); err != nil {
			failures++
			log.WithFields(logrus.Fields{
				"account": account.ID,
				"error":   err.Error(),
			}).Warn("Falha ao aquecer o cache da conta")
			continue
		}
	}

	if failures == len(accounts) {
		return fmt.Errorf("todas as %d contas falharam na sincronização", failures)
	}
	return nil
}

func (s *InsightSyncService) newRunID() string {
	id, err := utils.GenerateID()
	if err != nil {
		// Fallback improvável; o timestamp ainda identifica a execução.
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return id
}
