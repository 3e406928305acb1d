package settings

import (
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/meta-ads-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/config"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/domain"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/usecases/formula"
)

// Service mantém as configurações do painel: token, contas e métricas
// customizadas. O estado vive em memória atrás de um RWMutex e é persistido
// no repositório a cada mutação; sem banco configurado opera só em memória.
type Service interface {
	Get() *domain.Settings
	Update(settings *domain.Settings) error
	Token() string
	Accounts() []domain.AccountRef

	ListMetrics() []domain.CustomMetric
	EnabledMetrics() []domain.CustomMetric
	CreateMetric(name, formulaText string, enabled bool) (domain.CustomMetric, error)
	UpdateMetric(id, name, formulaText string, enabled bool) (domain.CustomMetric, error)
	DeleteMetric(id string) error

	PermittedFields() []string
}

type service struct {
	cfg  *config.Config
	repo repository.SettingsRepository

	mu      sync.RWMutex
	current *domain.Settings
}

func NewService(cfg *config.Config, repo repository.SettingsRepository) Service {
	s := &service{
		cfg:     cfg,
		repo:    repo,
		current: defaultSettings(cfg),
	}

	if repo != nil {
		stored, err := repo.Load()
		if err != nil {
			logrus.Errorf("Erro ao carregar configurações do banco: %v", err)
		} else if stored != nil {
			s.current = stored
		}
	}

	return s
}

func defaultSettings(cfg *config.Config) *domain.Settings {
	settings := &domain.Settings{
		Accounts:       []string{},
		ManualAccounts: []domain.AccountRef{},
		CustomMetrics:  []domain.CustomMetric{},
	}

	for _, acc := range cfg.ConfiguredAccounts() {
		settings.Accounts = append(settings.Accounts, acc.ID)
	}

	return settings
}

func (s *service) Get() *domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

func (s *service) Update(settings *domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := settings.Clone()

	// Métricas enviadas no corpo inteiro também passam pela validação; uma
	// fórmula quebrada não entra nem por esse caminho.
	fields := s.permittedFieldsLocked()
	for _, metric := range next.CustomMetrics {
		if err := formula.Validate(metric.Formula, fields); err != nil {
			return ErrInvalidFormula
		}
	}

	if err := s.persist(next); err != nil {
		return err
	}

	s.current = next
	return nil
}

// Token retorna o token de acesso persistido nas configurações, se houver.
// A resolução completa (requisição > configurações > servidor) fica com o
// serviço de insights.
func (s *service) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Token
}

// Accounts junta as contas configuradas no servidor com as adicionadas
// manualmente pelo usuário, sem duplicar ids.
func (s *service) Accounts() []domain.AccountRef {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	out := make([]domain.AccountRef, 0)

	for _, acc := range s.cfg.ConfiguredAccounts() {
		if !seen[acc.ID] {
			seen[acc.ID] = true
			out = append(out, acc)
		}
	}
	for _, acc := range s.current.ManualAccounts {
		if !seen[acc.ID] {
			seen[acc.ID] = true
			out = append(out, acc)
		}
	}

	return out
}

func (s *service) ListMetrics() []domain.CustomMetric {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.CustomMetric(nil), s.current.CustomMetrics...)
}

func (s *service) EnabledMetrics() []domain.CustomMetric {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.CustomMetric, 0)
	for _, metric := range s.current.CustomMetrics {
		if metric.Enabled {
			out = append(out, metric)
		}
	}
	return out
}

func (s *service) CreateMetric(name, formulaText string, enabled bool) (domain.CustomMetric, error) {
	if name == "" {
		return domain.CustomMetric{}, ErrMissingName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := formula.Validate(formulaText, s.permittedFieldsLocked()); err != nil {
		logrus.Infof("Fórmula rejeitada na criação da métrica %q: %v", name, err)
		return domain.CustomMetric{}, ErrInvalidFormula
	}

	taken := make(map[string]bool, len(s.current.CustomMetrics))
	for _, metric := range s.current.CustomMetrics {
		taken[metric.ID] = true
	}

	metric := domain.CustomMetric{
		ID:      formula.UniqueID(name, taken),
		Name:    name,
		Formula: formulaText,
		Enabled: enabled,
	}

	next := s.current.Clone()
	next.CustomMetrics = append(next.CustomMetrics, metric)

	if err := s.persist(next); err != nil {
		return domain.CustomMetric{}, err
	}

	s.current = next
	return metric, nil
}

func (s *service) UpdateMetric(id, name, formulaText string, enabled bool) (domain.CustomMetric, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := formula.Validate(formulaText, s.permittedFieldsLocked()); err != nil {
		return domain.CustomMetric{}, ErrInvalidFormula
	}

	next := s.current.Clone()
	for i, metric := range next.CustomMetrics {
		if metric.ID != id {
			continue
		}

		// O id sobrevive à renomeação: âncora estável para o front end.
		metric.Name = name
		metric.Formula = formulaText
		metric.Enabled = enabled
		next.CustomMetrics[i] = metric

		if err := s.persist(next); err != nil {
			return domain.CustomMetric{}, err
		}

		s.current = next
		return metric, nil
	}

	return domain.CustomMetric{}, ErrMetricNotFound
}

func (s *service) DeleteMetric(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current.Clone()
	for i, metric := range next.CustomMetrics {
		if metric.ID != id {
			continue
		}

		next.CustomMetrics = append(next.CustomMetrics[:i], next.CustomMetrics[i+1:]...)

		if err := s.persist(next); err != nil {
			return err
		}

		s.current = next
		return nil
	}

	return ErrMetricNotFound
}

// PermittedFields é o vocabulário aceito em fórmulas: campos principais da
// linha normalizada mais todo o catálogo de campos conhecidos.
func (s *service) PermittedFields() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.permittedFieldsLocked()
}

func (s *service) permittedFieldsLocked() []string {
	core := domain.CoreRowFields()
	known := domain.KnownFields()

	seen := make(map[string]bool, len(core)+len(known))
	out := make([]string, 0, len(core)+len(known))
	for _, field := range append(core, known...) {
		if !seen[field] {
			seen[field] = true
			out = append(out, field)
		}
	}
	return out
}

func (s *service) persist(settings *domain.Settings) error {
	if s.repo == nil {
		return nil
	}
	return s.repo.Save(settings)
}
