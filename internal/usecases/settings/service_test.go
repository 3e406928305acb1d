package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vfg2006/meta-ads-dashboard-api/internal/config"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/domain"
)

type fakeRepo struct {
	stored *domain.Settings
	saves  int
}

func (f *fakeRepo) Load() (*domain.Settings, error) {
	return f.stored.Clone(), nil
}

func (f *fakeRepo) Save(settings *domain.Settings) error {
	f.stored = settings.Clone()
	f.saves++
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Meta: config.Meta{
			Accounts: []string{"act_123:Loja A"},
		},
	}
}

func TestServiceDefaultsWithoutRepo(t *testing.T) {
	svc := NewService(testConfig(), nil)

	got := svc.Get()
	assert.Equal(t, []string{"act_123"}, got.Accounts)
	assert.Empty(t, got.CustomMetrics)
}

func TestServiceLoadsStoredSettings(t *testing.T) {
	repo := &fakeRepo{stored: &domain.Settings{
		Token:    "stored-token",
		Accounts: []string{"act_999"},
	}}

	svc := NewService(testConfig(), repo)
	assert.Equal(t, "stored-token", svc.Token())
	assert.Equal(t, []string{"act_999"}, svc.Get().Accounts)
}

func TestCreateMetric(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(testConfig(), repo)

	metric, err := svc.CreateMetric("ROAS Real", "value / spend", true)
	require.NoError(t, err)
	assert.Equal(t, "roas_real", metric.ID)
	assert.True(t, metric.Enabled)
	assert.Equal(t, 1, repo.saves)

	// Colisão de nome gera sufixo numérico, nunca sobrescreve.
	second, err := svc.CreateMetric("ROAS Real", "value / spend * 2", false)
	require.NoError(t, err)
	assert.Equal(t, "roas_real_2", second.ID)
}

func TestCreateMetricRejectsBrokenFormula(t *testing.T) {
	svc := NewService(testConfig(), nil)

	_, err := svc.CreateMetric("Quebrada", "spend / 0", true)
	assert.ErrorIs(t, err, ErrInvalidFormula)

	_, err = svc.CreateMetric("Quebrada", "spend +", true)
	assert.ErrorIs(t, err, ErrInvalidFormula)

	_, err = svc.CreateMetric("Quebrada", "sessions * 2", true)
	assert.ErrorIs(t, err, ErrInvalidFormula)

	assert.Empty(t, svc.ListMetrics())
}

func TestCreateMetricRequiresName(t *testing.T) {
	svc := NewService(testConfig(), nil)
	_, err := svc.CreateMetric("", "spend * 2", true)
	assert.ErrorIs(t, err, ErrMissingName)
}

func TestUpdateMetricKeepsID(t *testing.T) {
	svc := NewService(testConfig(), nil)

	metric, err := svc.CreateMetric("CPA", "spend / results", true)
	require.NoError(t, err)

	updated, err := svc.UpdateMetric(metric.ID, "CPA Ajustado", "spend / results * 1.1", false)
	require.NoError(t, err)
	assert.Equal(t, metric.ID, updated.ID)
	assert.Equal(t, "CPA Ajustado", updated.Name)
	assert.False(t, updated.Enabled)
}

func TestUpdateMetricNotFound(t *testing.T) {
	svc := NewService(testConfig(), nil)
	_, err := svc.UpdateMetric("nope", "Nome", "spend", true)
	assert.ErrorIs(t, err, ErrMetricNotFound)
}

func TestDeleteMetric(t *testing.T) {
	svc := NewService(testConfig(), nil)

	metric, err := svc.CreateMetric("CPA", "spend / results", true)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteMetric(metric.ID))
	assert.Empty(t, svc.ListMetrics())
	assert.ErrorIs(t, svc.DeleteMetric(metric.ID), ErrMetricNotFound)
}

func TestEnabledMetrics(t *testing.T) {
	svc := NewService(testConfig(), nil)

	_, err := svc.CreateMetric("Ligada", "spend * 2", true)
	require.NoError(t, err)
	_, err = svc.CreateMetric("Desligada", "spend * 3", false)
	require.NoError(t, err)

	enabled := svc.EnabledMetrics()
	require.Len(t, enabled, 1)
	assert.Equal(t, "Ligada", enabled[0].Name)
}

func TestSettingsRoundTrip(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(testConfig(), repo)

	_, err := svc.CreateMetric("ROAS Real", "value / spend", true)
	require.NoError(t, err)

	before := svc.Get()

	// Um serviço novo sobre o mesmo repositório enxerga o mesmo estado.
	again := NewService(testConfig(), repo)
	after := again.Get()

	assert.Equal(t, before.Accounts, after.Accounts)
	require.Len(t, after.CustomMetrics, 1)
	assert.Equal(t, before.CustomMetrics[0], after.CustomMetrics[0])
}

func TestGetReturnsClone(t *testing.T) {
	svc := NewService(testConfig(), nil)

	got := svc.Get()
	got.Token = "mutated"
	got.Accounts = append(got.Accounts, "act_777")

	assert.Empty(t, svc.Token())
	assert.Equal(t, []string{"act_123"}, svc.Get().Accounts)
}

func TestUpdateValidatesEmbeddedMetrics(t *testing.T) {
	svc := NewService(testConfig(), nil)

	err := svc.Update(&domain.Settings{
		CustomMetrics: []domain.CustomMetric{{ID: "x", Name: "X", Formula: "spend /"}},
	})
	assert.ErrorIs(t, err, ErrInvalidFormula)
}

func TestAccountsMergesManual(t *testing.T) {
	svc := NewService(testConfig(), nil)

	require.NoError(t, svc.Update(&domain.Settings{
		Accounts:       []string{"act_123"},
		ManualAccounts: []domain.AccountRef{{ID: "act_456", Name: "Loja B"}, {ID: "act_123", Name: "duplicada"}},
	}))

	accounts := svc.Accounts()
	require.Len(t, accounts, 2)
	assert.Equal(t, "act_123", accounts[0].ID)
	assert.Equal(t, "Loja A", accounts[0].Name)
	assert.Equal(t, "act_456", accounts[1].ID)
}
