package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	jsoniter "github.com/json-iterator/go"
	"github.com/lib/pq"
	"github.com/vfg2006/meta-ads-dashboard-api/infrastructure/database/postgres"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	settingsTable = "dashboard_settings"

	// settingsKey é a chave única: as configurações do dashboard vivem em uma
	// única linha chave-valor, serializada como JSON.
	settingsKey = "dashboard_settings"
)

type SettingsRepository interface {
	Load() (*domain.Settings, error)
	Save(settings *domain.Settings) error
}

type settingsRepository struct {
	conn *postgres.Connection
}

func NewSettingsRepository(conn *postgres.Connection) SettingsRepository {
	return &settingsRepository{
		conn: conn,
	}
}

// Load recupera as configurações persistidas. Ausência de linha não é erro:
// retorna nil para o chamador aplicar os defaults.
func (s *settingsRepository) Load() (*domain.Settings, error) {
	settingsSQL, settingsArgs, err := squirrel.
		Select("value").
		From(settingsTable).
		Where(squirrel.Eq{"key": settingsKey}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	var payload []byte
	if err := s.conn.QueryRow(settingsSQL, settingsArgs...).Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao consultar configurações: %w", err)
	}

	settings := &domain.Settings{}
	if err := json.Unmarshal(payload, settings); err != nil {
		return nil, fmt.Errorf("erro ao deserializar configurações: %w", err)
	}

	return settings, nil
}

// Save grava as configurações inteiras por cima das anteriores (upsert).
func (s *settingsRepository) Save(settings *domain.Settings) error {
	payload, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("erro ao serializar configurações: %w", err)
	}

	query := squirrel.StatementBuilder.
		Insert(settingsTable).
		Columns("key", "value", "updated_at").
		Values(settingsKey, payload, time.Now().UTC()).
		Suffix(`
			ON CONFLICT (key) DO UPDATE SET
				value = EXCLUDED.value,
				updated_at = EXCLUDED.updated_at
		`).
		PlaceholderFormat(squirrel.Dollar)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := s.conn.Exec(sqlQuery, args...); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("database error: %w (code: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("failed to execute query: %w", err)
	}

	return nil
}
