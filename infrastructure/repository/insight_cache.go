package repository

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/vfg2006/meta-ads-dashboard-api/infrastructure/database/postgres"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/domain"
	"github.com/vfg2006/meta-ads-dashboard-api/pkg/utils"
)

const insightCacheTable = "insight_cache"

// CachedInsights é o payload de uma consulta de insights já resolvida,
// pronto para ser servido sem bater na Graph API.
type CachedInsights struct {
	Rows          []domain.FlatRow `json:"rows"`
	RemovedFields []string         `json:"removedFields,omitempty"`
	FetchedAt     time.Time        `json:"fetchedAt"`
}

type InsightCacheRepository interface {
	Get(key string, ttl time.Duration) (*CachedInsights, error)
	Put(key string, rows []domain.FlatRow, removedFields []string) error
	DeleteOlderThan(age time.Duration) (int64, error)
}

type insightCacheRepository struct {
	conn *postgres.Connection
}

func NewInsightCacheRepository(conn *postgres.Connection) InsightCacheRepository {
	return &insightCacheRepository{
		conn: conn,
	}
}

// CacheKey deriva a chave determinística de uma consulta: contas, nível,
// intervalo, breakdowns e campos, normalizados e hasheados. Campos e contas
// são ordenados para que a mesma consulta com ordem diferente reuse a entrada.
func CacheKey(req *domain.InsightsRequest) string {
	accounts := append([]string(nil), req.Accounts...)
	sort.Strings(accounts)

	fields := append([]string(nil), req.Fields...)
	sort.Strings(fields)

	breakdowns := append([]string(nil), req.Breakdowns...)
	sort.Strings(breakdowns)

	parts := []string{
		strings.Join(accounts, ","),
		req.Level,
		utils.DateRangeKey(req.Since, req.Until, req.DatePreset),
		req.TimeIncrement,
		req.ActionReportTime,
		req.ResultActionType,
		strings.Join(breakdowns, ","),
		strings.Join(fields, ","),
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// Get retorna a entrada da chave se ela existir e ainda estiver dentro do
// TTL. Entrada ausente ou vencida não é erro: retorna nil.
func (r *insightCacheRepository) Get(key string, ttl time.Duration) (*CachedInsights, error) {
	cacheSQL, cacheArgs, err := squirrel.
		Select("payload", "fetched_at").
		From(insightCacheTable).
		Where(squirrel.Eq{"cache_key": key}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	var payload []byte
	var fetchedAt time.Time
	if err := r.conn.QueryRow(cacheSQL, cacheArgs...).Scan(&payload, &fetchedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao consultar o cache: %w", err)
	}

	if ttl > 0 && time.Since(fetchedAt) > ttl {
		return nil, nil
	}

	cached := &CachedInsights{}
	if err := json.Unmarshal(payload, cached); err != nil {
		return nil, fmt.Errorf("erro ao deserializar o cache: %w", err)
	}
	cached.FetchedAt = fetchedAt

	return cached, nil
}

// Put grava ou substitui a entrada da chave com o resultado mais recente.
func (r *insightCacheRepository) Put(key string, rows []domain.FlatRow, removedFields []string) error {
	now := time.Now().UTC()

	payload, err := json.Marshal(&CachedInsights{
		Rows:          rows,
		RemovedFields: removedFields,
		FetchedAt:     now,
	})
	if err != nil {
		return fmt.Errorf("erro ao serializar o cache: %w", err)
	}

	query := squirrel.StatementBuilder.
		Insert(insightCacheTable).
		Columns("cache_key", "payload", "fetched_at").
		Values(key, payload, now).
		Suffix(`
			ON CONFLICT (cache_key) DO UPDATE SET
				payload = EXCLUDED.payload,
				fetched_at = EXCLUDED.fetched_at
		`).
		PlaceholderFormat(squirrel.Dollar)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := r.conn.Exec(sqlQuery, args...); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("database error: %w (code: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("failed to execute query: %w", err)
	}

	return nil
}

// DeleteOlderThan remove entradas mais velhas que a idade dada e retorna
// quantas caíram. Usado pelo job de sincronização para manter a tabela curta.
func (r *insightCacheRepository) DeleteOlderThan(age time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-age)

	sqlQuery, args, err := squirrel.
		Delete(insightCacheTable).
		Where(squirrel.Lt{"fetched_at": cutoff}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("erro ao construir a query: %w", err)
	}

	result, err := r.conn.Exec(sqlQuery, args...)
	if err != nil {
		return 0, fmt.Errorf("erro ao limpar o cache: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error getting rows affected: %w", err)
	}

	return deleted, nil
}
