package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/domain"
)

type Config struct {
	App         App         `mapstructure:",squash"`
	Server      Server      `mapstructure:",squash"`
	Database    Database    `mapstructure:",squash"`
	Meta        Meta        `mapstructure:",squash"`
	Auth        Auth        `mapstructure:",squash"`
	InsightSync InsightSync `mapstructure:",squash"`
	Cache       Cache       `mapstructure:",squash"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
	Enabled  bool   `mapstructure:"database_enabled"`
}

type Meta struct {
	BaseURL              string   `mapstructure:"meta_base_url"`
	URL                  string   `mapstructure:"-"`
	Version              string   `mapstructure:"meta_version"`
	AccessToken          string   `mapstructure:"meta_access_token"`
	DefaultLevel         string   `mapstructure:"meta_default_level"`
	DefaultTimeIncrement string   `mapstructure:"meta_default_time_increment"`
	DefaultFields        []string `mapstructure:"meta_default_fields"`
	Accounts             []string `mapstructure:"meta_accounts"`
	ResultActionType     string   `mapstructure:"meta_result_action_type"`
}

type Auth struct {
	Secret            string `mapstructure:"auth_secret"`
	AdminUser         string `mapstructure:"auth_admin_user"`
	AdminPasswordHash string `mapstructure:"auth_admin_password_hash"`
	TokenTTLHours     int    `mapstructure:"auth_token_ttl_hours"`
}

type InsightSync struct {
	CronSchedule string `mapstructure:"insight_sync_cron"`
	LookbackDays int    `mapstructure:"insight_sync_lookback_days"`
	Enabled      bool   `mapstructure:"insight_sync_enabled"`
}

type Cache struct {
	TTLMinutes    int `mapstructure:"cache_ttl_minutes"`
	RetentionDays int `mapstructure:"cache_retention_days"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/meta_ads")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")
	viper.SetDefault("DATABASE_ENABLED", true)

	viper.SetDefault("META_BASE_URL", "https://graph.facebook.com")
	viper.SetDefault("META_VERSION", "v22.0")
	viper.SetDefault("META_ACCESS_TOKEN", "") // ONLY LOCAL
	viper.SetDefault("META_DEFAULT_LEVEL", "campaign")
	viper.SetDefault("META_DEFAULT_TIME_INCREMENT", "all_days")
	viper.SetDefault("META_DEFAULT_FIELDS", strings.Join(defaultInsightFields, ","))
	viper.SetDefault("META_ACCOUNTS", "")
	viper.SetDefault("META_RESULT_ACTION_TYPE", domain.DefaultResultActionType)

	viper.SetDefault("AUTH_SECRET", "")
	viper.SetDefault("AUTH_ADMIN_USER", "admin")
	viper.SetDefault("AUTH_ADMIN_PASSWORD_HASH", "")
	viper.SetDefault("AUTH_TOKEN_TTL_HOURS", 12)

	// Defaults para o aquecimento de cache de insights
	viper.SetDefault("INSIGHT_SYNC_CRON", "0 3 * * *") // Todos os dias às 3h da manhã
	viper.SetDefault("INSIGHT_SYNC_LOOKBACK_DAYS", 30)
	viper.SetDefault("INSIGHT_SYNC_ENABLED", false)

	viper.SetDefault("CACHE_TTL_MINUTES", 60)
	viper.SetDefault("CACHE_RETENTION_DAYS", 90)

	viper.SetDefault("LOG_LEVEL", "debug")
}

// defaultInsightFields é o conjunto inicial de campos solicitados ao Graph
// API quando a requisição não informa outro.
var defaultInsightFields = []string{
	"account_name",
	"campaign_id",
	"campaign_name",
	"adset_id",
	"adset_name",
	"ad_id",
	"ad_name",
	"impressions",
	"reach",
	"frequency",
	"clicks",
	"ctr",
	"cpc",
	"cpm",
	"spend",
	"actions",
	"action_values",
	"purchase_roas",
	"outbound_clicks",
	"outbound_clicks_ctr",
	"date_start",
	"date_stop",
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.Meta.URL = fmt.Sprintf("%s/%s", config.Meta.BaseURL, config.Meta.Version)

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
}

// ConfiguredAccounts interpreta META_ACCOUNTS ("act_123:Loja A,act_456:Loja B")
// como a lista de contas padrão exposta em /api/config. Entradas sem nome
// usam o próprio id.
func (c *Config) ConfiguredAccounts() []domain.AccountRef {
	accounts := make([]domain.AccountRef, 0, len(c.Meta.Accounts))
	for _, entry := range c.Meta.Accounts {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		id, name, found := strings.Cut(entry, ":")
		id = strings.TrimSpace(id)
		if !domain.AccountIDPattern.MatchString(id) {
			logrus.WithField("account", entry).Warn("Conta configurada com id inválido, ignorando")
			continue
		}

		if !found || strings.TrimSpace(name) == "" {
			name = id
		}
		accounts = append(accounts, domain.AccountRef{ID: id, Name: strings.TrimSpace(name)})
	}
	return accounts
}

// AuthEnabled responde se o serviço exige autenticação: sem segredo
// configurado o painel roda aberto (modo de desenvolvimento).
func (c *Config) AuthEnabled() bool {
	return c.Auth.Secret != ""
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	// Tentar várias localizações possíveis para o arquivo .env
	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../.env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		err := godotenv.Load(location)
		if err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Warn("Não foi possível carregar o arquivo .env de nenhuma localização conhecida")
}
