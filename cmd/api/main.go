package main

import (
	"context"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/meta-ads-dashboard-api/infrastructure/database/postgres"
	"github.com/vfg2006/meta-ads-dashboard-api/infrastructure/integrator/meta"
	"github.com/vfg2006/meta-ads-dashboard-api/infrastructure/integrator/meta/metaclient"
	"github.com/vfg2006/meta-ads-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/api"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/config"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/scheduler"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/usecases/authenticating"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/usecases/insighting"
	"github.com/vfg2006/meta-ads-dashboard-api/internal/usecases/settings"
)

func main() {
	// Inicializa configuração de logs
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	// Define o nível de log com base na configuração
	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Sem banco configurado o painel roda só em memória: configurações não
	// sobrevivem a reinícios e o cache de insights fica desligado.
	var settingsRepo repository.SettingsRepository
	var cacheRepo repository.InsightCacheRepository
	if cfg.Database.Enabled {
		pgConn := pgconn(ctx, cfg.Database)
		defer pgConn.Close()

		settingsRepo = repository.NewSettingsRepository(pgConn)
		cacheRepo = repository.NewInsightCacheRepository(pgConn)
	} else {
		logrus.Info("Banco de dados desabilitado, operando somente em memória")
	}

	authenticator := authenticating.NewService(cfg)
	settingsService := settings.NewService(cfg, settingsRepo)

	metaClient := metaclient.NewClient(cfg)
	metaIntegrator := meta.New(cfg, metaClient)

	var insightService insighting.Insighter
	if cacheRepo != nil {
		insightService = insighting.NewServiceWithCache(cfg, metaIntegrator, settingsService, cacheRepo)
	} else {
		insightService = insighting.NewService(cfg, metaIntegrator, settingsService)
	}

	syncService := scheduler.NewInsightSyncService(cfg, insightService, settingsService, cacheRepo)
	if err := syncService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de sincronização de insights")
	} else {
		logrus.Info("Agendador de sincronização de insights iniciado com sucesso")
	}

	server, err := api.New(
		cfg,
		insightService,
		settingsService,
		authenticator,
		syncService,
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	os.Chdir(dir)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	err = conn.Ping(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}
