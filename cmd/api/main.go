package main

import (
	"context"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sus-dashboard-api/infrastructure/database/postgres"
	"github.com/vfg2006/sus-dashboard-api/infrastructure/loader/csvloader"
	"github.com/vfg2006/sus-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/sus-dashboard-api/internal/api"
	"github.com/vfg2006/sus-dashboard-api/internal/config"
	"github.com/vfg2006/sus-dashboard-api/internal/scheduler"
	"github.com/vfg2006/sus-dashboard-api/internal/usecases/authenticating"
	"github.com/vfg2006/sus-dashboard-api/internal/usecases/dashboard"
)

func main() {
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source, closeSource := recordSource(ctx, cfg)
	defer closeSource()

	dashboardService, err := dashboard.NewService(source, cfg.Dataset)
	if err != nil {
		logrus.Fatal(err)
	}

	// A API sobe mesmo sem base; as rotas respondem DASH_002 até a próxima recarga
	if _, err := dashboardService.Reload(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao carregar a base de atendimentos na inicialização")
	}

	authenticator := authenticating.NewService(cfg.Auth)

	datasetReloadService := scheduler.NewDatasetReloadService(dashboardService, cfg)
	if err := datasetReloadService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de recarga da base")
	} else {
		logrus.Info("Agendador de recarga da base iniciado com sucesso")
	}

	server, err := api.New(cfg, dashboardService, authenticator, datasetReloadService)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// recordSource escolhe de onde vêm os atendimentos: arquivo CSV ou tabela no PostgreSQL
func recordSource(ctx context.Context, cfg *config.Config) (dashboard.RecordSource, func()) {
	if cfg.Dataset.Source == config.SourcePostgres {
		conn := pgconn(ctx, cfg.Database)
		return repository.NewVisitRepository(conn, cfg.Database.VisitsTable), func() { conn.Close() }
	}

	loader, err := csvloader.New(cfg.Dataset)
	if err != nil {
		logrus.WithError(err).Fatal("Configuração do CSV inválida")
	}
	return loader, func() {}
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
