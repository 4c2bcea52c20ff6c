package main

import (
	"context"
	"database/sql"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sus-dashboard-api/infrastructure/database/postgres"
	"github.com/vfg2006/sus-dashboard-api/infrastructure/loader/csvloader"
	"github.com/vfg2006/sus-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/sus-dashboard-api/internal/config"
)

// Popula a tabela de atendimentos a partir do CSV configurado (ou do caminho passado como argumento).
// Registros com ID já existente são ignorados.
func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	logrus.Info("Iniciando script de migração...")

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.WithError(err).Fatal("ERRO ao carregar configuração")
	}

	if len(os.Args) > 1 {
		cfg.Dataset.CSVPath = os.Args[1]
	}

	ctx := context.Background()

	loader, err := csvloader.New(cfg.Dataset)
	if err != nil {
		logrus.WithError(err).Fatal("ERRO na configuração do CSV")
	}

	startTime := time.Now()
	records, err := loader.Load(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("ERRO ao ler o CSV de atendimentos")
	}
	logrus.WithFields(logrus.Fields{
		"file":    cfg.Dataset.CSVPath,
		"records": len(records),
		"elapsed": time.Since(startTime).String(),
	}).Info("CSV de atendimentos lido")

	logrus.Info("Conectando ao banco de dados...")
	conn, err := postgres.NewConnection(ctx, cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("ERRO ao conectar ao banco de dados")
	}
	defer conn.Close()
	logrus.Info("Conexão com o banco de dados estabelecida com sucesso")

	var inserted int64
	err = conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		repo := repository.NewVisitRepository(tx, cfg.Database.VisitsTable)

		if err := repo.EnsureTable(ctx); err != nil {
			return err
		}

		count, err := repo.SaveBatch(ctx, records)
		inserted = count
		return err
	})
	if err != nil {
		logrus.WithError(err).Fatal("ERRO ao gravar atendimentos, transação desfeita")
	}

	logrus.WithFields(logrus.Fields{
		"table":    cfg.Database.VisitsTable,
		"inserted": inserted,
		"ignored":  int64(len(records)) - inserted,
		"elapsed":  time.Since(startTime).String(),
	}).Info("Migração concluída")
}
