// Package repository contém as implementações dos repositórios para acesso aos dados
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sus-dashboard-api/infrastructure/database/postgres"
	"github.com/vfg2006/sus-dashboard-api/internal/domain"
)

// Colunas da tabela de atendimentos, na ordem de leitura
var visitColumns = []string{
	"id",
	"municipio",
	"uf",
	"populacao",
	"area_km2",
	"taxa_alfabetizacao",
	"centroide_longitude",
	"centroide_latitude",
}

// Tamanho máximo de cada INSERT em lote (8 parâmetros por linha, limite de 65535 do postgres)
const insertBatchSize = 5000

type VisitRepository interface {
	Name() string
	Load(ctx context.Context) ([]domain.VisitRecord, error)
	EnsureTable(ctx context.Context) error
	SaveBatch(ctx context.Context, records []domain.VisitRecord) (int64, error)
}

type visitRepository struct {
	conn  postgres.Queryer
	table string
}

func NewVisitRepository(conn postgres.Queryer, table string) VisitRepository {
	return &visitRepository{
		conn:  conn,
		table: table,
	}
}

func (r *visitRepository) Name() string {
	return "postgres:" + r.table
}

func (r *visitRepository) loadQuery() (string, []any, error) {
	return squirrel.
		Select(visitColumns...).
		From(pq.QuoteIdentifier(r.table)).
		OrderBy("id ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
}

// Load lê todos os atendimentos da tabela configurada
func (r *visitRepository) Load(ctx context.Context) ([]domain.VisitRecord, error) {
	sqlQuery, args, err := r.loadQuery()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	records := make([]domain.VisitRecord, 0)
	for rows.Next() {
		record, err := r.scanVisit(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear atendimento: %w", err)
		}
		record.Row = len(records) + 1
		records = append(records, *record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"table":   r.table,
		"records": len(records),
	}).Info("repository: atendimentos carregados do postgres")

	return records, nil
}

// EnsureTable cria a tabela de atendimentos caso ela não exista
func (r *visitRepository) EnsureTable(ctx context.Context) error {
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id                  TEXT PRIMARY KEY,
			municipio           TEXT NOT NULL,
			uf                  TEXT NOT NULL,
			populacao           BIGINT NOT NULL DEFAULT 0,
			area_km2            DOUBLE PRECISION NOT NULL DEFAULT 0,
			taxa_alfabetizacao  DOUBLE PRECISION NOT NULL DEFAULT 0,
			centroide_longitude DOUBLE PRECISION NOT NULL DEFAULT 0,
			centroide_latitude  DOUBLE PRECISION NOT NULL DEFAULT 0
		)`, pq.QuoteIdentifier(r.table))

	if _, err := r.conn.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("erro ao criar tabela %s: %w", r.table, err)
	}
	return nil
}

func (r *visitRepository) insertQuery(records []domain.VisitRecord) (string, []any, error) {
	query := squirrel.StatementBuilder.
		Insert(pq.QuoteIdentifier(r.table)).
		Columns(visitColumns...).
		PlaceholderFormat(squirrel.Dollar)

	for _, record := range records {
		query = query.Values(
			record.ID,
			record.Municipality,
			record.UF,
			record.Population,
			record.AreaKm2,
			record.LiteracyRate,
			record.CentroidLongitude,
			record.CentroidLatitude,
		)
	}

	// IDs já importados são ignorados, o que torna a carga repetível
	return query.Suffix("ON CONFLICT (id) DO NOTHING").ToSql()
}

// SaveBatch insere os registros em lotes e retorna quantas linhas foram gravadas
func (r *visitRepository) SaveBatch(ctx context.Context, records []domain.VisitRecord) (int64, error) {
	var inserted int64

	for start := 0; start < len(records); start += insertBatchSize {
		end := min(start+insertBatchSize, len(records))

		sqlQuery, args, err := r.insertQuery(records[start:end])
		if err != nil {
			return inserted, fmt.Errorf("erro ao construir query de inserção: %w", err)
		}

		result, err := r.conn.ExecContext(ctx, sqlQuery, args...)
		if err != nil {
			return inserted, fmt.Errorf("erro ao executar query de inserção: %w", err)
		}

		if affected, err := result.RowsAffected(); err == nil {
			inserted += affected
		}
	}

	return inserted, nil
}

func (r *visitRepository) scanVisit(rows *sql.Rows) (*domain.VisitRecord, error) {
	record := &domain.VisitRecord{}

	err := rows.Scan(
		&record.ID,
		&record.Municipality,
		&record.UF,
		&record.Population,
		&record.AreaKm2,
		&record.LiteracyRate,
		&record.CentroidLongitude,
		&record.CentroidLatitude,
	)
	if err != nil {
		return nil, err
	}

	return record, nil
}
