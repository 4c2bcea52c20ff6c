// Package export gera a planilha do ranking de atendimentos por município
package export

import (
	"io"

	"github.com/pkg/errors"
	"github.com/vfg2006/sus-dashboard-api/internal/domain"
	"github.com/vfg2006/sus-dashboard-api/pkg/utils"
	"github.com/xuri/excelize/v2"
)

const (
	RankingSheet        = "Ranking"
	MunicipalitiesSheet = "Municipios"
)

var (
	rankingHeader = []string{"Grupo", "Posição", "Município", "Atendimentos", "População", "Atendimentos por 100 mil hab."}

	municipalitiesHeader = []string{
		"Município", "UF", "População", "Área (km²)", "Alfabetização (%)",
		"Longitude", "Latitude", "Atendimentos", "Atendimentos por 100 mil hab.",
	}
)

// WriteRankingXLSX escreve a planilha com o ranking (maiores e menores taxas) e a tabela completa de municípios.
// Taxas indefinidas ficam com a célula vazia.
func WriteRankingXLSX(w io.Writer, ranking *domain.Ranking, aggregates []domain.MunicipalityAggregate) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", RankingSheet); err != nil {
		return errors.Wrap(err, "export: erro ao renomear aba do ranking")
	}

	if err := writeHeader(f, RankingSheet, rankingHeader); err != nil {
		return err
	}

	row := 2
	if ranking != nil {
		for _, group := range []struct {
			label string
			items []domain.MunicipalityAggregate
		}{
			{label: "Maiores taxas", items: ranking.Top},
			{label: "Menores taxas", items: ranking.Bottom},
		} {
			for i, aggregate := range group.items {
				values := []any{group.label, i + 1, aggregate.Municipality, aggregate.VisitVolume, aggregate.Population, rateCell(aggregate)}
				if err := writeRow(f, RankingSheet, row, values); err != nil {
					return err
				}
				row++
			}
		}
	}

	if _, err := f.NewSheet(MunicipalitiesSheet); err != nil {
		return errors.Wrap(err, "export: erro ao criar aba de municípios")
	}

	if err := writeHeader(f, MunicipalitiesSheet, municipalitiesHeader); err != nil {
		return err
	}

	for i, aggregate := range aggregates {
		values := []any{
			aggregate.Municipality,
			aggregate.UF,
			aggregate.Population,
			aggregate.AreaKm2,
			utils.RoundWithTwoDecimalPlace(aggregate.LiteracyPercent()),
			aggregate.CentroidLongitude,
			aggregate.CentroidLatitude,
			aggregate.VisitVolume,
			rateCell(aggregate),
		}
		if err := writeRow(f, MunicipalitiesSheet, i+2, values); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "export: erro ao escrever planilha")
	}

	return nil
}

func rateCell(aggregate domain.MunicipalityAggregate) any {
	rate, ok := aggregate.Rate()
	if !ok {
		return nil
	}
	return utils.RoundWithTwoDecimalPlace(rate)
}

func writeHeader(f *excelize.File, sheet string, header []string) error {
	for i, title := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return errors.Wrap(err, "export: coordenada inválida")
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return errors.Wrapf(err, "export: erro ao escrever cabeçalho %s", cell)
		}

		column, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return errors.Wrap(err, "export: coluna inválida")
		}
		if err := f.SetColWidth(sheet, column, column, 20); err != nil {
			return errors.Wrapf(err, "export: erro ao ajustar coluna %s", column)
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for i, value := range values {
		if value == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return errors.Wrap(err, "export: coordenada inválida")
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return errors.Wrapf(err, "export: erro ao escrever célula %s", cell)
		}
	}
	return nil
}
