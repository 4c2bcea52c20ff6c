// Package csvloader lê a base de atendimentos a partir de um arquivo CSV
package csvloader

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sus-dashboard-api/internal/config"
	"github.com/vfg2006/sus-dashboard-api/internal/domain"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Marcadores de célula ausente, tratados como vazios
var missingMarkers = map[string]bool{"NA": true, "NaN": true, "<nil>": true}

type Loader struct {
	Path      string
	Delimiter rune
	Encoding  string
	UF        string // Quando preenchido, substitui a UF de todas as linhas
}

// New cria um Loader a partir da configuração do dataset
func New(cfg config.Dataset) (*Loader, error) {
	delimiter, err := cfg.DelimiterRune()
	if err != nil {
		return nil, err
	}

	return &Loader{
		Path:      cfg.CSVPath,
		Delimiter: delimiter,
		Encoding:  strings.ToLower(cfg.Encoding),
		UF:        cfg.UF,
	}, nil
}

func (l *Loader) Name() string {
	return "csv:" + filepath.Base(l.Path)
}

// Load abre o arquivo configurado e converte suas linhas em registros
func (l *Loader) Load(ctx context.Context) ([]domain.VisitRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(l.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "csvloader: erro ao abrir %s", l.Path)
	}
	defer file.Close()

	records, err := l.Read(file)
	if err != nil {
		return nil, errors.Wrapf(err, "csvloader: erro ao ler %s", l.Path)
	}

	logrus.WithFields(logrus.Fields{
		"path":    l.Path,
		"records": len(records),
	}).Info("csvloader: arquivo de atendimentos carregado")

	return records, nil
}

// Read converte o conteúdo CSV em registros. Não altera nenhum estado compartilhado.
func (l *Loader) Read(r io.Reader) ([]domain.VisitRecord, error) {
	delimiter := l.Delimiter
	if delimiter == 0 {
		delimiter = ','
	}

	// Sem cabeçalho o gota preserva a primeira linha como dado, sem renomear
	// colunas repetidas, e aceita arquivos que só têm o cabeçalho
	df := dataframe.ReadCSV(l.decode(r),
		dataframe.HasHeader(false),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.WithDelimiter(delimiter),
	)
	if df.Err != nil {
		return nil, errors.Wrap(df.Err, "csvloader: erro ao interpretar CSV")
	}

	// A primeira linha de Records traz os nomes gerados pelo gota (X0, X1...)
	rows := df.Records()
	if len(rows) < 2 {
		return nil, &MissingColumnError{Columns: RequiredColumns}
	}

	index := columnIndex(rows[1])
	if missing := missingColumns(index); len(missing) > 0 {
		return nil, &MissingColumnError{Columns: missing}
	}

	records := make([]domain.VisitRecord, 0, len(rows)-2)
	for i, row := range rows[2:] {
		record, err := l.parseRow(row, index, i+1)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}

func (l *Loader) decode(r io.Reader) io.Reader {
	switch l.Encoding {
	case config.EncodingLatin1, config.EncodingISO88591:
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	case config.EncodingWindows1252, config.EncodingCP1252:
		return transform.NewReader(r, charmap.Windows1252.NewDecoder())
	default:
		// Remove o BOM que planilhas costumam gravar no início do arquivo
		return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	}
}

func (l *Loader) parseRow(row []string, index map[string]int, rowNumber int) (domain.VisitRecord, error) {
	cell := func(column string) string {
		i, ok := index[column]
		if !ok || i >= len(row) {
			return ""
		}
		value := strings.TrimSpace(row[i])
		if missingMarkers[value] {
			return ""
		}
		return value
	}

	record := domain.VisitRecord{
		ID:           cell(ColumnID),
		Municipality: cell(ColumnMunicipality),
		UF:           cell(ColumnUF),
		Row:          rowNumber,
	}
	if l.UF != "" {
		record.UF = l.UF
	}

	var err error
	if record.Population, err = parseInt(cell(ColumnPopulation)); err != nil {
		return record, &ParseError{Row: rowNumber, Column: ColumnPopulation, Value: cell(ColumnPopulation), Err: err}
	}

	floats := []struct {
		column string
		target *float64
	}{
		{ColumnArea, &record.AreaKm2},
		{ColumnLiteracy, &record.LiteracyRate},
		{ColumnLongitude, &record.CentroidLongitude},
		{ColumnLatitude, &record.CentroidLatitude},
	}
	for _, f := range floats {
		value, err := parseFloat(cell(f.column))
		if err != nil {
			return record, &ParseError{Row: rowNumber, Column: f.column, Value: cell(f.column), Err: err}
		}
		*f.target = value
	}

	return record, nil
}

func missingColumns(index map[string]int) []string {
	missing := make([]string, 0)
	for _, column := range RequiredColumns {
		if _, ok := index[column]; !ok {
			missing = append(missing, column)
		}
	}
	return missing
}

// parseFloat aceita "." ou "," como separador decimal. Vazio vale zero.
func parseFloat(raw string) (float64, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, nil
	}

	if strings.Contains(value, ",") {
		value = strings.ReplaceAll(value, ".", "")
		value = strings.Replace(value, ",", ".", 1)
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("valor não finito")
	}
	return f, nil
}

// parseInt aceita inteiros e números com parte decimal nula ("1000.0"). Vazio vale zero.
func parseInt(raw string) (int64, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, nil
	}

	if i, err := strconv.ParseInt(value, 10, 64); err == nil {
		return i, nil
	}

	f, err := parseFloat(value)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("valor não inteiro")
	}
	return int64(f), nil
}
