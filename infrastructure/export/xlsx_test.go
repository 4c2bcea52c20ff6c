package export

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/sus-dashboard-api/internal/domain"
	"github.com/xuri/excelize/v2"
)

func aggregate(name string, volume int, population int64, rate float64, defined bool) domain.MunicipalityAggregate {
	if !defined {
		rate = math.NaN()
	}
	return domain.MunicipalityAggregate{
		Municipality:  name,
		UF:            "CE",
		Population:    population,
		AreaKm2:       100,
		LiteracyRate:  0.5,
		VisitVolume:   volume,
		VisitsPer100k: rate,
		RateDefined:   defined,
	}
}

func TestWriteRankingXLSX(t *testing.T) {
	sobral := aggregate("Sobral", 2, 200000, 1, true)
	fortaleza := aggregate("Fortaleza", 3, 2000000, 0.15, true)
	crato := aggregate("Crato", 1, 0, 0, false)

	ranking := &domain.Ranking{
		Size:   1,
		Top:    []domain.MunicipalityAggregate{sobral},
		Bottom: []domain.MunicipalityAggregate{fortaleza},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRankingXLSX(&buf, ranking, []domain.MunicipalityAggregate{fortaleza, sobral, crato}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{RankingSheet, MunicipalitiesSheet}, f.GetSheetList())

	rankingRows, err := f.GetRows(RankingSheet)
	require.NoError(t, err)
	require.Len(t, rankingRows, 3)
	assert.Equal(t, rankingHeader, rankingRows[0])
	assert.Equal(t, []string{"Maiores taxas", "1", "Sobral", "2", "200000", "1"}, rankingRows[1])
	assert.Equal(t, []string{"Menores taxas", "1", "Fortaleza", "3", "2000000", "0.15"}, rankingRows[2])

	municipalityRows, err := f.GetRows(MunicipalitiesSheet)
	require.NoError(t, err)
	require.Len(t, municipalityRows, 4)
	assert.Equal(t, municipalitiesHeader, municipalityRows[0])
	assert.Equal(t, "Fortaleza", municipalityRows[1][0])
	assert.Equal(t, "50", municipalityRows[1][4])
	assert.Equal(t, "Crato", municipalityRows[3][0])
	assert.Len(t, municipalityRows[3], 8, "taxa indefinida deixa a última célula vazia")
}

func TestWriteRankingXLSX_EmptyRanking(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRankingXLSX(&buf, nil, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(RankingSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
