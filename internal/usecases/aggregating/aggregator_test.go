package aggregating

import (
	"errors"
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/sus-dashboard-api/internal/domain"
)

func visit(id, municipality string, population int64) domain.VisitRecord {
	return domain.VisitRecord{
		ID:                id,
		Municipality:      municipality,
		UF:                "CE",
		Population:        population,
		AreaKm2:           100.5,
		LiteracyRate:      0.8,
		CentroidLongitude: -38.5,
		CentroidLatitude:  -3.7,
	}
}

func sampleRecords() []domain.VisitRecord {
	return []domain.VisitRecord{
		visit("1", "Fortaleza", 2700000),
		visit("2", "Sobral", 210000),
		visit("3", "Fortaleza", 2700000),
		visit("4", "Crato", 133000),
		visit("5", "Sobral", 210000),
		visit("6", "Fortaleza", 2700000),
		visit("7", "Iguatu", 103000),
	}
}

func byName(aggregates []domain.MunicipalityAggregate) map[string]domain.MunicipalityAggregate {
	out := make(map[string]domain.MunicipalityAggregate, len(aggregates))
	for _, a := range aggregates {
		out[a.Municipality] = a
	}
	return out
}

func TestBuild_ConcreteScenario(t *testing.T) {
	records := []domain.VisitRecord{
		visit("1", "A", 1000),
		visit("2", "A", 1000),
		visit("3", "B", 2000),
	}

	result, err := Build(records)
	require.NoError(t, err)
	require.Len(t, result, 2)

	aggregates := byName(result)
	assert.Equal(t, 2, aggregates["A"].VisitVolume)
	assert.InDelta(t, 200.0, aggregates["A"].VisitsPer100k, 1e-9)
	assert.True(t, aggregates["A"].RateDefined)
	assert.Equal(t, 1, aggregates["B"].VisitVolume)
	assert.InDelta(t, 50.0, aggregates["B"].VisitsPer100k, 1e-9)

	top := TopByRate(result, 1)
	require.Len(t, top, 1)
	assert.Equal(t, "A", top[0].Municipality)
}

func TestBuild_CountConservation(t *testing.T) {
	records := sampleRecords()

	result, err := Build(records)
	require.NoError(t, err)

	total := 0
	for _, a := range result {
		total += a.VisitVolume
	}
	assert.Equal(t, len(records), total)
}

func TestBuild_CarriesStaticAttributes(t *testing.T) {
	record := domain.VisitRecord{
		ID:                "9",
		Municipality:      "Juazeiro do Norte",
		UF:                "CE",
		Population:        286120,
		AreaKm2:           248.8,
		LiteracyRate:      0.85,
		CentroidLongitude: -39.31,
		CentroidLatitude:  -7.21,
	}

	result, err := Build([]domain.VisitRecord{record})
	require.NoError(t, err)
	require.Len(t, result, 1)

	a := result[0]
	assert.Equal(t, record.Municipality, a.Municipality)
	assert.Equal(t, record.UF, a.UF)
	assert.Equal(t, record.Population, a.Population)
	assert.Equal(t, record.AreaKm2, a.AreaKm2)
	assert.Equal(t, record.LiteracyRate, a.LiteracyRate)
	assert.Equal(t, record.CentroidLongitude, a.CentroidLongitude)
	assert.Equal(t, record.CentroidLatitude, a.CentroidLatitude)
}

func TestBuild_RateFormula(t *testing.T) {
	result, err := Build(sampleRecords())
	require.NoError(t, err)

	for _, a := range result {
		expected := float64(a.VisitVolume) / float64(a.Population) * 100000
		assert.InDelta(t, expected, a.VisitsPer100k, 1e-9, a.Municipality)
	}
}

func TestBuild_Idempotent(t *testing.T) {
	records := sampleRecords()

	first, err := Build(records)
	require.NoError(t, err)
	second, err := Build(records)
	require.NoError(t, err)

	assert.ElementsMatch(t, first, second)
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	records := sampleRecords()
	snapshot := make([]domain.VisitRecord, len(records))
	copy(snapshot, records)

	_, err := Build(records)
	require.NoError(t, err)
	assert.Equal(t, snapshot, records)
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name    string
		records []domain.VisitRecord
		opts    []Option
		target  error
		check   func(t *testing.T, err error)
	}{
		{
			name:    "Base vazia - deve falhar",
			records: nil,
			target:  ErrNoRecords,
		},
		{
			name: "Município em branco - deve abortar a agregação",
			records: []domain.VisitRecord{
				visit("1", "Fortaleza", 1000),
				{ID: "2", Municipality: "  ", UF: "CE", Population: 1000, Row: 2},
			},
			target: ErrMissingKey,
			check: func(t *testing.T, err error) {
				var missing *MissingKeyError
				require.True(t, errors.As(err, &missing))
				assert.Equal(t, "municipality", missing.Field)
				assert.Equal(t, "2", missing.RecordID)
				assert.Equal(t, 2, missing.Row)
			},
		},
		{
			name: "UF em branco no modo composto - deve abortar",
			records: []domain.VisitRecord{
				{ID: "1", Municipality: "Crato", Population: 1000},
			},
			opts:   []Option{WithStrategy(GroupByCompoundKey)},
			target: ErrMissingKey,
		},
		{
			name: "População divergente no mesmo município - deve abortar",
			records: []domain.VisitRecord{
				visit("1", "Crato", 1000),
				visit("2", "Crato", 1001),
			},
			target: ErrAttributeMismatch,
			check: func(t *testing.T, err error) {
				var mismatch *AttributeMismatchError
				require.True(t, errors.As(err, &mismatch))
				assert.Equal(t, "population", mismatch.Field)
				assert.Equal(t, int64(1000), mismatch.Expected)
				assert.Equal(t, int64(1001), mismatch.Actual)
				assert.Equal(t, "2", mismatch.RecordID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Build(tt.records, tt.opts...)
			assert.Nil(t, result)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
			if tt.check != nil {
				tt.check(t, err)
			}
		})
	}
}

func TestBuild_CompoundKeySplitsDivergentGroups(t *testing.T) {
	records := []domain.VisitRecord{
		visit("1", "Crato", 1000),
		visit("2", "Crato", 1001),
		visit("3", "Crato", 1000),
	}

	result, err := Build(records, WithStrategy(GroupByCompoundKey))
	require.NoError(t, err)
	require.Len(t, result, 2)

	assert.Equal(t, int64(1000), result[0].Population)
	assert.Equal(t, 2, result[0].VisitVolume)
	assert.Equal(t, int64(1001), result[1].Population)
	assert.Equal(t, 1, result[1].VisitVolume)
}

func TestBuild_ZeroPopulationLeavesRateUndefined(t *testing.T) {
	records := []domain.VisitRecord{
		visit("1", "Sem População", 0),
		visit("2", "Aracati", 75000),
	}

	result, err := Build(records)
	require.NoError(t, err)

	aggregates := byName(result)
	undefined := aggregates["Sem População"]
	assert.False(t, undefined.RateDefined)
	assert.True(t, math.IsNaN(undefined.VisitsPer100k))
	assert.Equal(t, 1, undefined.VisitVolume)

	_, ok := undefined.Rate()
	assert.False(t, ok)
	assert.True(t, aggregates["Aracati"].RateDefined)
}

func TestPartition_Completeness(t *testing.T) {
	records := sampleRecords()

	groups, order, err := Partition(records)
	require.NoError(t, err)
	assert.Len(t, order, len(groups))

	ids := make([]string, 0, len(records))
	for _, key := range order {
		for _, member := range groups[key] {
			assert.Equal(t, key.Municipality, member.Municipality)
			ids = append(ids, member.ID)
		}
	}

	expected := make([]string, 0, len(records))
	for _, r := range records {
		expected = append(expected, r.ID)
	}
	sort.Strings(ids)
	sort.Strings(expected)
	assert.Equal(t, expected, ids)
}

func TestPartition_FirstSeenOrder(t *testing.T) {
	_, order, err := Partition(sampleRecords())
	require.NoError(t, err)

	names := make([]string, 0, len(order))
	for _, key := range order {
		names = append(names, key.Municipality)
	}
	assert.Equal(t, []string{"Fortaleza", "Sobral", "Crato", "Iguatu"}, names)
}

func TestParseStrategy(t *testing.T) {
	strategy, err := ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, GroupByMunicipality, strategy)

	strategy, err = ParseStrategy(" Compound ")
	require.NoError(t, err)
	assert.Equal(t, GroupByCompoundKey, strategy)
	assert.Equal(t, "compound", strategy.String())

	_, err = ParseStrategy("uf")
	assert.ErrorIs(t, err, ErrInvalidStrategy)
}
