package aggregating

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/sus-dashboard-api/internal/domain"
)

func aggregate(name string, volume int, rate float64) domain.MunicipalityAggregate {
	return domain.MunicipalityAggregate{
		Municipality:  name,
		UF:            "CE",
		Population:    100000,
		VisitVolume:   volume,
		VisitsPer100k: rate,
		RateDefined:   true,
	}
}

func undefinedRate(name string, volume int) domain.MunicipalityAggregate {
	return domain.MunicipalityAggregate{
		Municipality:  name,
		UF:            "CE",
		VisitVolume:   volume,
		VisitsPer100k: math.NaN(),
	}
}

func names(aggregates []domain.MunicipalityAggregate) []string {
	out := make([]string, 0, len(aggregates))
	for _, a := range aggregates {
		out = append(out, a.Municipality)
	}
	return out
}

func rankingFixture() []domain.MunicipalityAggregate {
	return []domain.MunicipalityAggregate{
		aggregate("Fortaleza", 900, 33.3),
		aggregate("Sobral", 40, 19.0),
		aggregate("Crato", 70, 52.6),
		undefinedRate("Vazio", 3),
		aggregate("Iguatu", 20, 19.0),
		aggregate("Quixadá", 90, 100.0),
		aggregate("Aracati", 5, 6.6),
		aggregate("Tauá", 12, 20.1),
	}
}

func TestTopByRate(t *testing.T) {
	tests := []struct {
		name     string
		input    []domain.MunicipalityAggregate
		n        int
		expected []string
	}{
		{
			name:     "Top 5 - maiores taxas em ordem decrescente",
			input:    rankingFixture(),
			n:        5,
			expected: []string{"Quixadá", "Crato", "Fortaleza", "Tauá", "Sobral"},
		},
		{
			name:     "Empate - mantém a ordem original",
			input:    rankingFixture(),
			n:        6,
			expected: []string{"Quixadá", "Crato", "Fortaleza", "Tauá", "Sobral", "Iguatu"},
		},
		{
			name:     "Menos linhas que n - retorna todas",
			input:    rankingFixture()[:3],
			n:        5,
			expected: []string{"Crato", "Fortaleza", "Sobral"},
		},
		{
			name:     "Taxa indefinida - fica por último",
			input:    rankingFixture(),
			n:        10,
			expected: []string{"Quixadá", "Crato", "Fortaleza", "Tauá", "Sobral", "Iguatu", "Aracati", "Vazio"},
		},
		{
			name:     "n zero - retorna vazio",
			input:    rankingFixture(),
			n:        0,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, names(TopByRate(tt.input, tt.n)))
		})
	}
}

func TestBottomByRate(t *testing.T) {
	tests := []struct {
		name     string
		input    []domain.MunicipalityAggregate
		n        int
		expected []string
	}{
		{
			name:     "Bottom 5 - menores taxas em ordem crescente",
			input:    rankingFixture(),
			n:        5,
			expected: []string{"Aracati", "Sobral", "Iguatu", "Tauá", "Fortaleza"},
		},
		{
			name:     "Taxa indefinida - fica por último mesmo em ordem crescente",
			input:    rankingFixture(),
			n:        8,
			expected: []string{"Aracati", "Sobral", "Iguatu", "Tauá", "Fortaleza", "Crato", "Quixadá", "Vazio"},
		},
		{
			name:     "Entrada vazia - retorna vazio",
			input:    nil,
			n:        5,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, names(BottomByRate(tt.input, tt.n)))
		})
	}
}

func TestSortedByVolume_Stable(t *testing.T) {
	input := []domain.MunicipalityAggregate{
		aggregate("A", 10, 1),
		aggregate("B", 30, 1),
		aggregate("C", 10, 1),
		aggregate("D", 30, 1),
		aggregate("E", 20, 1),
	}

	assert.Equal(t, []string{"B", "D", "E", "A", "C"}, names(SortedByVolume(input, true)))
	assert.Equal(t, []string{"A", "C", "E", "B", "D"}, names(SortedByVolume(input, false)))
}

func TestSortedByRate_DoesNotMutateInput(t *testing.T) {
	input := rankingFixture()
	before := names(input)

	sorted := SortedByRate(input, true)
	require.Len(t, sorted, len(input))
	assert.Equal(t, before, names(input))

	sorted[0].Municipality = "alterado"
	assert.Equal(t, before, names(input))
}

func TestLookup(t *testing.T) {
	aggregates := rankingFixture()

	found, err := Lookup(aggregates, "Fortaleza")
	require.NoError(t, err)
	assert.Equal(t, "Fortaleza", found.Municipality)
	assert.Equal(t, 900, found.VisitVolume)

	_, err = Lookup(aggregates, "fortaleza")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = Lookup(aggregates, "Nonexistent")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Nonexistent", notFound.Municipality)
}
