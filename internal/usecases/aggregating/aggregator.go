// Package aggregating transforma os registros brutos de atendimento no conjunto
// agregado por município consumido por todas as visões do painel.
package aggregating

import (
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sus-dashboard-api/internal/domain"
)

// Strategy define como os registros são agrupados
type Strategy int

const (
	// GroupByMunicipality agrupa pelo nome do município e exige atributos estáticos iguais
	GroupByMunicipality Strategy = iota
	// GroupByCompoundKey agrupa pela tupla completa de atributos estáticos
	GroupByCompoundKey
)

// ParseStrategy converte o valor de configuração em uma Strategy
func ParseStrategy(value string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "municipality":
		return GroupByMunicipality, nil
	case "compound":
		return GroupByCompoundKey, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidStrategy, value)
	}
}

func (s Strategy) String() string {
	if s == GroupByCompoundKey {
		return "compound"
	}
	return "municipality"
}

type options struct {
	strategy Strategy
}

type Option func(*options)

// WithStrategy altera a estratégia de agrupamento
func WithStrategy(strategy Strategy) Option {
	return func(o *options) {
		o.strategy = strategy
	}
}

// GroupKey identifica um grupo. Em GroupByMunicipality apenas Municipality é preenchido.
type GroupKey struct {
	Municipality      string
	UF                string
	Population        int64
	AreaKm2           float64
	LiteracyRate      float64
	CentroidLongitude float64
	CentroidLatitude  float64
}

// Partition distribui os registros em grupos. A ordem retornada é a de primeira aparição.
func Partition(records []domain.VisitRecord, opts ...Option) (map[GroupKey][]domain.VisitRecord, []GroupKey, error) {
	o := options{strategy: GroupByMunicipality}
	for _, opt := range opts {
		opt(&o)
	}

	if len(records) == 0 {
		return nil, nil, ErrNoRecords
	}

	groups := make(map[GroupKey][]domain.VisitRecord)
	order := make([]GroupKey, 0)

	for _, record := range records {
		if err := checkKey(record, o.strategy); err != nil {
			return nil, nil, err
		}

		key := keyFor(record, o.strategy)
		members, exists := groups[key]
		if !exists {
			order = append(order, key)
		} else if o.strategy == GroupByMunicipality {
			if err := compareStatic(members[0], record); err != nil {
				return nil, nil, err
			}
		}

		groups[key] = append(members, record)
	}

	return groups, order, nil
}

// Build agrega os registros por município, calculando volume e taxa por 100 mil habitantes.
// Qualquer erro estrutural aborta a construção inteira.
func Build(records []domain.VisitRecord, opts ...Option) ([]domain.MunicipalityAggregate, error) {
	groups, order, err := Partition(records, opts...)
	if err != nil {
		return nil, err
	}

	aggregates := make([]domain.MunicipalityAggregate, 0, len(order))
	for _, key := range order {
		members := groups[key]
		first := members[0]

		aggregate := domain.MunicipalityAggregate{
			Municipality:      first.Municipality,
			UF:                first.UF,
			Population:        first.Population,
			AreaKm2:           first.AreaKm2,
			LiteracyRate:      first.LiteracyRate,
			CentroidLongitude: first.CentroidLongitude,
			CentroidLatitude:  first.CentroidLatitude,
			VisitVolume:       len(members),
		}

		aggregate.VisitsPer100k, aggregate.RateDefined = VisitsPer100k(aggregate.VisitVolume, aggregate.Population)
		if !aggregate.RateDefined {
			logrus.WithFields(logrus.Fields{
				"municipality": aggregate.Municipality,
				"population":   aggregate.Population,
				"visit_volume": aggregate.VisitVolume,
			}).Warn("aggregating: população zero, taxa por 100 mil indefinida")
		}

		aggregates = append(aggregates, aggregate)
	}

	return aggregates, nil
}

// VisitsPer100k calcula volume / população * 100000. Retorna NaN e false quando a população não é positiva.
func VisitsPer100k(volume int, population int64) (float64, bool) {
	if population <= 0 {
		return math.NaN(), false
	}
	return float64(volume) / float64(population) * domain.RateBase, true
}

func checkKey(record domain.VisitRecord, strategy Strategy) error {
	if strings.TrimSpace(record.Municipality) == "" {
		return &MissingKeyError{Field: "municipality", RecordID: record.ID, Row: record.Row}
	}

	if strategy == GroupByCompoundKey && strings.TrimSpace(record.UF) == "" {
		return &MissingKeyError{Field: "uf", RecordID: record.ID, Row: record.Row}
	}

	return nil
}

func keyFor(record domain.VisitRecord, strategy Strategy) GroupKey {
	if strategy == GroupByMunicipality {
		return GroupKey{Municipality: record.Municipality}
	}

	return GroupKey{
		Municipality:      record.Municipality,
		UF:                record.UF,
		Population:        record.Population,
		AreaKm2:           record.AreaKm2,
		LiteracyRate:      record.LiteracyRate,
		CentroidLongitude: record.CentroidLongitude,
		CentroidLatitude:  record.CentroidLatitude,
	}
}

func compareStatic(first, record domain.VisitRecord) error {
	mismatch := func(field string, expected, actual any) error {
		return &AttributeMismatchError{
			Municipality: first.Municipality,
			Field:        field,
			Expected:     expected,
			Actual:       actual,
			RecordID:     record.ID,
			Row:          record.Row,
		}
	}

	switch {
	case first.UF != record.UF:
		return mismatch("uf", first.UF, record.UF)
	case first.Population != record.Population:
		return mismatch("population", first.Population, record.Population)
	case first.AreaKm2 != record.AreaKm2:
		return mismatch("area_km2", first.AreaKm2, record.AreaKm2)
	case first.LiteracyRate != record.LiteracyRate:
		return mismatch("literacy_rate", first.LiteracyRate, record.LiteracyRate)
	case first.CentroidLongitude != record.CentroidLongitude:
		return mismatch("centroid_longitude", first.CentroidLongitude, record.CentroidLongitude)
	case first.CentroidLatitude != record.CentroidLatitude:
		return mismatch("centroid_latitude", first.CentroidLatitude, record.CentroidLatitude)
	}

	return nil
}
