package aggregating

import (
	"sort"

	"github.com/vfg2006/sus-dashboard-api/internal/domain"
)

// TopByRate retorna os n municípios com maior taxa por 100 mil, em ordem decrescente
func TopByRate(aggregates []domain.MunicipalityAggregate, n int) []domain.MunicipalityAggregate {
	return head(SortedByRate(aggregates, true), n)
}

// BottomByRate retorna os n municípios com menor taxa por 100 mil, em ordem crescente
func BottomByRate(aggregates []domain.MunicipalityAggregate, n int) []domain.MunicipalityAggregate {
	return head(SortedByRate(aggregates, false), n)
}

// SortedByVolume ordena de forma estável pelo volume de atendimentos
func SortedByVolume(aggregates []domain.MunicipalityAggregate, descending bool) []domain.MunicipalityAggregate {
	sorted := clone(aggregates)
	sort.SliceStable(sorted, func(i, j int) bool {
		if descending {
			return sorted[i].VisitVolume > sorted[j].VisitVolume
		}
		return sorted[i].VisitVolume < sorted[j].VisitVolume
	})
	return sorted
}

// SortedByRate ordena de forma estável pela taxa por 100 mil.
// Taxas indefinidas ficam sempre no final, nas duas direções.
func SortedByRate(aggregates []domain.MunicipalityAggregate, descending bool) []domain.MunicipalityAggregate {
	sorted := clone(aggregates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return rateLess(sorted[i], sorted[j], descending)
	})
	return sorted
}

// Lookup busca um município pelo nome exato (diferencia maiúsculas)
func Lookup(aggregates []domain.MunicipalityAggregate, municipality string) (domain.MunicipalityAggregate, error) {
	for _, aggregate := range aggregates {
		if aggregate.Municipality == municipality {
			return aggregate, nil
		}
	}
	return domain.MunicipalityAggregate{}, &NotFoundError{Municipality: municipality}
}

func rateLess(a, b domain.MunicipalityAggregate, descending bool) bool {
	rateA, definedA := a.Rate()
	rateB, definedB := b.Rate()

	if !definedA || !definedB {
		return definedA && !definedB
	}

	if descending {
		return rateA > rateB
	}
	return rateA < rateB
}

func head(aggregates []domain.MunicipalityAggregate, n int) []domain.MunicipalityAggregate {
	if n <= 0 {
		return []domain.MunicipalityAggregate{}
	}
	if n > len(aggregates) {
		n = len(aggregates)
	}
	return aggregates[:n]
}

func clone(aggregates []domain.MunicipalityAggregate) []domain.MunicipalityAggregate {
	out := make([]domain.MunicipalityAggregate, len(aggregates))
	copy(out, aggregates)
	return out
}
