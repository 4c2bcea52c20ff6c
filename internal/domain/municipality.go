package domain

import (
	"math"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RateBase é a base populacional usada na taxa de atendimentos
const RateBase = 100000

// MunicipalityAggregate é a linha de resumo de um município
type MunicipalityAggregate struct {
	Municipality      string
	UF                string
	Population        int64
	AreaKm2           float64
	LiteracyRate      float64
	CentroidLongitude float64
	CentroidLatitude  float64
	VisitVolume       int
	// VisitsPer100k é NaN quando RateDefined é falso (população zero)
	VisitsPer100k float64
	RateDefined   bool
}

// Rate retorna a taxa por 100 mil habitantes e se ela está definida
func (a MunicipalityAggregate) Rate() (float64, bool) {
	if !a.RateDefined || math.IsNaN(a.VisitsPer100k) {
		return 0, false
	}
	return a.VisitsPer100k, true
}

// LiteracyPercent retorna a taxa de alfabetização em porcentagem
func (a MunicipalityAggregate) LiteracyPercent() float64 {
	return a.LiteracyRate * 100
}

type municipalityAggregateJSON struct {
	Municipality      string   `json:"municipality"`
	UF                string   `json:"uf"`
	Population        int64    `json:"population"`
	AreaKm2           float64  `json:"area_km2"`
	LiteracyRate      float64  `json:"literacy_rate"`
	CentroidLongitude float64  `json:"centroid_longitude"`
	CentroidLatitude  float64  `json:"centroid_latitude"`
	VisitVolume       int      `json:"visit_volume"`
	VisitsPer100k     *float64 `json:"visits_per_100k"`
}

// MarshalJSON serializa a taxa indefinida como null, já que NaN não é JSON válido
func (a MunicipalityAggregate) MarshalJSON() ([]byte, error) {
	out := municipalityAggregateJSON{
		Municipality:      a.Municipality,
		UF:                a.UF,
		Population:        a.Population,
		AreaKm2:           a.AreaKm2,
		LiteracyRate:      a.LiteracyRate,
		CentroidLongitude: a.CentroidLongitude,
		CentroidLatitude:  a.CentroidLatitude,
		VisitVolume:       a.VisitVolume,
	}
	if rate, ok := a.Rate(); ok {
		out.VisitsPer100k = &rate
	}
	return json.Marshal(out)
}

// UnmarshalJSON é o inverso de MarshalJSON
func (a *MunicipalityAggregate) UnmarshalJSON(data []byte) error {
	var in municipalityAggregateJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	*a = MunicipalityAggregate{
		Municipality:      in.Municipality,
		UF:                in.UF,
		Population:        in.Population,
		AreaKm2:           in.AreaKm2,
		LiteracyRate:      in.LiteracyRate,
		CentroidLongitude: in.CentroidLongitude,
		CentroidLatitude:  in.CentroidLatitude,
		VisitVolume:       in.VisitVolume,
		VisitsPer100k:     math.NaN(),
	}
	if in.VisitsPer100k != nil {
		a.VisitsPer100k = *in.VisitsPer100k
		a.RateDefined = true
	}
	return nil
}
