package domain

import (
	"fmt"
	"strings"
	"time"
)

// ViewMode é o seletor de visualização consumido pela camada de apresentação
type ViewMode string

const (
	ViewModeOverview ViewMode = "overview" // Visão geral
	ViewModeFocus    ViewMode = "focus"    // Foco em um município
)

// ParseViewMode converte o parâmetro recebido em um ViewMode. Vazio significa visão geral.
func ParseViewMode(value string) (ViewMode, error) {
	switch ViewMode(strings.ToLower(strings.TrimSpace(value))) {
	case "", ViewModeOverview:
		return ViewModeOverview, nil
	case ViewModeFocus:
		return ViewModeFocus, nil
	default:
		return "", fmt.Errorf("modo de visualização inválido: %q", value)
	}
}

// SortField define a coluna usada para ordenar a tabela de municípios
type SortField string

const (
	SortByVolume SortField = "volume"
	SortByRate   SortField = "rate"
)

// ParseSortField converte o parâmetro de ordenação. Vazio significa volume.
func ParseSortField(value string) (SortField, error) {
	switch SortField(strings.ToLower(strings.TrimSpace(value))) {
	case "", SortByVolume:
		return SortByVolume, nil
	case SortByRate:
		return SortByRate, nil
	default:
		return "", fmt.Errorf("campo de ordenação inválido: %q", value)
	}
}

// ViewRequest representa a seleção feita pelo usuário no painel
type ViewRequest struct {
	Mode         ViewMode
	Municipality *string // Ausente = nenhum município em foco
}

// Dataset é um retrato imutável da base carregada e agregada
type Dataset struct {
	Version     string                  `json:"version"`
	Source      string                  `json:"source"`
	LoadedAt    time.Time               `json:"loaded_at"`
	RecordCount int                     `json:"record_count"`
	Aggregates  []MunicipalityAggregate `json:"-"`
}

// DatasetInfo é o resumo do Dataset exposto pela API
type DatasetInfo struct {
	Version            string    `json:"version"`
	Source             string    `json:"source"`
	LoadedAt           time.Time `json:"loaded_at"`
	RecordCount        int       `json:"record_count"`
	MunicipalityCount  int       `json:"municipality_count"`
	UndefinedRateCount int       `json:"undefined_rate_count"`
}

// Ranking contém os municípios com maior e menor proporção de atendimentos
type Ranking struct {
	Size   int                     `json:"size"`
	Top    []MunicipalityAggregate `json:"top"`
	Bottom []MunicipalityAggregate `json:"bottom"`
}

// FocusMetrics são os indicadores exibidos no modo de foco
type FocusMetrics struct {
	Population      int64    `json:"population"`
	AreaKm2         float64  `json:"area_km2"`
	LiteracyPercent float64  `json:"literacy_percent"`
	VisitsPer100k   *float64 `json:"visits_per_100k"`
}

// MapPoint é um ponto da camada geográfica, posicionado no centroide do município
type MapPoint struct {
	Municipality  string   `json:"municipality"`
	Longitude     float64  `json:"longitude"`
	Latitude      float64  `json:"latitude"`
	VisitVolume   int      `json:"visit_volume"`
	VisitsPer100k *float64 `json:"visits_per_100k"`
	Population    int64    `json:"population"`
}

// Bounds é a extensão (lon/lat) dos pontos do mapa
type Bounds struct {
	MinLongitude float64 `json:"min_longitude"`
	MinLatitude  float64 `json:"min_latitude"`
	MaxLongitude float64 `json:"max_longitude"`
	MaxLatitude  float64 `json:"max_latitude"`
}

type MapLayer struct {
	Points []MapPoint `json:"points"`
	Bounds *Bounds    `json:"bounds,omitempty"`
}

// DashboardView é tudo que a camada de apresentação precisa para montar a página
type DashboardView struct {
	Mode           ViewMode                `json:"mode"`
	Municipality   *string                 `json:"municipality,omitempty"`
	DatasetVersion string                  `json:"dataset_version"`
	VolumeChart    []MunicipalityAggregate `json:"volume_chart"`
	RateChart      []MunicipalityAggregate `json:"rate_chart,omitempty"`
	Metrics        *FocusMetrics           `json:"metrics,omitempty"`
	Ranking        *Ranking                `json:"ranking,omitempty"`
	Map            MapLayer                `json:"map"`
}
