// Package domain contém as estruturas de dados do domínio da aplicação
package domain

// VisitRecord representa uma linha bruta da base de atendimentos do SUS.
// Os atributos estáticos (população, área, alfabetização e centroide) se
// repetem em todas as linhas do mesmo município.
type VisitRecord struct {
	ID                string  `json:"id"`
	Municipality      string  `json:"municipality"`
	UF                string  `json:"uf"`
	Population        int64   `json:"population"`
	AreaKm2           float64 `json:"area_km2"`
	LiteracyRate      float64 `json:"literacy_rate"` // Fração entre 0 e 1
	CentroidLongitude float64 `json:"centroid_longitude"`
	CentroidLatitude  float64 `json:"centroid_latitude"`
	Row               int     `json:"-"` // Linha de origem (1 = primeira linha de dados)
}
