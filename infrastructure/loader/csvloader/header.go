package csvloader

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Nomes canônicos das colunas após a normalização
const (
	ColumnID           = "ID"
	ColumnMunicipality = "MUNICIPIO"
	ColumnUF           = "UF"
	ColumnPopulation   = "POPULACAO"
	ColumnArea         = "AREA_KM2"
	ColumnLiteracy     = "TAXA_ALFABETIZACAO"
	ColumnLongitude    = "CENTROIDE_LONGITUDE"
	ColumnLatitude     = "CENTROIDE_LATITUDE"
)

// RequiredColumns são as colunas que precisam existir no arquivo. UF é opcional
// porque o estado é definido pela configuração.
var RequiredColumns = []string{
	ColumnID,
	ColumnMunicipality,
	ColumnPopulation,
	ColumnArea,
	ColumnLiteracy,
	ColumnLongitude,
	ColumnLatitude,
}

var headerAliases = map[string]string{
	"MUNICIPALITY":       ColumnMunicipality,
	"POPULATION":         ColumnPopulation,
	"AREA":               ColumnArea,
	"AREA_KM":            ColumnArea,
	"LITERACY_RATE":      ColumnLiteracy,
	"CENTROID_LONGITUDE": ColumnLongitude,
	"CENTROID_LATITUDE":  ColumnLatitude,
	"LONGITUDE":          ColumnLongitude,
	"LATITUDE":           ColumnLatitude,
}

// NormalizeHeader remove espaços e acentos, converte para maiúsculas e troca
// espaços internos por "_". "  Município " vira "MUNICIPIO".
func NormalizeHeader(name string) string {
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	folded, _, err := transform.String(folder, strings.TrimSpace(name))
	if err != nil {
		folded = strings.TrimSpace(name)
	}

	folded = strings.Join(strings.Fields(strings.ToUpper(folded)), "_")
	if canonical, ok := headerAliases[folded]; ok {
		return canonical
	}
	return folded
}

// columnIndex mapeia o nome canônico para a posição da coluna. Em caso de nomes
// repetidos após a normalização, vale a primeira ocorrência.
func columnIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		normalized := NormalizeHeader(strings.TrimPrefix(name, "\ufeff"))
		if _, exists := index[normalized]; !exists {
			index[normalized] = i
		}
	}
	return index
}
