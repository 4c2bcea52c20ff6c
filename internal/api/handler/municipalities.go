package handler

import (
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/vfg2006/sus-dashboard-api/internal/domain"
	"github.com/vfg2006/sus-dashboard-api/internal/usecases/dashboard"
	"github.com/vfg2006/sus-dashboard-api/pkg/apiErrors"
)

// ListMunicipalities retorna a tabela completa (?sort=volume|rate&order=asc|desc)
func ListMunicipalities(service dashboard.Dashboarder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		field, err := domain.ParseSortField(query.Get("sort"))
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, err.Error(), nil)
			return
		}

		var descending bool
		switch strings.ToLower(query.Get("order")) {
		case "", "desc":
			descending = true
		case "asc":
			descending = false
		default:
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Ordem inválida, use asc ou desc", nil)
			return
		}

		municipalities, err := service.Municipalities(field, descending)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, municipalities)
	}
}

// ListMunicipalityNames retorna os nomes para o seletor do modo de foco
func ListMunicipalityNames(service dashboard.Dashboarder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names, err := service.MunicipalityNames()
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, names)
	}
}

func GetMunicipality(service dashboard.Dashboarder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := httprouter.ParamsFromContext(r.Context()).ByName("name")
		if name == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Município não informado", nil)
			return
		}

		municipality, err := service.Lookup(name)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, municipality)
	}
}
