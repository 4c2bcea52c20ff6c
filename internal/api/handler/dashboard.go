package handler

import (
	"net/http"
	"strings"

	"github.com/vfg2006/sus-dashboard-api/internal/domain"
	"github.com/vfg2006/sus-dashboard-api/internal/usecases/dashboard"
	"github.com/vfg2006/sus-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/sus-dashboard-api/pkg/log"
)

// GetDashboard retorna a visão geral ou a visão de foco (?mode=focus&municipio=Sobral)
func GetDashboard(service dashboard.Dashboarder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		mode, err := domain.ParseViewMode(query.Get("mode"))
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, err.Error(), nil)
			return
		}

		req := domain.ViewRequest{Mode: mode}
		if municipality := strings.TrimSpace(query.Get("municipio")); municipality != "" {
			req.Municipality = &municipality
		}

		log.ForContext(r.Context()).WithFields(log.Fields{
			"mode":         mode,
			"municipality": query.Get("municipio"),
		}).Debug("Montando visão do painel")

		view, err := service.View(req)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, view)
	}
}
