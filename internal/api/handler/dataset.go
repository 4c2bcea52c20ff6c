package handler

import (
	"net/http"

	"github.com/vfg2006/sus-dashboard-api/internal/domain"
	"github.com/vfg2006/sus-dashboard-api/internal/usecases/dashboard"
	"github.com/vfg2006/sus-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/sus-dashboard-api/pkg/log"
	"github.com/vfg2006/sus-dashboard-api/pkg/middleware"
)

// DatasetReloader é o agendador de recarga visto pela API
type DatasetReloader interface {
	TriggerManualSync() bool
	GetStatus() map[string]any
}

// GetDataset retorna o resumo da base carregada
func GetDataset(service dashboard.Dashboarder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, err := service.Dataset()
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, info)
	}
}

// ReloadDataset dispara uma recarga manual em background
func ReloadDataset(reloader DatasetReloader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())
		if userClaims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims); ok {
			logger = logger.WithField("user", userClaims.UserEmail)
		}

		if !reloader.TriggerManualSync() {
			logger.Warn("Recarga manual recusada: já existe uma em andamento")
			apiErrors.WriteError(w, apiErrors.ErrReloadInProgress, "Recarga da base já em andamento", nil)
			return
		}

		logger.Info("Recarga manual da base iniciada")
		writeJSON(w, http.StatusAccepted, map[string]string{
			"message": "Recarga da base iniciada",
		})
	}
}

// GetReloadStatus retorna o status do agendador de recarga
func GetReloadStatus(reloader DatasetReloader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, reloader.GetStatus())
	}
}
