package handler

import (
	"errors"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sus-dashboard-api/internal/usecases/aggregating"
	"github.com/vfg2006/sus-dashboard-api/internal/usecases/dashboard"
	"github.com/vfg2006/sus-dashboard-api/pkg/apiErrors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logrus.WithError(err).Error("Erro ao enviar resposta")
	}
}

// writeServiceError traduz os erros do painel para os códigos da API
func writeServiceError(w http.ResponseWriter, err error) {
	var notFound *aggregating.NotFoundError

	switch {
	case errors.As(err, &notFound):
		apiErrors.WriteError(w, apiErrors.ErrMunicipalityNotFound, "Município não encontrado", map[string]string{
			"municipio": notFound.Municipality,
		})
	case errors.Is(err, dashboard.ErrDatasetNotLoaded):
		apiErrors.WriteError(w, apiErrors.ErrDatasetNotLoaded, "Base de atendimentos ainda não carregada", nil)
	case errors.Is(err, dashboard.ErrMunicipalityRequired):
		apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Informe o município para o modo de foco", nil)
	case errors.Is(err, dashboard.ErrReloadAlreadyRunning):
		apiErrors.WriteError(w, apiErrors.ErrReloadInProgress, "Recarga da base já em andamento", nil)
	case errors.Is(err, aggregating.ErrMissingKey),
		errors.Is(err, aggregating.ErrAttributeMismatch),
		errors.Is(err, aggregating.ErrNoRecords):
		apiErrors.WriteError(w, apiErrors.ErrDatasetInvalid, err.Error(), nil)
	default:
		logrus.WithError(err).Error("Erro inesperado no painel")
		apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro interno", nil)
	}
}
