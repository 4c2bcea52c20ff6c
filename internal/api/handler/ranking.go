package handler

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sus-dashboard-api/infrastructure/export"
	"github.com/vfg2006/sus-dashboard-api/internal/domain"
	"github.com/vfg2006/sus-dashboard-api/internal/usecases/dashboard"
	"github.com/vfg2006/sus-dashboard-api/pkg/apiErrors"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// parseRankingSize lê ?n=. Ausente retorna 0, que usa o tamanho configurado.
func parseRankingSize(r *http.Request) (int, error) {
	value := r.URL.Query().Get("n")
	if value == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, dashboard.ErrInvalidRankingSize
	}
	return n, nil
}

// GetRanking retorna os municípios com maior e menor proporção de atendimentos
func GetRanking(service dashboard.Dashboarder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := parseRankingSize(r)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Parâmetro n deve ser um inteiro positivo", nil)
			return
		}

		ranking, err := service.Ranking(n)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, ranking)
	}
}

// ExportRanking gera a planilha XLSX com o ranking e a tabela de municípios
func ExportRanking(service dashboard.Dashboarder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := parseRankingSize(r)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Parâmetro n deve ser um inteiro positivo", nil)
			return
		}

		ranking, err := service.Ranking(n)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		municipalities, err := service.Municipalities(domain.SortByRate, true)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		var buf bytes.Buffer
		if err := export.WriteRankingXLSX(&buf, ranking, municipalities); err != nil {
			logrus.WithError(err).Error("Erro ao gerar planilha do ranking")
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao gerar planilha", nil)
			return
		}

		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="ranking-atendimentos.xlsx"`)
		w.WriteHeader(http.StatusOK)
		if _, err := buf.WriteTo(w); err != nil {
			logrus.WithError(err).Error("Erro ao enviar planilha do ranking")
		}
	}
}
