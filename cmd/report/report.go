package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"github.com/vfg2006/sus-dashboard-api/infrastructure/export"
	"github.com/vfg2006/sus-dashboard-api/infrastructure/loader/csvloader"
	"github.com/vfg2006/sus-dashboard-api/internal/config"
	"github.com/vfg2006/sus-dashboard-api/internal/domain"
	"github.com/vfg2006/sus-dashboard-api/internal/usecases/aggregating"
	"github.com/vfg2006/sus-dashboard-api/internal/usecases/dashboard"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	formatTable = "table"
	formatJSON  = "json"
	formatXLSX  = "xlsx"
)

func runReport(cmd *cobra.Command, _ []string) error {
	datasetCfg := config.Dataset{
		Source:      config.SourceCSV,
		CSVPath:     reportFile,
		Delimiter:   reportDelimiter,
		Encoding:    reportEncoding,
		UF:          reportUF,
		Grouping:    reportGrouping,
		RankingSize: reportTop,
	}
	if err := (&config.Config{Dataset: datasetCfg}).Validate(); err != nil {
		return exitError(ExitInvalidArgs, err.Error())
	}

	switch reportFormat {
	case formatTable, formatJSON:
	case formatXLSX:
		if reportOutput == "" {
			return exitError(ExitInvalidArgs, "report: --output é obrigatório no formato xlsx")
		}
	default:
		return exitError(ExitInvalidArgs, fmt.Sprintf("report: formato inválido: %q", reportFormat))
	}

	mode, err := domain.ParseViewMode(reportMode)
	if err != nil {
		return exitError(ExitInvalidArgs, err.Error())
	}

	req := domain.ViewRequest{Mode: mode}
	if reportMunicipality != "" {
		municipality := reportMunicipality
		req.Municipality = &municipality
	}

	loader, err := csvloader.New(datasetCfg)
	if err != nil {
		return exitError(ExitInvalidArgs, err.Error())
	}

	service, err := dashboard.NewService(loader, datasetCfg)
	if err != nil {
		return exitError(ExitInvalidArgs, err.Error())
	}

	info, err := service.Reload(context.Background())
	if err != nil {
		return classify(err)
	}

	view, err := service.View(req)
	if err != nil {
		return classify(err)
	}

	out, closeOut, err := openOutput(cmd)
	if err != nil {
		return exitError(ExitIOError, err.Error())
	}
	defer closeOut()

	switch reportFormat {
	case formatJSON:
		err = writeJSONReport(out, info, view)
	case formatXLSX:
		err = writeXLSXReport(out, service)
	default:
		err = renderView(out, info, view)
	}
	if err != nil {
		return exitError(ExitIOError, err.Error())
	}

	return nil
}

// classify escolhe o código de saída conforme o tipo de erro da carga ou da visão
func classify(err error) error {
	switch {
	case errors.Is(err, aggregating.ErrNotFound),
		errors.Is(err, aggregating.ErrMissingKey),
		errors.Is(err, aggregating.ErrAttributeMismatch),
		errors.Is(err, aggregating.ErrNoRecords),
		errors.Is(err, dashboard.ErrMunicipalityRequired):
		return exitError(ExitDataError, err.Error())
	case errors.Is(err, csvloader.ErrMissingColumns), errors.Is(err, csvloader.ErrInvalidValue):
		return exitError(ExitDataError, err.Error())
	default:
		return exitError(ExitIOError, err.Error())
	}
}

func openOutput(cmd *cobra.Command) (io.Writer, func(), error) {
	if reportOutput == "" {
		return cmd.OutOrStdout(), func() {}, nil
	}

	file, err := os.Create(reportOutput)
	if err != nil {
		return nil, nil, fmt.Errorf("report: erro ao criar %s: %w", reportOutput, err)
	}
	return file, func() { file.Close() }, nil
}

type jsonReport struct {
	Dataset *domain.DatasetInfo   `json:"dataset"`
	View    *domain.DashboardView `json:"view"`
}

func writeJSONReport(w io.Writer, info *domain.DatasetInfo, view *domain.DashboardView) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(jsonReport{Dataset: info, View: view})
}

func writeXLSXReport(w io.Writer, service *dashboard.Service) error {
	ranking, err := service.Ranking(0)
	if err != nil {
		return err
	}

	municipalities, err := service.Municipalities(domain.SortByRate, true)
	if err != nil {
		return err
	}

	return export.WriteRankingXLSX(w, ranking, municipalities)
}
