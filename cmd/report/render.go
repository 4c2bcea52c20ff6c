package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/vfg2006/sus-dashboard-api/internal/domain"
)

const (
	undefinedRate  = "n/d"
	rateChartTitle = "Taxa de atendimentos por 100 mil hab."
)

func formatRate(aggregate domain.MunicipalityAggregate) string {
	rate, ok := aggregate.Rate()
	if !ok {
		return undefinedRate
	}
	return fmt.Sprintf("%.2f", rate)
}

// renderView imprime a visão no terminal em tabelas alinhadas
func renderView(w io.Writer, info *domain.DatasetInfo, view *domain.DashboardView) error {
	bold := color.New(color.Bold)
	dim := color.New(color.Faint)

	_, _ = fmt.Fprintf(w, "%s %s  %s\n",
		bold.Sprint("Base:"), info.Source,
		dim.Sprintf("(%d registros, %d municípios, versão %s)", info.RecordCount, info.MunicipalityCount, info.Version))
	if info.UndefinedRateCount > 0 {
		_, _ = fmt.Fprintln(w, color.New(color.FgYellow).Sprintf("%d município(s) sem população: taxa indefinida", info.UndefinedRateCount))
	}

	if view.Mode == domain.ViewModeFocus {
		return renderFocus(w, view)
	}

	_, _ = fmt.Fprintf(w, "\n%s\n", bold.Sprint("Atendimentos por município"))
	if err := renderTable(w, view.VolumeChart); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "\n%s\n", bold.Sprint(rateChartTitle))
	if err := renderTable(w, view.RateChart); err != nil {
		return err
	}

	if view.Ranking != nil {
		_, _ = fmt.Fprintf(w, "\n%s\n", color.New(color.Bold, color.FgGreen).Sprintf("Maiores taxas por 100 mil hab. (top %d)", view.Ranking.Size))
		if err := renderTable(w, view.Ranking.Top); err != nil {
			return err
		}

		_, _ = fmt.Fprintf(w, "\n%s\n", color.New(color.Bold, color.FgRed).Sprintf("Menores taxas por 100 mil hab. (bottom %d)", view.Ranking.Size))
		if err := renderTable(w, view.Ranking.Bottom); err != nil {
			return err
		}
	}

	return nil
}

func renderTable(w io.Writer, aggregates []domain.MunicipalityAggregate) error {
	bold := color.New(color.Bold)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(tw, bold.Sprint("#")+"\t"+bold.Sprint("MUNICÍPIO")+"\t"+bold.Sprint("ATENDIMENTOS")+"\t"+bold.Sprint("POPULAÇÃO")+"\t"+bold.Sprint("POR 100 MIL"))
	for i, aggregate := range aggregates {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\n", i+1, aggregate.Municipality, aggregate.VisitVolume, aggregate.Population, formatRate(aggregate))
	}

	return tw.Flush()
}

func renderFocus(w io.Writer, view *domain.DashboardView) error {
	if len(view.VolumeChart) == 0 || view.Metrics == nil {
		return nil
	}

	selected := view.VolumeChart[0]
	bold := color.New(color.Bold)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	rate := undefinedRate
	if view.Metrics.VisitsPer100k != nil {
		rate = fmt.Sprintf("%.2f", *view.Metrics.VisitsPer100k)
	}

	_, _ = fmt.Fprintf(w, "\n%s\n", color.New(color.Bold, color.FgCyan).Sprint(selected.Municipality+" - "+selected.UF))
	_, _ = fmt.Fprintf(tw, "%s\t%d\n", bold.Sprint("Atendimentos"), selected.VisitVolume)
	_, _ = fmt.Fprintf(tw, "%s\t%d\n", bold.Sprint("População"), view.Metrics.Population)
	_, _ = fmt.Fprintf(tw, "%s\t%.2f\n", bold.Sprint("Área (km²)"), view.Metrics.AreaKm2)
	_, _ = fmt.Fprintf(tw, "%s\t%.2f%%\n", bold.Sprint("Alfabetização"), view.Metrics.LiteracyPercent)
	_, _ = fmt.Fprintf(tw, "%s\t%s\n", bold.Sprint("Atendimentos por 100 mil hab."), rate)
	_, _ = fmt.Fprintf(tw, "%s\t%.4f, %.4f\n", bold.Sprint("Centroide (lon, lat)"), selected.CentroidLongitude, selected.CentroidLatitude)

	return tw.Flush()
}
