package main

import (
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vfg2006/sus-dashboard-api/internal/config"
)

// Valores das flags
var (
	reportFile         string
	reportDelimiter    string
	reportEncoding     string
	reportUF           string
	reportGrouping     string
	reportTop          int
	reportMode         string
	reportMunicipality string
	reportFormat       string
	reportOutput       string
	verbose            bool
	noColor            bool
)

var rootCmd = &cobra.Command{
	Use:   "report",
	Short: "Relatório de atendimentos do SUS por município",
	Long: `Lê o CSV de atendimentos, agrega por município e imprime a visão geral
(volume, taxa por 100 mil habitantes e ranking) ou a visão de foco em um município.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logrus.SetLevel(logrus.WarnLevel)
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
		if noColor {
			color.NoColor = true
		}
	},
	RunE: runReport,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&reportFile, "file", "f", "atendimentos.csv", "arquivo CSV de atendimentos")
	flags.StringVarP(&reportDelimiter, "delimiter", "d", ",", `delimitador do CSV ("," ";" ou "tab")`)
	flags.StringVar(&reportEncoding, "encoding", config.EncodingUTF8, "codificação do CSV: utf-8 ou latin1")
	flags.StringVar(&reportUF, "uf", "CE", "UF aplicada a todas as linhas (vazio mantém a coluna do arquivo)")
	flags.StringVar(&reportGrouping, "grouping", config.GroupingMunicipality, "agrupamento: municipality ou compound")
	flags.IntVarP(&reportTop, "top", "n", 5, "tamanho do ranking de maiores e menores taxas")
	flags.StringVarP(&reportMode, "mode", "m", "overview", "visão: overview ou focus")
	flags.StringVar(&reportMunicipality, "municipio", "", "município em foco (modo focus)")
	flags.StringVar(&reportFormat, "format", formatTable, "formato de saída: table, json ou xlsx")
	flags.StringVarP(&reportOutput, "output", "o", "", "arquivo de saída (obrigatório para xlsx; padrão: stdout)")

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "exibe os logs de carga")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "desativa cores na saída")
}
