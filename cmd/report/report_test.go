package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const reportCSV = `ID,MUNICIPIO,POPULACAO,AREA_KM2,TAXA_ALFABETIZACAO,CENTROIDE_LONGITUDE,CENTROIDE_LATITUDE
1,Fortaleza,2000000,312.4,0.93,-38.54,-3.73
2,Sobral,200000,2123.0,0.82,-40.35,-3.69
3,Fortaleza,2000000,312.4,0.93,-38.54,-3.73
4,Crato,0,1176.5,0.79,-39.41,-7.23
`

// resetReportFlags volta as flags globais para os valores padrão entre os testes
func resetReportFlags() {
	rootCmd.Flags().VisitAll(func(f *pflag.Flag) {
		f.Changed = false
		_ = f.Value.Set(f.DefValue)
	})
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		f.Changed = false
		_ = f.Value.Set(f.DefValue)
	})
	if h := rootCmd.Flags().Lookup("help"); h != nil {
		_ = h.Value.Set("false")
	}
}

func newTestCmd(t *testing.T, args ...string) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	resetReportFlags()

	stdout := new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs(append(args, "--no-color"))
	return rootCmd, stdout
}

func writeCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "atendimentos.csv")
	require.NoError(t, os.WriteFile(path, []byte(reportCSV), 0o600))
	return path
}

func TestReport_OverviewTable(t *testing.T) {
	cmd, stdout := newTestCmd(t, "--file", writeCSV(t), "--top", "2")
	require.NoError(t, cmd.Execute())

	out := stdout.String()
	assert.Contains(t, out, "csv:atendimentos.csv")
	assert.Contains(t, out, "4 registros, 3 municípios")
	assert.Contains(t, out, "1 município(s) sem população")
	assert.Contains(t, out, "Maiores taxas por 100 mil hab. (top 2)")
	assert.Contains(t, out, "Menores taxas por 100 mil hab. (bottom 2)")
	assert.Contains(t, out, "Sobral")
	assert.Contains(t, out, "0.50")
	assert.Contains(t, out, undefinedRate)
	assert.True(t, color.NoColor)

	// Gráfico de taxa: maior taxa primeiro, indefinida por último
	require.Contains(t, out, rateChartTitle)
	rateChart := out[strings.Index(out, rateChartTitle):strings.Index(out, "Maiores taxas")]
	sobral := strings.Index(rateChart, "Sobral")
	fortaleza := strings.Index(rateChart, "Fortaleza")
	crato := strings.Index(rateChart, "Crato")
	require.True(t, sobral > 0 && fortaleza > 0 && crato > 0)
	assert.Less(t, sobral, fortaleza)
	assert.Less(t, fortaleza, crato)
}

func TestReport_FocusTable(t *testing.T) {
	cmd, stdout := newTestCmd(t, "--file", writeCSV(t), "--mode", "focus", "--municipio", "Sobral")
	require.NoError(t, cmd.Execute())

	out := stdout.String()
	assert.Contains(t, out, "Sobral - CE")
	assert.Contains(t, out, "82.00%")
	assert.Contains(t, out, "0.50")
}

func TestReport_JSON(t *testing.T) {
	cmd, stdout := newTestCmd(t, "--file", writeCSV(t), "--format", "json")
	require.NoError(t, cmd.Execute())

	var report map[string]map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))
	assert.Equal(t, float64(3), report["dataset"]["municipality_count"])
	assert.Equal(t, "overview", report["view"]["mode"])
}

func TestReport_XLSX(t *testing.T) {
	output := filepath.Join(t.TempDir(), "ranking.xlsx")
	cmd, _ := newTestCmd(t, "--file", writeCSV(t), "--format", "xlsx", "--output", output)
	require.NoError(t, cmd.Execute())

	f, err := excelize.OpenFile(output)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Ranking", "Municipios"}, f.GetSheetList())
}

func TestReport_Errors(t *testing.T) {
	csvPath := writeCSV(t)
	headerOnlyPath := filepath.Join(t.TempDir(), "vazio.csv")
	require.NoError(t, os.WriteFile(headerOnlyPath, []byte(strings.SplitN(reportCSV, "\n", 2)[0]+"\n"), 0o600))

	tests := []struct {
		name     string
		args     []string
		wantCode int
	}{
		{name: "Formato inválido", args: []string{"--file", csvPath, "--format", "pdf"}, wantCode: ExitInvalidArgs},
		{name: "XLSX sem saída", args: []string{"--file", csvPath, "--format", "xlsx"}, wantCode: ExitInvalidArgs},
		{name: "Modo inválido", args: []string{"--file", csvPath, "--mode", "mapa"}, wantCode: ExitInvalidArgs},
		{name: "Agrupamento inválido", args: []string{"--file", csvPath, "--grouping", "uf"}, wantCode: ExitInvalidArgs},
		{name: "Ranking sem tamanho", args: []string{"--file", csvPath, "--top", "0"}, wantCode: ExitInvalidArgs},
		{name: "Município inexistente", args: []string{"--file", csvPath, "--mode", "focus", "--municipio", "Recife"}, wantCode: ExitDataError},
		{name: "Foco sem município", args: []string{"--file", csvPath, "--mode", "focus"}, wantCode: ExitDataError},
		{name: "Arquivo só com cabeçalho", args: []string{"--file", headerOnlyPath}, wantCode: ExitDataError},
		{name: "Arquivo inexistente", args: []string{"--file", filepath.Join(t.TempDir(), "nao-existe.csv")}, wantCode: ExitIOError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, _ := newTestCmd(t, tt.args...)
			err := cmd.Execute()
			require.Error(t, err)

			var ece *exitCodeError
			require.ErrorAs(t, err, &ece)
			assert.Equal(t, tt.wantCode, ece.code)
		})
	}
}
