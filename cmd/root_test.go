package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"stocktrader/internal/util"

	"github.com/stretchr/testify/require"
)

func writeTestData(t *testing.T) (configPath, outDir string) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "Stocks")
	outDir = filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "aaa.us.txt"), []byte(`Date,Open,High,Low,Close,Volume,OpenInt
1962-01-02,1,1,1,1,10000,0
1970-06-01,2,2,2,2,10000,0
1979-12-31,4,5,4,4.5,10000,0
`), 0o644))

	configPath = filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(configPath, []byte(`{
		"dataDir": "`+dataDir+`",
		"outputDir": "`+outDir+`",
		"initialCapital": 100,
		"periods": [{"start": "1962-01-01", "end": "1980-01-01", "minReturn": 2, "minYears": 5}]
	}`), 0o644))

	return configPath, outDir
}

func TestWindowedCommand(t *testing.T) {
	configPath, outDir := writeTestData(t)

	root := NewRootCmd()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetArgs([]string{"windowed", "--config", configPath})
	require.NoError(t, root.Execute())

	content, err := os.ReadFile(filepath.Join(outDir, "small.txt"))
	require.NoError(t, err)
	require.Equal(t, "2\n1962-01-02 buy-close AAA 97\n1979-12-31 sell-high AAA 97\n", string(content))

	_, err = os.Stat(filepath.Join(outDir, "small_valuation.csv"))
	require.NoError(t, err)
	require.Contains(t, out.String(), "final capital: 482.1800")
}

func TestIntradayCommand(t *testing.T) {
	configPath, outDir := writeTestData(t)

	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"intraday", "--config", configPath, "--max-transactions", "2", "--omit-dates"})
	require.NoError(t, root.Execute())

	content, err := os.ReadFile(filepath.Join(outDir, "large.txt"))
	require.NoError(t, err)
	// a cap of 2 stops the run after the first round trip
	require.Equal(t, "2\nbuy-low AAA 100\nsell-high AAA 100\n", string(content))
}

func TestPeriodFilters(t *testing.T) {
	filters, err := PeriodFilters(util.DefaultPeriods())
	require.NoError(t, err)
	require.Len(t, filters, 3)
	require.Equal(t, util.NewDate(1980, 1, 1), filters[1].Start)
	require.Equal(t, util.NewDate(2000, 1, 1), filters[1].End)
	require.Equal(t, 100.0, filters[1].MinReturn)
}
