package exporter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tcgindex/internal/index"
)

func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir, nil)

	err := w.WriteCSV("out/test.csv", WriteOptions{
		Headers: []string{"a", "b"},
		Records: [][]string{{"1", "2"}, {"3", "4"}},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "out", "test.csv"))
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n3,4\n", string(data))
}

func TestWriteCSV_BOMPrefix(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir, nil)

	err := w.WriteCSV("bom.csv", WriteOptions{
		Headers:   []string{"col"},
		BOMPrefix: true,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "bom.csv"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, data[:3])
}

func TestExportValues(t *testing.T) {
	dir := t.TempDir()
	e := NewValuesExporter(NewCSVWriter(dir, nil))

	change := 1.5
	values := []index.Value{
		{
			Date:          time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC),
			Value:         104.5671,
			NConstituents: 100,
			MarketCap:     54321.5,
			Change1D:      &change,
		},
	}
	require.NoError(t, e.ExportValues("RARE_100", values))

	data, err := os.ReadFile(filepath.Join(dir, "index_values_RARE_100.csv"))
	require.NoError(t, err)
	got := string(data[3:]) // skip BOM
	assert.Contains(t, got, "2026-08-27,104.5671,100,54321.50,1.5000,,")
}

func TestFormatOptFloatBlankWhenAbsent(t *testing.T) {
	assert.Equal(t, "", formatOptFloat(nil, 4))
	v := 2.5
	assert.Equal(t, "2.5000", formatOptFloat(&v, 4))
}
