package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sejongdental/clinicqr/pkg/registry"
)

func readReport(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "\uFEFF"), "report must carry a UTF-8 BOM")

	cr := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(data), "\uFEFF")))
	rows, err := cr.ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "mapping.csv")

	err := WriteMapping(path, []MappingRow{
		{
			Name:        "서울치과",
			ClinicID:    "SJ26-0001",
			Status:      registry.StatusActive,
			Address:     "세종시 한누리대로 1",
			Phone:       "044-123-4567",
			Homepage:    "https://example.com",
			URL:         "https://qr.example.org/c/SJ26-0001/",
			PagePath:    "site/c/SJ26-0001/index.html",
			QRPath:      "output/qr/SJ26-0001.png",
			QRNamedPath: "output/qr_named/SJ26-0001.png",
		},
	})
	require.NoError(t, err)

	rows := readReport(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, mappingColumns, rows[0])
	assert.Equal(t, "서울치과", rows[1][0])
	assert.Equal(t, "SJ26-0001", rows[1][1])
	assert.Equal(t, "ACTIVE", rows[1][2])
	assert.Equal(t, "https://qr.example.org/c/SJ26-0001/", rows[1][7])
}

func TestWriteChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "changes.csv")

	prev := registry.New()
	next := &registry.Registry{Entries: []registry.Entry{
		{ClinicID: "SJ26-0001", Name: "서울치과", Status: registry.StatusActive},
		{ClinicID: "SJ26-0002", Name: "한빛치과", Status: registry.StatusActive},
	}}
	cs := registry.Diff(prev, next)

	err := WriteChanges(path, cs, map[string]string{"SJ26-0002": "manual re-add"})
	require.NoError(t, err)

	rows := readReport(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, changeColumns, rows[0])
	assert.Equal(t, []string{"SJ26-0001", "서울치과", "NEW", ""}, rows[1])
	assert.Equal(t, []string{"SJ26-0002", "한빛치과", "NEW", "manual re-add"}, rows[2])
}

func TestWriteSendlist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sendlist.csv")

	err := WriteSendlist(path, []SendlistRow{
		{
			ClinicID:   "SJ26-0001",
			Name:       "서울치과",
			ChangeType: registry.ChangeNew,
			URL:        "https://qr.example.org/c/SJ26-0001/",
			ZipPath:    "zips/SJ26-0001_seoul.zip",
		},
	})
	require.NoError(t, err)

	rows := readReport(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, sendlistColumns, rows[0])
	assert.Equal(t, "zips/SJ26-0001_seoul.zip", rows[1][4])
}

func TestWriteMappingLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mapping.csv")
	require.NoError(t, WriteMapping(path, nil))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "mapping.csv", entries[0].Name())
}
