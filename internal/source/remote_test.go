package source

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sejongdental/clinicqr/internal/config"
	"github.com/sejongdental/clinicqr/pkg/logging"
)

func workbookBytes(t *testing.T, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetList()[0]
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())
	return buf.Bytes()
}

func TestURLSourceFetchesAndParses(t *testing.T) {
	logging.DisableLoggingForTest(t)

	data := workbookBytes(t, [][]any{
		header(),
		{"서울치과", "세종시", "044-123-4567", "김철수", ""},
	})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(data)
	}))
	defer server.Close()

	cfg := &config.Config{
		ClinicsSource:   config.SourceURL,
		ClinicsURL:      server.URL,
		ClinicsHashPath: filepath.Join(t.TempDir(), "clinics.sha256"),
		Columns:         testColumns,
	}

	records, err := (&urlSource{cfg: cfg}).Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "서울치과", records[0].Name)
}

func TestURLSourceNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	cfg := &config.Config{
		ClinicsURL:      server.URL,
		ClinicsHashPath: filepath.Join(t.TempDir(), "clinics.sha256"),
		Columns:         testColumns,
	}

	_, err := (&urlSource{cfg: cfg}).Records(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestUpdateDigestDetectsChange(t *testing.T) {
	hashPath := filepath.Join(t.TempDir(), "clinics.sha256")

	changed, digest, err := updateDigest([]byte("v1"), hashPath)
	require.NoError(t, err)
	assert.True(t, changed, "first run always counts as changed")
	assert.Len(t, digest, 64)

	changed, _, err = updateDigest([]byte("v1"), hashPath)
	require.NoError(t, err)
	assert.False(t, changed, "identical bytes are unchanged")

	changed, _, err = updateDigest([]byte("v2"), hashPath)
	require.NoError(t, err)
	assert.True(t, changed)
}
