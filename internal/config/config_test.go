package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadTOMLWithDefaults(t *testing.T) {
	path := writeConfig(t, "config.toml", `
year = 2026
base_url = "https://sejongdental.github.io/clinics"
input_excel_path = "data/clinics.xlsx"
`)

	cfg, err := Load(path, false)
	require.NoError(t, err)

	assert.Equal(t, 2026, cfg.Year)
	assert.Equal(t, SourceLocal, cfg.ClinicsSource)
	assert.Equal(t, "치과명", cfg.Columns.Name)
	assert.Equal(t, "data/id_map.csv", cfg.IDMapPath)
	assert.Equal(t, "H", cfg.QR.ErrorCorrection)
	assert.Equal(t, 10, cfg.QR.BoxSize)
	assert.True(t, cfg.NoIndex)
	assert.True(t, cfg.GenerateDelivery)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
year: 2026
base_url: https://sejongdental.github.io/clinics
clinics_source: url
clinics_xlsx_url: https://docs.google.com/spreadsheets/d/x/export?format=xlsx
`)

	cfg, err := Load(path, false)
	require.NoError(t, err)
	assert.Equal(t, SourceURL, cfg.ClinicsSource)
	assert.NotEmpty(t, cfg.ClinicsURL)
}

func TestValidateCollectsAllProblems(t *testing.T) {
	path := writeConfig(t, "config.toml", `
year = 0
clinics_source = "carrier-pigeon"
analytics_provider = "ga4"
qr_error_correction = "Z"
`)

	_, err := Load(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "year must be a positive integer")
	assert.Contains(t, err.Error(), "clinics_source must be")
	assert.Contains(t, err.Error(), "base_url is required")
	assert.Contains(t, err.Error(), "ga4_measurement_id is required")
	assert.Contains(t, err.Error(), "qr_error_correction must be one of")
}

func TestValidateAllowsMissingBaseURLWhenSkippingQR(t *testing.T) {
	path := writeConfig(t, "config.toml", `
year = 2026
input_excel_path = "data/clinics.xlsx"
`)

	_, err := Load(path, false)
	require.Error(t, err)

	cfg, err := Load(path, true)
	require.NoError(t, err)
	assert.Empty(t, cfg.BaseURL)
}

func TestLandingURL(t *testing.T) {
	cfg := &Config{BaseURL: "https://example.org/site/", PathPrefix: "/c/"}

	assert.Equal(t, "https://example.org/site/c/", cfg.LandingURLPrefix())
	assert.Equal(t, "https://example.org/site/c/SJ26-0001/", cfg.LandingURL("SJ26-0001"))

	empty := &Config{PathPrefix: "c"}
	assert.Empty(t, empty.LandingURLPrefix())
	assert.Empty(t, empty.LandingURL("SJ26-0001"))
}
