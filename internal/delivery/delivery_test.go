package delivery

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sejongdental/clinicqr/internal/config"
	"github.com/sejongdental/clinicqr/internal/report"
	"github.com/sejongdental/clinicqr/pkg/errors"
	"github.com/sejongdental/clinicqr/pkg/registry"
)

func TestSlugName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Seoul Dental Clinic", "seoul-dental-clinic"},
		{"", "clinic"},
		{"   ", "clinic"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SlugName(tt.in))
	}

	long := SlugName(strings.Repeat("dental ", 20))
	assert.LessOrEqual(t, len(long), 40)
	assert.False(t, strings.HasSuffix(long, "-"))
}

func testConfig() *config.Config {
	return &config.Config{
		MessageActive:   "가입 치과입니다",
		MessageInactive: "가입 목록에 없습니다",
	}
}

func writeDummy(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("png-bytes"), 0644))
}

func TestCreatePackages(t *testing.T) {
	dir := t.TempDir()
	qrPath := filepath.Join(dir, "qr", "SJ26-0001.png")
	namedPath := filepath.Join(dir, "qr_named", "SJ26-0001.png")
	writeDummy(t, qrPath)
	writeDummy(t, namedPath)

	rows := []report.MappingRow{
		{
			Name:        "Seoul Dental",
			ClinicID:    "SJ26-0001",
			Status:      registry.StatusActive,
			Phone:       "044-123-4567",
			URL:         "https://qr.example.org/c/SJ26-0001/",
			QRPath:      qrPath,
			QRNamedPath: namedPath,
		},
		{
			Name:     "Closed Dental",
			ClinicID: "SJ26-0002",
			Status:   registry.StatusInactive,
			QRPath:   qrPath,
		},
	}

	root := filepath.Join(dir, "delivery")
	packages, err := CreatePackages(testConfig(), rows, root)
	require.NoError(t, err)
	require.Len(t, packages, 1, "inactive clinics get no package")

	pkgDir := filepath.Join(root, "SJ26-0001_seoul-dental")
	assert.Equal(t, pkgDir, packages[0].Dir)
	assert.FileExists(t, filepath.Join(pkgDir, "qr.png"))
	assert.FileExists(t, filepath.Join(pkgDir, "qr_named.png"))

	info, err := os.ReadFile(filepath.Join(pkgDir, "info.txt"))
	require.NoError(t, err)
	text := string(info)
	assert.Contains(t, text, "치과명: Seoul Dental")
	assert.Contains(t, text, "식별코드: SJ26-0001")
	assert.Contains(t, text, "URL: https://qr.example.org/c/SJ26-0001/")
	assert.Contains(t, text, "주소: -")
	assert.Contains(t, text, "전화: 044-123-4567")
	assert.Contains(t, text, "안내: 가입 치과입니다")
}

func TestCreatePackagesMissingNamedQR(t *testing.T) {
	dir := t.TempDir()
	qrPath := filepath.Join(dir, "SJ26-0001.png")
	writeDummy(t, qrPath)

	rows := []report.MappingRow{{
		Name:        "Seoul Dental",
		ClinicID:    "SJ26-0001",
		Status:      registry.StatusActive,
		QRPath:      qrPath,
		QRNamedPath: filepath.Join(dir, "nope.png"),
	}}

	packages, err := CreatePackages(testConfig(), rows, filepath.Join(dir, "delivery"))
	require.NoError(t, err)
	require.Len(t, packages, 1)
	assert.FileExists(t, filepath.Join(packages[0].Dir, "qr.png"))
	assert.NoFileExists(t, filepath.Join(packages[0].Dir, "qr_named.png"))
}

func TestCreatePackagesRequiresQRForActive(t *testing.T) {
	rows := []report.MappingRow{{
		Name:     "Seoul Dental",
		ClinicID: "SJ26-0001",
		Status:   registry.StatusActive,
	}}

	_, err := CreatePackages(testConfig(), rows, t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}
