// Package delivery assembles the operator handoff artifacts: one folder
// per ACTIVE clinic with its QR images and an info sheet, and an outbox of
// zips covering only the clinics that changed this run.
package delivery

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"github.com/sejongdental/clinicqr/internal/config"
	"github.com/sejongdental/clinicqr/internal/report"
	"github.com/sejongdental/clinicqr/pkg/errors"
	"github.com/sejongdental/clinicqr/pkg/logging"
	"github.com/sejongdental/clinicqr/pkg/registry"
)

// slugMaxLen caps folder and zip name length.
const slugMaxLen = 40

// Package is a created delivery folder for one clinic.
type Package struct {
	ClinicID string
	Name     string
	Dir      string
}

// SlugName derives the filesystem slug used in delivery and outbox names.
// Names that slugify to nothing (pure Hangul with transliteration disabled,
// for example) fall back to "clinic".
func SlugName(name string) string {
	s := slug.Make(name)
	if len(s) > slugMaxLen {
		s = strings.Trim(s[:slugMaxLen], "-")
	}
	if s == "" {
		return "clinic"
	}
	return s
}

// CreatePackages builds output/delivery/<clinic_id>_<slug>/ for every
// ACTIVE clinic in rows: qr.png, qr_named.png when present, and info.txt.
// A missing base QR image for an ACTIVE clinic is an error; a missing
// named variant only logs a warning.
func CreatePackages(cfg *config.Config, rows []report.MappingRow, root string) ([]Package, error) {
	now := time.Now().Format(time.RFC3339)
	var packages []Package

	for _, row := range rows {
		if row.Status != registry.StatusActive {
			continue
		}
		if row.QRPath == "" {
			return nil, errors.NewValidationError("qr_path", row.ClinicID,
				"active clinic has no QR image")
		}

		dir := filepath.Join(root, row.ClinicID+"_"+SlugName(row.Name))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.WrapIO("create", dir, err)
		}

		if err := copyFile(row.QRPath, filepath.Join(dir, "qr.png")); err != nil {
			return nil, err
		}

		switch {
		case row.QRNamedPath == "":
			logging.Warn().Str("clinic_id", row.ClinicID).Msg("no named QR configured for delivery")
		case !fileExists(row.QRNamedPath):
			logging.Warn().Str("clinic_id", row.ClinicID).Str("path", row.QRNamedPath).
				Msg("named QR image missing, delivering without it")
		default:
			if err := copyFile(row.QRNamedPath, filepath.Join(dir, "qr_named.png")); err != nil {
				return nil, err
			}
		}

		infoPath := filepath.Join(dir, "info.txt")
		if err := os.WriteFile(infoPath, []byte(renderInfo(cfg, row, now)), 0644); err != nil {
			return nil, errors.WrapIO("write", infoPath, err)
		}

		packages = append(packages, Package{ClinicID: row.ClinicID, Name: row.Name, Dir: dir})
	}
	return packages, nil
}

// renderInfo produces the Korean info sheet included in each package.
func renderInfo(cfg *config.Config, row report.MappingRow, createdAt string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "치과명: %s\n", row.Name)
	fmt.Fprintf(&b, "식별코드: %s\n", row.ClinicID)
	fmt.Fprintf(&b, "URL: %s\n", row.URL)
	fmt.Fprintf(&b, "주소: %s\n", orDash(row.Address))
	fmt.Fprintf(&b, "전화: %s\n", orDash(row.Phone))
	fmt.Fprintf(&b, "대표원장: %s\n", orDash(row.Director))
	fmt.Fprintf(&b, "홈페이지: %s\n", orDash(row.Homepage))
	fmt.Fprintf(&b, "안내: %s\n", cfg.MessageActive)
	fmt.Fprintf(&b, "생성일: %s\n", createdAt)
	return b.String()
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.WrapIO("read", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return errors.WrapIO("create", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.WrapIO("write", dst, err)
	}
	return out.Close()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
