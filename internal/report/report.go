// Package report writes the operator-facing CSV reports produced by a
// build: the full clinic mapping, the per-run change log, and the outbox
// send list. All reports carry a UTF-8 BOM so Excel renders Hangul
// correctly, and are written through a temp file and rename.
package report

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/sejongdental/clinicqr/pkg/errors"
	"github.com/sejongdental/clinicqr/pkg/registry"
)

const utf8BOM = "\uFEFF"

// MappingRow is one clinic in mapping.csv, joining registry state with the
// artifact paths the build produced for it.
type MappingRow struct {
	Name        string
	ClinicID    string
	Status      registry.Status
	Address     string
	Phone       string
	Director    string
	Homepage    string
	URL         string
	PagePath    string
	QRPath      string
	QRNamedPath string
}

// SendlistRow is one clinic in sendlist.csv, pointing the operator at the
// zip to deliver.
type SendlistRow struct {
	ClinicID   string
	Name       string
	ChangeType registry.ChangeType
	URL        string
	ZipPath    string
}

var mappingColumns = []string{
	"clinic_name", "clinic_id", "status",
	"address", "phone", "director", "homepage",
	"url", "page_path", "qr_path", "qr_named_path",
}

// WriteMapping writes mapping.csv with one row per registry entry.
func WriteMapping(path string, rows []MappingRow) error {
	return writeCSV(path, mappingColumns, func(cw *csv.Writer) error {
		for _, r := range rows {
			row := []string{
				r.Name, r.ClinicID, string(r.Status),
				r.Address, r.Phone, r.Director, r.Homepage,
				r.URL, r.PagePath, r.QRPath, r.QRNamedPath,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

var changeColumns = []string{"clinic_id", "clinic_name", "change_type", "notes"}

// WriteChanges writes changes.csv from a reconciliation changeset. The
// optional notes map attaches a free-form note per clinic id.
func WriteChanges(path string, cs *registry.Changeset, notes map[string]string) error {
	return writeCSV(path, changeColumns, func(cw *csv.Writer) error {
		for _, c := range cs.Changes {
			row := []string{c.ClinicID, c.ClinicName, string(c.Type), notes[c.ClinicID]}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

var sendlistColumns = []string{"clinic_id", "clinic_name", "change_type", "url", "zip_path"}

// WriteSendlist writes sendlist.csv for the clinics that got an outbox zip.
func WriteSendlist(path string, rows []SendlistRow) error {
	return writeCSV(path, sendlistColumns, func(cw *csv.Writer) error {
		for _, r := range rows {
			row := []string{r.ClinicID, r.Name, string(r.ChangeType), r.URL, r.ZipPath}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeCSV(path string, header []string, body func(*csv.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.WrapIO("create", filepath.Dir(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := writeRows(tmp, header, body); err != nil {
		tmp.Close()
		return errors.WrapIO("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.WrapIO("write", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.WrapIO("rename", path, err)
	}
	return nil
}

func writeRows(w io.Writer, header []string, body func(*csv.Writer) error) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := body(cw); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
