package delivery

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sejongdental/clinicqr/internal/report"
	"github.com/sejongdental/clinicqr/internal/site"
	"github.com/sejongdental/clinicqr/pkg/errors"
	"github.com/sejongdental/clinicqr/pkg/logging"
	"github.com/sejongdental/clinicqr/pkg/registry"
)

// outboxFiles is what a complete delivery folder contains; all three must
// be present before a clinic gets a zip.
var outboxFiles = []string{"qr.png", "qr_named.png", "info.txt"}

// OutboxResult summarizes an outbox run.
type OutboxResult struct {
	Targets      int
	ZipsCreated  int
	SendlistPath string
}

// CreateOutbox repackages this run's NEW and REACTIVATED clinics as zips
// under <outboxRoot>/zips/, writes sendlist.csv and a download index page.
// The outbox root is recreated from scratch each run so stale zips never
// linger. Clinics whose delivery folder is incomplete are skipped with a
// warning rather than failing the run.
func CreateOutbox(rows []report.MappingRow, cs *registry.Changeset,
	deliveryRoot, outboxRoot string, renderer *site.Renderer) (*OutboxResult, error) {

	if err := os.RemoveAll(outboxRoot); err != nil {
		return nil, errors.WrapIO("remove", outboxRoot, err)
	}
	zipsRoot := filepath.Join(outboxRoot, "zips")
	if err := os.MkdirAll(zipsRoot, 0755); err != nil {
		return nil, errors.WrapIO("create", zipsRoot, err)
	}

	byID := make(map[string]report.MappingRow, len(rows))
	for _, row := range rows {
		byID[row.ClinicID] = row
	}

	targets := cs.Targets()
	var sendlist []report.SendlistRow
	var zipNames []string

	for _, change := range targets {
		row, ok := byID[change.ClinicID]
		if !ok {
			logging.Warn().Str("clinic_id", change.ClinicID).Msg("changed clinic missing from mapping, skipping outbox")
			continue
		}
		if row.Status != registry.StatusActive {
			logging.Warn().Str("clinic_id", change.ClinicID).Msg("changed clinic is inactive, skipping outbox")
			continue
		}

		folder := row.ClinicID + "_" + SlugName(row.Name)
		deliveryDir := filepath.Join(deliveryRoot, folder)

		var sources []string
		var missing []string
		for _, name := range outboxFiles {
			path := filepath.Join(deliveryDir, name)
			if fileExists(path) {
				sources = append(sources, path)
			} else {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			logging.Warn().Str("clinic_id", row.ClinicID).Strs("missing", missing).
				Msg("delivery folder incomplete, skipping outbox")
			continue
		}

		zipPath := filepath.Join(zipsRoot, folder+".zip")
		if err := writeZip(zipPath, sources); err != nil {
			return nil, err
		}
		zipNames = append(zipNames, folder+".zip")

		sendlist = append(sendlist, report.SendlistRow{
			ClinicID:   row.ClinicID,
			Name:       row.Name,
			ChangeType: change.Type,
			URL:        row.URL,
			ZipPath:    zipPath,
		})
	}

	sendlistPath := filepath.Join(outboxRoot, "sendlist.csv")
	if err := report.WriteSendlist(sendlistPath, sendlist); err != nil {
		return nil, err
	}

	indexPath := filepath.Join(outboxRoot, "index.html")
	f, err := os.Create(indexPath)
	if err != nil {
		return nil, errors.WrapIO("create", indexPath, err)
	}
	if err := renderer.RenderOutboxIndex(f, time.Now().Format(time.RFC3339), zipNames); err != nil {
		f.Close()
		return nil, errors.WrapIO("write", indexPath, err)
	}
	if err := f.Close(); err != nil {
		return nil, errors.WrapIO("write", indexPath, err)
	}

	return &OutboxResult{
		Targets:      len(targets),
		ZipsCreated:  len(zipNames),
		SendlistPath: sendlistPath,
	}, nil
}

func writeZip(path string, files []string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}

	zw := zip.NewWriter(f)
	for _, src := range files {
		if err := addZipEntry(zw, src); err != nil {
			zw.Close()
			f.Close()
			return errors.WrapIO("write", path, err)
		}
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return errors.WrapIO("write", path, err)
	}
	if err := f.Close(); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

func addZipEntry(zw *zip.Writer, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = filepath.Base(src)
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, in)
	return err
}
