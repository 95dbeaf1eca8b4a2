package registry

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agentstation/utc"

	"github.com/sejongdental/clinicqr/pkg/errors"
)

// Registry CSV columns. The order is fixed: operator scripts read these
// files positionally.
var (
	coreColumns  = []string{"clinic_id", "clinic_name", "status", "first_seen_at", "last_seen_at"}
	extraColumns = []string{"address", "phone", "director", "homepage"}
	allColumns   = append(append([]string{}, coreColumns...), extraColumns...)
)

// utf8BOM keeps the CSV openable in Excel without mangled Hangul.
const utf8BOM = "\uFEFF"

// Load reads a registry snapshot from the CSV file at path.
// A missing file is not an error; it means a first run with an empty registry.
func Load(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, errors.WrapIO("read", path, err)
	}
	defer f.Close()

	reg, err := Read(f)
	if err != nil {
		return nil, errors.WrapParse("csv", path, err)
	}
	return reg, nil
}

// Read parses a registry snapshot from CSV data.
func Read(r io.Reader) (*Registry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return New(), nil
	}
	if err != nil {
		return nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.TrimSpace(col)] = i
	}
	var missing []string
	for _, col := range coreColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("registry is missing required columns: %s", strings.Join(missing, ", "))
	}

	field := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	reg := New()
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		reg.Entries = append(reg.Entries, Entry{
			ClinicID:    strings.TrimSpace(field(row, "clinic_id")),
			Name:        field(row, "clinic_name"),
			Status:      Status(strings.ToUpper(strings.TrimSpace(field(row, "status")))),
			FirstSeenAt: parseTime(field(row, "first_seen_at")),
			LastSeenAt:  parseTime(field(row, "last_seen_at")),
			Address:     field(row, "address"),
			Phone:       field(row, "phone"),
			Director:    field(row, "director"),
			Homepage:    field(row, "homepage"),
		})
	}
	return reg, nil
}

// Save rewrites the registry file with the full current state. The write
// goes through a temp file in the same directory and a rename, so a failed
// run never leaves a truncated registry behind.
func Save(reg *Registry, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.WrapIO("create", filepath.Dir(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := Write(reg, tmp); err != nil {
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

// Write serializes the registry as CSV.
func Write(reg *Registry, w io.Writer) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(allColumns); err != nil {
		return err
	}
	for _, e := range reg.Entries {
		row := []string{
			e.ClinicID,
			e.Name,
			string(e.Status),
			formatTime(e.FirstSeenAt),
			formatTime(e.LastSeenAt),
			e.Address,
			e.Phone,
			e.Director,
			e.Homepage,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func parseTime(value string) utc.Time {
	s := strings.TrimSpace(value)
	if s == "" {
		return utc.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return utc.Time{}
	}
	return utc.Time{Time: t.UTC()}
}

func formatTime(t utc.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
