package cmd

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sejongdental/clinicqr/internal/cmd/output"
	"github.com/sejongdental/clinicqr/internal/config"
	"github.com/sejongdental/clinicqr/pkg/errors"
)

var changesCmd = &cobra.Command{
	Use:   "changes",
	Short: "Print the change report from the latest build",
	RunE:  runChanges,
}

func init() {
	rootCmd.AddCommand(changesCmd)
}

// changeEntry is the JSON/YAML shape of one change row.
type changeEntry struct {
	ClinicID   string `json:"clinic_id" yaml:"clinic_id"`
	Name       string `json:"clinic_name" yaml:"clinic_name"`
	ChangeType string `json:"change_type" yaml:"change_type"`
	Notes      string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

func runChanges(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, true)
	if err != nil {
		return err
	}

	path := filepath.Join(cfg.OutputRoot, "changes.csv")
	entries, err := readChanges(path)
	if err != nil {
		return err
	}

	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	formatter := output.NewFormatter(format)

	if format == output.FormatTable {
		data := output.Data{Headers: []string{"CLINIC ID", "NAME", "CHANGE", "NOTES"}}
		for _, e := range entries {
			data.Rows = append(data.Rows, []string{e.ClinicID, e.Name, e.ChangeType, e.Notes})
		}
		return formatter.Format(os.Stdout, data)
	}
	return formatter.Format(os.Stdout, entries)
}

func readChanges(path string) ([]changeEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no change report at %s; run a build first", path)
		}
		return nil, errors.WrapIO("read", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, errors.WrapParse("csv", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.TrimSpace(col)] = i
	}
	field := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var entries []changeEntry
	for _, row := range rows[1:] {
		entries = append(entries, changeEntry{
			ClinicID:   field(row, "clinic_id"),
			Name:       field(row, "clinic_name"),
			ChangeType: field(row, "change_type"),
			Notes:      field(row, "notes"),
		})
	}
	return entries, nil
}
