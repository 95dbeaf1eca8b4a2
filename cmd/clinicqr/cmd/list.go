package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sejongdental/clinicqr/internal/cmd/output"
	"github.com/sejongdental/clinicqr/internal/config"
	"github.com/sejongdental/clinicqr/pkg/registry"
)

var listStatus string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the current clinic registry",
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listStatus, "status", "",
		"Filter by status: active or inactive")
	rootCmd.AddCommand(listCmd)
}

// listEntry is the JSON/YAML shape of one registry row.
type listEntry struct {
	ClinicID string `json:"clinic_id" yaml:"clinic_id"`
	Name     string `json:"clinic_name" yaml:"clinic_name"`
	Status   string `json:"status" yaml:"status"`
	LastSeen string `json:"last_seen_at,omitempty" yaml:"last_seen_at,omitempty"`
}

func runList(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, true)
	if err != nil {
		return err
	}

	reg, err := registry.Load(cfg.IDMapPath)
	if err != nil {
		return err
	}

	var filter registry.Status
	switch strings.ToLower(listStatus) {
	case "":
	case "active":
		filter = registry.StatusActive
	case "inactive":
		filter = registry.StatusInactive
	default:
		return fmt.Errorf("unknown status filter: %q (expected active or inactive)", listStatus)
	}

	var entries []listEntry
	for _, e := range reg.Entries {
		if filter != "" && e.Status != filter {
			continue
		}
		lastSeen := ""
		if !e.LastSeenAt.IsZero() {
			lastSeen = e.LastSeenAt.Format(time.RFC3339)
		}
		entries = append(entries, listEntry{
			ClinicID: e.ClinicID,
			Name:     e.Name,
			Status:   string(e.Status),
			LastSeen: lastSeen,
		})
	}

	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	formatter := output.NewFormatter(format)

	if format == output.FormatTable {
		data := output.Data{Headers: []string{"CLINIC ID", "NAME", "STATUS", "LAST SEEN"}}
		for _, e := range entries {
			data.Rows = append(data.Rows, []string{e.ClinicID, e.Name, e.Status, e.LastSeen})
		}
		return formatter.Format(os.Stdout, data)
	}
	return formatter.Format(os.Stdout, entries)
}
