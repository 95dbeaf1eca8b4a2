// Package registry implements the clinic registry: a persisted mapping from
// clinic name to a permanent clinic id, reconciled against each input batch.
//
// The registry is the single source of truth for identity continuity. Once a
// clinic id has been assigned to a normalized name it is never changed and
// never reassigned, even if the name disappears from the input for any number
// of runs. The persisted table is semantically append-only: reconciliation
// refreshes status and metadata but never deletes or rewrites an id/name pair.
package registry

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/agentstation/utc"

	"github.com/sejongdental/clinicqr/pkg/errors"
)

// Status marks whether a clinic appeared in the current input batch.
type Status string

const (
	// StatusActive means the clinic's normalized name is present in the
	// current batch.
	StatusActive Status = "ACTIVE"
	// StatusInactive means the clinic is known from a previous run but
	// absent from the current batch.
	StatusInactive Status = "INACTIVE"
)

// Entry is one persisted registry row.
type Entry struct {
	ClinicID    string
	Name        string // normalized clinic name, the identity key
	Status      Status
	FirstSeenAt utc.Time
	LastSeenAt  utc.Time

	// Metadata carried for downstream rendering. Empty incoming values
	// keep the previously recorded value.
	Address  string
	Phone    string
	Director string
	Homepage string
}

// Registry holds the full id-map state for one snapshot.
type Registry struct {
	Entries []Entry
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{}
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	return len(r.Entries)
}

// ByID returns the entry with the given clinic id.
func (r *Registry) ByID(clinicID string) (Entry, bool) {
	for _, e := range r.Entries {
		if e.ClinicID == clinicID {
			return e, true
		}
	}
	return Entry{}, false
}

// ByName returns the entry whose normalized name matches.
func (r *Registry) ByName(name string) (Entry, bool) {
	for _, e := range r.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// ActiveCount returns the number of ACTIVE entries.
func (r *Registry) ActiveCount() int {
	n := 0
	for _, e := range r.Entries {
		if e.Status == StatusActive {
			n++
		}
	}
	return n
}

// InactiveCount returns the number of INACTIVE entries.
func (r *Registry) InactiveCount() int {
	return r.Len() - r.ActiveCount()
}

// Validate checks registry-level integrity. Duplicate names would make
// id lookup ambiguous, so they are fatal.
func (r *Registry) Validate() error {
	seen := make(map[string]bool, len(r.Entries))
	var dups []string
	for _, e := range r.Entries {
		if seen[e.Name] {
			dups = append(dups, e.Name)
			continue
		}
		seen[e.Name] = true
	}
	if len(dups) > 0 {
		sort.Strings(dups)
		return errors.NewDuplicateNameError("registry", dups)
	}
	return nil
}

// IDPrefix returns the clinic-id prefix for ids minted in the given year,
// e.g. "SJ26-" for 2026.
func IDPrefix(year int) string {
	return fmt.Sprintf("SJ%02d-", year%100)
}

// maxIDNumber scans existing ids for the largest counter under the prefix.
// Ids minted in other years are ignored so each year's sequence is
// independent, matching the historical id format.
func (r *Registry) maxIDNumber(prefix string) int {
	pattern := regexp.MustCompile("^" + regexp.QuoteMeta(prefix) + `(\d+)$`)
	maxN := 0
	for _, e := range r.Entries {
		m := pattern.FindStringSubmatch(strings.TrimSpace(e.ClinicID))
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > maxN {
			maxN = n
		}
	}
	return maxN
}

// mintID formats a new clinic id under the prefix.
func mintID(prefix string, n int) string {
	return fmt.Sprintf("%s%04d", prefix, n)
}
