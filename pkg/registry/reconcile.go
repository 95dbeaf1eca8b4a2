package registry

import (
	"sort"

	"github.com/agentstation/utc"

	"github.com/sejongdental/clinicqr/pkg/errors"
)

// ClinicRecord is one row of the current input batch. Name may be raw;
// Reconcile normalizes it before any matching.
type ClinicRecord struct {
	Name     string
	Address  string
	Phone    string
	Director string
	Homepage string

	// Row is the 1-based spreadsheet row, kept for error reporting.
	Row int
}

// Result is a fully reconciled snapshot. It is only produced when the whole
// batch validated cleanly; a failed run yields an error and no Result, so
// callers can never persist a half-reconciled registry.
type Result struct {
	Registry *Registry
	NewIDs   []string
}

// Reconcile merges the current input batch into the previous registry
// snapshot and returns the next snapshot.
//
// Every existing entry keeps its clinic id and gains a freshly computed
// status: ACTIVE when its name is in the batch, INACTIVE otherwise. Names
// never seen before are appended with newly minted ids under the given
// year's prefix, in name order so runs are deterministic. Empty incoming
// metadata fields keep the previously recorded value.
//
// Validation is fail-fast: an empty normalized name, a duplicate name in
// the batch, or a duplicate name in the previous registry aborts before
// anything is computed.
func Reconcile(records []ClinicRecord, year int, prev *Registry) (*Result, error) {
	if prev == nil {
		prev = New()
	}
	if err := prev.Validate(); err != nil {
		return nil, err
	}

	byName := make(map[string]ClinicRecord, len(records))
	var dups []string
	for _, rec := range records {
		name := NormalizeName(rec.Name)
		if name == "" {
			ve := errors.NewValidationError("clinic name", rec.Name, "empty after normalization")
			ve.Row = rec.Row
			return nil, ve
		}
		if _, ok := byName[name]; ok {
			dups = append(dups, name)
			continue
		}
		rec.Name = name
		byName[name] = rec
	}
	if len(dups) > 0 {
		sort.Strings(dups)
		return nil, errors.NewDuplicateNameError("input", dups)
	}

	now := utc.Now()
	next := &Registry{Entries: make([]Entry, 0, len(prev.Entries)+len(byName))}

	for _, e := range prev.Entries {
		rec, active := byName[e.Name]
		if active {
			e.Status = StatusActive
			e.LastSeenAt = now
			e.Address = mergeField(rec.Address, e.Address)
			e.Phone = mergeField(rec.Phone, e.Phone)
			e.Director = mergeField(rec.Director, e.Director)
			e.Homepage = mergeField(rec.Homepage, e.Homepage)
		} else {
			e.Status = StatusInactive
		}
		next.Entries = append(next.Entries, e)
	}

	newNames := make([]string, 0, len(byName))
	for name := range byName {
		if _, known := prev.ByName(name); !known {
			newNames = append(newNames, name)
		}
	}
	sort.Strings(newNames)

	prefix := IDPrefix(year)
	counter := prev.maxIDNumber(prefix)
	newIDs := make([]string, 0, len(newNames))
	for _, name := range newNames {
		rec := byName[name]
		counter++
		id := mintID(prefix, counter)
		newIDs = append(newIDs, id)
		next.Entries = append(next.Entries, Entry{
			ClinicID:    id,
			Name:        name,
			Status:      StatusActive,
			FirstSeenAt: now,
			LastSeenAt:  now,
			Address:     rec.Address,
			Phone:       rec.Phone,
			Director:    rec.Director,
			Homepage:    rec.Homepage,
		})
	}

	return &Result{Registry: next, NewIDs: newIDs}, nil
}

// mergeField keeps the old value when the incoming one is empty, so a
// half-filled spreadsheet cannot erase known data.
func mergeField(incoming, previous string) string {
	if incoming != "" {
		return incoming
	}
	return previous
}
