package registry

import (
	"fmt"
	"strings"
)

// ChangeType classifies a clinic's status transition between two
// registry snapshots.
type ChangeType string

const (
	// ChangeNew indicates the clinic id did not exist in the previous snapshot.
	ChangeNew ChangeType = "NEW"
	// ChangeReactivated indicates an INACTIVE clinic returned to the input.
	ChangeReactivated ChangeType = "REACTIVATED"
	// ChangeDeactivated indicates a previously ACTIVE clinic left the input.
	ChangeDeactivated ChangeType = "DEACTIVATED"
	// ChangeUnchanged indicates the status is identical to the previous run.
	ChangeUnchanged ChangeType = "UNCHANGED"
)

// Change is the classification of one clinic for this run.
type Change struct {
	ClinicID   string
	ClinicName string
	Type       ChangeType
}

// ChangesetSummary provides per-type counts for a changeset.
type ChangesetSummary struct {
	New         int
	Reactivated int
	Deactivated int
	Unchanged   int
	Total       int
}

// Changeset holds this run's classification of every known clinic.
type Changeset struct {
	Changes []Change
	Summary ChangesetSummary
}

// Diff classifies every entry of the next snapshot against the previous one,
// keyed by clinic id. Entries present only in prev cannot occur because the
// registry is append-only; next is always a superset of prev.
func Diff(prev, next *Registry) *Changeset {
	prevByID := make(map[string]Entry, prev.Len())
	for _, e := range prev.Entries {
		if e.ClinicID == "" {
			continue
		}
		prevByID[e.ClinicID] = e
	}

	cs := &Changeset{Changes: make([]Change, 0, next.Len())}
	for _, e := range next.Entries {
		var ct ChangeType
		old, known := prevByID[e.ClinicID]
		switch {
		case !known:
			ct = ChangeNew
		case old.Status == StatusActive && e.Status == StatusInactive:
			ct = ChangeDeactivated
		case old.Status == StatusInactive && e.Status == StatusActive:
			ct = ChangeReactivated
		default:
			ct = ChangeUnchanged
		}
		cs.Changes = append(cs.Changes, Change{
			ClinicID:   e.ClinicID,
			ClinicName: e.Name,
			Type:       ct,
		})
	}
	cs.Summary = summarize(cs.Changes)
	return cs
}

// HasChanges returns true if any clinic changed status this run.
func (c *Changeset) HasChanges() bool {
	return c.Summary.New+c.Summary.Reactivated+c.Summary.Deactivated > 0
}

// Targets returns the changes that warrant operator delivery:
// newly joined and reactivated clinics.
func (c *Changeset) Targets() []Change {
	var targets []Change
	for _, ch := range c.Changes {
		if ch.Type == ChangeNew || ch.Type == ChangeReactivated {
			targets = append(targets, ch)
		}
	}
	return targets
}

// String returns a human-readable summary of the changeset.
func (c *Changeset) String() string {
	if !c.HasChanges() {
		return fmt.Sprintf("No changes detected (%d unchanged)", c.Summary.Unchanged)
	}

	var parts []string
	if c.Summary.New > 0 {
		parts = append(parts, fmt.Sprintf("%d new", c.Summary.New))
	}
	if c.Summary.Reactivated > 0 {
		parts = append(parts, fmt.Sprintf("%d reactivated", c.Summary.Reactivated))
	}
	if c.Summary.Deactivated > 0 {
		parts = append(parts, fmt.Sprintf("%d deactivated", c.Summary.Deactivated))
	}
	if c.Summary.Unchanged > 0 {
		parts = append(parts, fmt.Sprintf("%d unchanged", c.Summary.Unchanged))
	}
	return fmt.Sprintf("Changes: %s (total %d clinics)", strings.Join(parts, ", "), c.Summary.Total)
}

func summarize(changes []Change) ChangesetSummary {
	var s ChangesetSummary
	for _, ch := range changes {
		switch ch.Type {
		case ChangeNew:
			s.New++
		case ChangeReactivated:
			s.Reactivated++
		case ChangeDeactivated:
			s.Deactivated++
		case ChangeUnchanged:
			s.Unchanged++
		}
	}
	s.Total = len(changes)
	return s
}
