package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sejongdental/clinicqr/pkg/registry"
)

func snapshot(entries ...registry.Entry) *registry.Registry {
	return &registry.Registry{Entries: entries}
}

func entry(id, name string, status registry.Status) registry.Entry {
	return registry.Entry{ClinicID: id, Name: name, Status: status}
}

func TestDiffClassification(t *testing.T) {
	prev := snapshot(
		entry("SJ26-0001", "계속치과", registry.StatusActive),
		entry("SJ26-0002", "떠난치과", registry.StatusActive),
		entry("SJ26-0003", "돌아온치과", registry.StatusInactive),
	)
	next := snapshot(
		entry("SJ26-0001", "계속치과", registry.StatusActive),
		entry("SJ26-0002", "떠난치과", registry.StatusInactive),
		entry("SJ26-0003", "돌아온치과", registry.StatusActive),
		entry("SJ26-0004", "새치과", registry.StatusActive),
	)

	cs := registry.Diff(prev, next)
	require.Len(t, cs.Changes, 4)

	byID := make(map[string]registry.ChangeType)
	for _, ch := range cs.Changes {
		byID[ch.ClinicID] = ch.Type
	}

	assert.Equal(t, registry.ChangeUnchanged, byID["SJ26-0001"])
	assert.Equal(t, registry.ChangeDeactivated, byID["SJ26-0002"])
	assert.Equal(t, registry.ChangeReactivated, byID["SJ26-0003"])
	assert.Equal(t, registry.ChangeNew, byID["SJ26-0004"])

	assert.Equal(t, 1, cs.Summary.New)
	assert.Equal(t, 1, cs.Summary.Reactivated)
	assert.Equal(t, 1, cs.Summary.Deactivated)
	assert.Equal(t, 1, cs.Summary.Unchanged)
	assert.Equal(t, 4, cs.Summary.Total)
	assert.True(t, cs.HasChanges())
}

func TestDiffInactiveStaysUnchanged(t *testing.T) {
	prev := snapshot(entry("SJ26-0001", "잠든치과", registry.StatusInactive))
	next := snapshot(entry("SJ26-0001", "잠든치과", registry.StatusInactive))

	cs := registry.Diff(prev, next)
	require.Len(t, cs.Changes, 1)
	assert.Equal(t, registry.ChangeUnchanged, cs.Changes[0].Type)
	assert.False(t, cs.HasChanges())
}

func TestTargetsSelectsNewAndReactivated(t *testing.T) {
	prev := snapshot(
		entry("SJ26-0001", "계속치과", registry.StatusActive),
		entry("SJ26-0002", "돌아온치과", registry.StatusInactive),
	)
	next := snapshot(
		entry("SJ26-0001", "계속치과", registry.StatusActive),
		entry("SJ26-0002", "돌아온치과", registry.StatusActive),
		entry("SJ26-0003", "새치과", registry.StatusActive),
	)

	targets := registry.Diff(prev, next).Targets()
	require.Len(t, targets, 2)
	ids := []string{targets[0].ClinicID, targets[1].ClinicID}
	assert.Contains(t, ids, "SJ26-0002")
	assert.Contains(t, ids, "SJ26-0003")
}

func TestChangesetString(t *testing.T) {
	prev := snapshot(entry("SJ26-0001", "계속치과", registry.StatusActive))
	next := snapshot(
		entry("SJ26-0001", "계속치과", registry.StatusActive),
		entry("SJ26-0002", "새치과", registry.StatusActive),
	)

	s := registry.Diff(prev, next).String()
	assert.Contains(t, s, "1 new")
	assert.Contains(t, s, "1 unchanged")

	quiet := registry.Diff(prev, prev).String()
	assert.Contains(t, quiet, "No changes detected")
}
