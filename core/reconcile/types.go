package reconcile

// Index maps an item id to the set of stat ids recorded for it.
type Index map[string]map[string]struct{}

// Add records one (item, stat) pair.
func (x Index) Add(itemID, statID string) {
	s, ok := x[itemID]
	if !ok {
		s = make(map[string]struct{})
		x[itemID] = s
	}
	s[statID] = struct{}{}
}

// Result is the reconciliation output for one item that differs between
// the primary store and the snapshot.
type Result struct {
	// ID is the item id.
	ID string `json:"id"`

	// PrimaryPresent indicates the item has mods in the primary store.
	PrimaryPresent bool `json:"primary_present"`

	// SnapshotPresent indicates the item appears in the snapshot.
	SnapshotPresent bool `json:"snapshot_present"`

	// Mismatch lists stat ids recorded on one side only, e.g.
	// "maximum_life: primary only".
	Mismatch []string `json:"mismatch"`
}

// Summary provides aggregate counts for a report.
type Summary struct {
	// TotalItems is the number of distinct items seen on either side.
	TotalItems int `json:"total_items"`

	// MissingSnapshot counts items the snapshot does not know.
	MissingSnapshot int `json:"missing_snapshot"`

	// Orphaned counts snapshot items no longer in the primary store.
	Orphaned int `json:"orphaned"`

	// Mismatches counts items present on both sides with different stats.
	Mismatches int `json:"mismatches"`
}

// Report is the outcome of Compare.
type Report struct {
	// Results holds one entry per drifting item, ordered by id.
	Results []Result `json:"results"`

	// Summary provides aggregate counts.
	Summary Summary `json:"summary"`
}

// Clean reports whether both sides agree.
func (r *Report) Clean() bool {
	return len(r.Results) == 0
}
