package reconcile

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Compare loads both sides concurrently and reports every item whose stat
// set differs between them.
func Compare(ctx context.Context, primary, snapshot Adapter) (*Report, error) {
	var left, right Index
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		left, err = primary.Load(gctx)
		return err
	})
	g.Go(func() (err error) {
		right, err = snapshot.Load(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	union := buildUnion(left, right)
	report := &Report{Results: []Result{}, Summary: Summary{TotalItems: len(union)}}
	for _, id := range union {
		r, drift := buildResult(id, left, right)
		if !drift {
			continue
		}
		switch {
		case !r.SnapshotPresent:
			report.Summary.MissingSnapshot++
		case !r.PrimaryPresent:
			report.Summary.Orphaned++
		default:
			report.Summary.Mismatches++
		}
		report.Results = append(report.Results, r)
	}
	return report, nil
}

// buildUnion returns the sorted ids present on either side.
func buildUnion(left, right Index) []string {
	seen := make(map[string]struct{}, len(left))
	for id := range left {
		seen[id] = struct{}{}
	}
	for id := range right {
		seen[id] = struct{}{}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// buildResult compares one item and reports whether the sides differ.
func buildResult(id string, left, right Index) (Result, bool) {
	l, inLeft := left[id]
	r, inRight := right[id]
	result := Result{
		ID:              id,
		PrimaryPresent:  inLeft,
		SnapshotPresent: inRight,
		Mismatch:        []string{},
	}
	for statID := range l {
		if _, ok := r[statID]; !ok {
			result.Mismatch = append(result.Mismatch, statID+": primary only")
		}
	}
	for statID := range r {
		if _, ok := l[statID]; !ok {
			result.Mismatch = append(result.Mismatch, statID+": snapshot only")
		}
	}
	sort.Strings(result.Mismatch)
	return result, len(result.Mismatch) > 0
}
