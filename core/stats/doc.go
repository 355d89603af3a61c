// Package stats normalizes human-readable affix text into canonical stat ids.
//
// The normalizer is built once from a reference dataset of templated affixes
// such as "+(8-12) to Strength". Every number and parenthesised range in a
// template is replaced by a wildcard, giving a key ("+# to Strength") shared
// by all tiers of the affix and by the concrete text seen on items
// ("+22 to Strength").
//
// # Resolution
//
// Resolve looks the key up, extracts the concrete numbers and picks the first
// candidate whose range contains the first number. Affixes without numbers use
// the first candidate. When no candidate range contains the number the first
// candidate is used as well; this mirrors the reference behaviour and is
// covered by tests.
//
// # Dataset
//
// An embedded dataset ships with the package and backs Default, a
// process-wide read-only instance. Load reads an alternative dataset:
//
//	n, err := stats.Load(f)
//	mod, err := n.Resolve("+22 to Strength", items.ProvenanceExplicit)
package stats
