package stats

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"stash-pricer/core/items"
)

// ErrNotFound is returned when affix text matches no known template.
var ErrNotFound = errors.New("stat not found")

//go:embed data/stats.json
var defaultDataset []byte

const (
	wildcard      = "#"
	numberPattern = `(\d+(?:\.\d+)?)`
)

var (
	rangeGroup  = regexp.MustCompile(`\(\s*\d+(?:\.\d+)?\s*-\s*\d+(?:\.\d+)?\s*\)`)
	number      = regexp.MustCompile(`\d+(?:\.\d+)?`)
	firstNumber = regexp.MustCompile(`\(\s*(\d+(?:\.\d+)?)\s*-\s*(\d+(?:\.\d+)?)\s*\)|(\d+(?:\.\d+)?)`)
)

// Entry is one dataset row: a stat id and one templated affix text for it.
type Entry struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type candidate struct {
	statID   string
	min, max float64
	hasRange bool
}

type template struct {
	pattern    *regexp.Regexp
	candidates []candidate
}

// Normalizer resolves affix text to mods. It never changes after construction.
type Normalizer struct {
	templates map[string]*template
}

// Template returns the lookup key for affix text: numbers and ranges replaced
// by the wildcard, surrounding whitespace trimmed.
func Template(text string) string {
	key := rangeGroup.ReplaceAllString(strings.TrimSpace(text), wildcard)
	return number.ReplaceAllString(key, wildcard)
}

// New builds a normalizer from dataset entries. Entries keep their order
// within a template, which decides ties and the fallback candidate.
func New(entries []Entry) (*Normalizer, error) {
	n := &Normalizer{templates: make(map[string]*template)}
	for i, e := range entries {
		if e.ID == "" || strings.TrimSpace(e.Text) == "" {
			return nil, fmt.Errorf("dataset entry %d: id and text are required", i)
		}
		key := Template(e.Text)
		t, ok := n.templates[key]
		if !ok {
			t = &template{pattern: compile(key)}
			n.templates[key] = t
		}
		t.candidates = append(t.candidates, newCandidate(e))
	}
	return n, nil
}

// Load reads a JSON array of entries.
func Load(r io.Reader) (*Normalizer, error) {
	var entries []Entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode stat dataset: %w", err)
	}
	return New(entries)
}

var (
	defaultNormalizer *Normalizer
	defaultOnce       sync.Once
)

// Default returns the normalizer built from the embedded dataset.
func Default() *Normalizer {
	defaultOnce.Do(func() {
		var entries []Entry
		if err := json.Unmarshal(defaultDataset, &entries); err != nil {
			panic(fmt.Sprintf("stats: embedded dataset is invalid: %v", err))
		}
		n, err := New(entries)
		if err != nil {
			panic(fmt.Sprintf("stats: embedded dataset is invalid: %v", err))
		}
		defaultNormalizer = n
	})
	return defaultNormalizer
}

// FromConfig returns Default, or loads cfg.DatasetPath when set.
func FromConfig(cfg Config) (*Normalizer, error) {
	if cfg.DatasetPath == "" {
		return Default(), nil
	}
	f, err := os.Open(cfg.DatasetPath)
	if err != nil {
		return nil, fmt.Errorf("open stat dataset: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Len returns the number of distinct templates.
func (n *Normalizer) Len() int {
	return len(n.templates)
}

// Resolve normalizes one affix text.
func (n *Normalizer) Resolve(text string, provenance items.Provenance) (items.Mod, error) {
	text = strings.TrimSpace(text)
	t, ok := n.templates[Template(text)]
	if !ok {
		return items.Mod{}, fmt.Errorf("%w: %q", ErrNotFound, text)
	}

	var values []float64
	if m := t.pattern.FindStringSubmatch(text); m != nil {
		for _, s := range m[1:] {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return items.Mod{}, fmt.Errorf("parse %q in %q: %w", s, text, err)
			}
			values = append(values, v)
		}
	}

	c := t.pick(values)
	mod := items.Mod{Text: text, Provenance: provenance, StatID: c.statID}
	switch len(values) {
	case 0:
	case 1:
		mod.Value = items.Exact(values[0])
	default:
		mod.Value = items.Range(values[0], values[1])
	}
	return mod, nil
}

func (t *template) pick(values []float64) candidate {
	if len(values) == 0 {
		return t.candidates[0]
	}
	v := values[0]
	for _, c := range t.candidates {
		if c.hasRange && v >= c.min && v <= c.max {
			return c
		}
	}
	return t.candidates[0]
}

func compile(key string) *regexp.Regexp {
	parts := strings.Split(key, wildcard)
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile("^" + strings.Join(parts, numberPattern) + "$")
}

func newCandidate(e Entry) candidate {
	c := candidate{statID: e.ID}
	m := firstNumber.FindStringSubmatch(e.Text)
	switch {
	case m == nil:
	case m[1] != "":
		c.min, _ = strconv.ParseFloat(m[1], 64)
		c.max, _ = strconv.ParseFloat(m[2], 64)
		c.hasRange = true
	default:
		c.min, _ = strconv.ParseFloat(m[3], 64)
		c.max = c.min
		c.hasRange = true
	}
	return c
}
