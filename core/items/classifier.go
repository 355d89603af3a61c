package items

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrUnknownBase is returned when a base type is not in the table.
	ErrUnknownBase = errors.New("unknown base type")
	// ErrNotEquippable is returned for known bases that cannot be worn.
	ErrNotEquippable = errors.New("base type is not equippable")
)

//go:embed data/bases.json
var defaultBases []byte

// Class is the classification of a base type.
type Class struct {
	Category    Category `json:"category"`
	Subcategory string   `json:"subcategory"`
}

// Classifier maps base type strings to their Class. It is read-only after
// construction and safe for concurrent use.
type Classifier struct {
	bases map[string]Class
	// names sorted longest first, used for the contained-name fallback
	names []string
}

// NewClassifier builds a classifier from a base table.
func NewClassifier(bases map[string]Class) *Classifier {
	c := &Classifier{
		bases: make(map[string]Class, len(bases)),
		names: make([]string, 0, len(bases)),
	}
	for name, class := range bases {
		c.bases[name] = class
		c.names = append(c.names, name)
	}
	sort.Slice(c.names, func(i, j int) bool {
		if len(c.names[i]) != len(c.names[j]) {
			return len(c.names[i]) > len(c.names[j])
		}
		return c.names[i] < c.names[j]
	})
	return c
}

// LoadClassifier reads a JSON object of base type to class.
func LoadClassifier(r io.Reader) (*Classifier, error) {
	var bases map[string]Class
	if err := json.NewDecoder(r).Decode(&bases); err != nil {
		return nil, fmt.Errorf("decode base table: %w", err)
	}
	return NewClassifier(bases), nil
}

var (
	defaultClassifier     *Classifier
	defaultClassifierOnce sync.Once
)

// DefaultClassifier returns the classifier built from the embedded table.
func DefaultClassifier() *Classifier {
	defaultClassifierOnce.Do(func() {
		var bases map[string]Class
		if err := json.Unmarshal(defaultBases, &bases); err != nil {
			panic(fmt.Sprintf("items: embedded base table is invalid: %v", err))
		}
		defaultClassifier = NewClassifier(bases)
	})
	return defaultClassifier
}

// ClassifierFromConfig returns the embedded classifier, or loads cfg.BasesPath.
func ClassifierFromConfig(cfg Config) (*Classifier, error) {
	if cfg.BasesPath == "" {
		return DefaultClassifier(), nil
	}
	f, err := os.Open(cfg.BasesPath)
	if err != nil {
		return nil, fmt.Errorf("open base table: %w", err)
	}
	defer f.Close()
	return LoadClassifier(f)
}

// Len returns the number of known base types.
func (c *Classifier) Len() int {
	return len(c.bases)
}

// Classify resolves a base type. Names wrapped in affix words
// ("Sturdy Iron Hat of the Bear") fall back to the longest known base type
// they contain. The matched base name is returned with the class.
func (c *Classifier) Classify(baseType string) (Class, string, error) {
	baseType = strings.TrimSpace(baseType)
	class, ok := c.bases[baseType]
	name := baseType
	if !ok {
		for _, candidate := range c.names {
			if strings.Contains(baseType, candidate) {
				class, name, ok = c.bases[candidate], candidate, true
				break
			}
		}
	}
	if !ok {
		return Class{}, "", fmt.Errorf("%w: %q", ErrUnknownBase, baseType)
	}
	if !class.Category.Equippable() {
		return Class{}, "", fmt.Errorf("%w: %q is %s", ErrNotEquippable, baseType, class.Category)
	}
	return class, name, nil
}
