package items

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrMissingID is returned when a feed item carries no id.
var ErrMissingID = errors.New("item has no id")

// Resolver turns affix text into a normalized Mod.
type Resolver interface {
	Resolve(text string, provenance Provenance) (Mod, error)
}

// Builder converts raw feed items into typed items.
type Builder struct {
	resolver   Resolver
	classifier *Classifier
}

// NewBuilder creates a builder.
func NewBuilder(resolver Resolver, classifier *Classifier) *Builder {
	return &Builder{resolver: resolver, classifier: classifier}
}

// BuildStored converts a feed item. Any classification or normalization
// failure rejects the whole item.
func (b *Builder) BuildStored(raw RawItem) (*StoredItem, error) {
	if raw.ID == "" {
		return nil, ErrMissingID
	}
	t, err := b.build(raw)
	if err != nil {
		return nil, fmt.Errorf("item %s: %w", raw.ID, err)
	}
	price, _ := ParsePrice(raw.Note)
	return &StoredItem{
		ID:          raw.ID,
		BaseType:    t.baseType,
		Category:    t.class.Category,
		Subcategory: t.class.Subcategory,
		Name:        raw.Name,
		Rarity:      raw.Rarity,
		Price:       price,
		Payload:     t.payload,
	}, nil
}

// BuildRequired converts an item description into a RequiredItem. An affix
// that does not normalize makes the description unusable, so the error is
// returned to the caller.
func (b *Builder) BuildRequired(raw RawItem, constraints map[string]Constraint) (*RequiredItem, error) {
	t, err := b.build(raw)
	if err != nil {
		return nil, err
	}
	req := &RequiredItem{
		BaseType:    t.baseType,
		Category:    t.class.Category,
		Subcategory: t.class.Subcategory,
		Name:        raw.Name,
		Rarity:      raw.Rarity,
		Payload:     t.payload,
		Constraints: constraints,
	}
	for statID, c := range constraints {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("stat %s: %w", statID, err)
		}
	}
	if unknown := req.UnknownConstraints(); len(unknown) > 0 {
		return nil, fmt.Errorf("constraints reference stats not on the item: %s", strings.Join(unknown, ", "))
	}
	return req, nil
}

type typed struct {
	baseType string
	class    Class
	payload  Payload
}

func (b *Builder) build(raw RawItem) (typed, error) {
	class, baseType, err := b.classifier.Classify(raw.BaseType)
	if err != nil {
		return typed{}, err
	}
	mods, err := b.resolveMods(raw.Mods)
	if err != nil {
		return typed{}, err
	}
	props := ParseProperties(raw.Properties)
	quality := int(props["quality"].Number())
	delete(props, "quality")

	var payload Payload
	switch class.Category {
	case CategoryGem:
		payload = Gem{Level: int(props["level"].Number()), Quality: quality}
	case CategoryArmour:
		payload = Armor{Quality: quality, Mods: mods, Properties: nonEmpty(props)}
	case CategoryWeapon:
		payload = Weapon{Quality: quality, Mods: mods, Properties: nonEmpty(props)}
	case CategoryJewel:
		payload = Jewel{Mods: mods}
	case CategoryFlask:
		payload = Flask{Quality: quality, Mods: mods}
	case CategoryAccessory:
		payload = Accessory{Quality: quality, Mods: mods}
	default:
		return typed{}, fmt.Errorf("%w: %s", ErrNotEquippable, class.Category)
	}
	return typed{baseType: baseType, class: class, payload: payload}, nil
}

func (b *Builder) resolveMods(raw map[Provenance][]string) ([]Mod, error) {
	var mods []Mod
	for _, p := range Provenances {
		for _, text := range raw[p] {
			// Multi-line affixes arrive joined with newlines; each line is its own stat.
			for _, line := range strings.Split(text, "\n") {
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				m, err := b.resolver.Resolve(line, p)
				if err != nil {
					return nil, err
				}
				mods = append(mods, m)
			}
		}
	}
	return mods, nil
}

var propertyNumber = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ParseProperty splits a "Name: value" line into a snake_case name and its
// numeric value. Lines without a number are reported with ok=false.
func ParseProperty(line string) (string, Value, bool) {
	name, rest, found := strings.Cut(line, ":")
	if !found {
		return "", Value{}, false
	}
	key := strings.ToLower(strings.Join(strings.Fields(name), "_"))
	nums := propertyNumber.FindAllString(rest, 2)
	switch len(nums) {
	case 0:
		return key, Value{}, false
	case 1:
		v, _ := strconv.ParseFloat(nums[0], 64)
		return key, Exact(v), true
	default:
		lo, _ := strconv.ParseFloat(nums[0], 64)
		hi, _ := strconv.ParseFloat(nums[1], 64)
		if strings.Contains(rest, "-") {
			return key, Range(lo, hi), true
		}
		return key, Exact(lo), true
	}
}

// ParseProperties parses every property line, keeping the numeric ones.
func ParseProperties(lines []string) map[string]Value {
	props := make(map[string]Value, len(lines))
	for _, line := range lines {
		if key, v, ok := ParseProperty(line); ok {
			props[key] = v
		}
	}
	return props
}

func nonEmpty(m map[string]Value) map[string]Value {
	if len(m) == 0 {
		return nil
	}
	return m
}
