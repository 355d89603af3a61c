package items

import (
	"encoding/json"
	"fmt"
)

// Category is the top-level item class. Only equippable categories produce
// items; the rest are known to the classifier so they can be rejected.
type Category string

const (
	CategoryGem       Category = "gem"
	CategoryArmour    Category = "armour"
	CategoryWeapon    Category = "weapon"
	CategoryJewel     Category = "jewel"
	CategoryFlask     Category = "flask"
	CategoryAccessory Category = "accessory"

	CategoryCurrency Category = "currency"
	CategoryCard     Category = "card"
	CategoryMap      Category = "map"
	CategoryFragment Category = "fragment"
)

// Equippable reports whether items of this category can be worn.
func (c Category) Equippable() bool {
	switch c {
	case CategoryGem, CategoryArmour, CategoryWeapon, CategoryJewel, CategoryFlask, CategoryAccessory:
		return true
	default:
		return false
	}
}

// Rarity of an item.
type Rarity string

const (
	RarityNormal Rarity = "normal"
	RarityMagic  Rarity = "magic"
	RarityRare   Rarity = "rare"
	RarityUnique Rarity = "unique"
)

// PriceKind discriminates Price.
type PriceKind string

const (
	PriceNone      PriceKind = ""
	PriceChaos     PriceKind = "chaos"
	PriceAlternate PriceKind = "alternate"
	PriceCustom    PriceKind = "custom"
)

// Price is the asking price of a listed item. Currency is kept for every kind
// so Alternate prices remember which premium currency they were quoted in.
type Price struct {
	Kind     PriceKind `json:"kind,omitempty"`
	Currency string    `json:"currency,omitempty"`
	Amount   float64   `json:"amount,omitempty"`
}

// Payload is the kind-specific part of an item.
type Payload interface {
	Category() Category
	Affixes() []Mod
	sealed()
}

// Gem payload.
type Gem struct {
	Level   int `json:"level"`
	Quality int `json:"quality"`
}

// Armor payload.
type Armor struct {
	Quality    int              `json:"quality"`
	Mods       []Mod            `json:"mods"`
	Properties map[string]Value `json:"properties,omitempty"`
}

// Weapon payload.
type Weapon struct {
	Quality    int              `json:"quality"`
	Mods       []Mod            `json:"mods"`
	Properties map[string]Value `json:"properties,omitempty"`
}

// Jewel payload.
type Jewel struct {
	Mods []Mod `json:"mods"`
}

// Flask payload.
type Flask struct {
	Quality int   `json:"quality"`
	Mods    []Mod `json:"mods"`
}

// Accessory payload (rings, amulets, belts).
type Accessory struct {
	Quality int   `json:"quality"`
	Mods    []Mod `json:"mods"`
}

func (Gem) Category() Category { return CategoryGem }
func (Armor) Category() Category { return CategoryArmour }
func (Weapon) Category() Category { return CategoryWeapon }
func (Jewel) Category() Category { return CategoryJewel }
func (Flask) Category() Category { return CategoryFlask }
func (Accessory) Category() Category { return CategoryAccessory }

func (Gem) Affixes() []Mod { return nil }
func (p Armor) Affixes() []Mod { return p.Mods }
func (p Weapon) Affixes() []Mod { return p.Mods }
func (p Jewel) Affixes() []Mod { return p.Mods }
func (p Flask) Affixes() []Mod { return p.Mods }
func (p Accessory) Affixes() []Mod { return p.Mods }

func (Gem) sealed() {}
func (Armor) sealed() {}
func (Weapon) sealed() {}
func (Jewel) sealed() {}
func (Flask) sealed() {}
func (Accessory) sealed() {}

// StoredItem is one listed item as persisted by the storage layer.
type StoredItem struct {
	ID          string   `json:"id"`
	BaseType    string   `json:"basetype"`
	Category    Category `json:"category"`
	Subcategory string   `json:"subcategory"`
	Name        string   `json:"name,omitempty"`
	Rarity      Rarity   `json:"rarity,omitempty"`
	Price       Price    `json:"price"`
	Payload     Payload  `json:"-"`
}

// Mods returns the item's mods, empty for gems.
func (s StoredItem) Mods() []Mod {
	if s.Payload == nil {
		return nil
	}
	return s.Payload.Affixes()
}

// StatIDs returns the distinct stat ids carried by the item, in mod order.
func (s StoredItem) StatIDs() []string {
	return statIDs(s.Mods())
}

// RequiredItem describes an item a loadout needs. Constraints are keyed by
// stat id; a mod without an entry must merely exist on the candidate.
type RequiredItem struct {
	BaseType    string                `json:"basetype"`
	Category    Category              `json:"category"`
	Subcategory string                `json:"subcategory"`
	Name        string                `json:"name,omitempty"`
	Rarity      Rarity                `json:"rarity,omitempty"`
	Payload     Payload               `json:"-"`
	Constraints map[string]Constraint `json:"constraints,omitempty"`
}

// Mods returns the required mods.
func (r RequiredItem) Mods() []Mod {
	if r.Payload == nil {
		return nil
	}
	return r.Payload.Affixes()
}

// ConstraintFor returns the constraint attached to a stat id, Exist by default.
func (r RequiredItem) ConstraintFor(statID string) Constraint {
	if c, ok := r.Constraints[statID]; ok {
		return c
	}
	return Exists()
}

// UnknownConstraints returns the constraint keys that do not name one of the
// item's own mods.
func (r RequiredItem) UnknownConstraints() []string {
	known := make(map[string]struct{})
	for _, m := range r.Mods() {
		known[m.StatID] = struct{}{}
	}
	var unknown []string
	for statID := range r.Constraints {
		if _, ok := known[statID]; !ok {
			unknown = append(unknown, statID)
		}
	}
	return unknown
}

func statIDs(mods []Mod) []string {
	seen := make(map[string]struct{}, len(mods))
	ids := make([]string, 0, len(mods))
	for _, m := range mods {
		if _, ok := seen[m.StatID]; ok {
			continue
		}
		seen[m.StatID] = struct{}{}
		ids = append(ids, m.StatID)
	}
	return ids
}

type payloadEnvelope struct {
	Kind Category        `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// MarshalPayload encodes a payload with its kind discriminator.
func MarshalPayload(p Payload) ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return json.Marshal(payloadEnvelope{Kind: p.Category(), Data: data})
}

// UnmarshalPayload decodes a payload written by MarshalPayload.
func UnmarshalPayload(raw []byte) (Payload, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var env payloadEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode payload envelope: %w", err)
	}

	var (
		p   Payload
		err error
	)
	switch env.Kind {
	case CategoryGem:
		var v Gem
		err = json.Unmarshal(env.Data, &v)
		p = v
	case CategoryArmour:
		var v Armor
		err = json.Unmarshal(env.Data, &v)
		p = v
	case CategoryWeapon:
		var v Weapon
		err = json.Unmarshal(env.Data, &v)
		p = v
	case CategoryJewel:
		var v Jewel
		err = json.Unmarshal(env.Data, &v)
		p = v
	case CategoryFlask:
		var v Flask
		err = json.Unmarshal(env.Data, &v)
		p = v
	case CategoryAccessory:
		var v Accessory
		err = json.Unmarshal(env.Data, &v)
		p = v
	default:
		return nil, fmt.Errorf("unknown payload kind %q", env.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", env.Kind, err)
	}
	return p, nil
}

type storedAlias StoredItem

// MarshalJSON implements json.Marshaler.
func (s StoredItem) MarshalJSON() ([]byte, error) {
	payload, err := MarshalPayload(s.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		storedAlias
		Payload json.RawMessage `json:"payload"`
	}{storedAlias(s), payload})
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *StoredItem) UnmarshalJSON(b []byte) error {
	var aux struct {
		storedAlias
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	p, err := UnmarshalPayload(aux.Payload)
	if err != nil {
		return err
	}
	*s = StoredItem(aux.storedAlias)
	s.Payload = p
	return nil
}

type requiredAlias RequiredItem

// MarshalJSON implements json.Marshaler.
func (r RequiredItem) MarshalJSON() ([]byte, error) {
	payload, err := MarshalPayload(r.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		requiredAlias
		Payload json.RawMessage `json:"payload"`
	}{requiredAlias(r), payload})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *RequiredItem) UnmarshalJSON(b []byte) error {
	var aux struct {
		requiredAlias
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	p, err := UnmarshalPayload(aux.Payload)
	if err != nil {
		return err
	}
	*r = RequiredItem(aux.requiredAlias)
	r.Payload = p
	return nil
}
