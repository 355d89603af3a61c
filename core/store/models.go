package store

import (
	"fmt"
	"time"

	"stash-pricer/core/items"

	"gorm.io/datatypes"
)

// ItemRecord is the items table row.
type ItemRecord struct {
	ID            string `gorm:"primaryKey;size:64"`
	BaseType      string `gorm:"column:basetype;size:128;index"`
	Category      string `gorm:"size:32;index:idx_items_class"`
	Subcategory   string `gorm:"size:32;index:idx_items_class"`
	Name          string `gorm:"size:128;index"`
	Rarity        string `gorm:"size:16"`
	PriceKind     string `gorm:"size:16"`
	PriceCurrency string `gorm:"size:32"`
	PriceAmount   float64
	Payload       datatypes.JSON
	UpdatedAt     time.Time
}

func (ItemRecord) TableName() string { return "items" }

// ModRecord is one (item, stat) pair.
type ModRecord struct {
	ItemID string `gorm:"primaryKey;size:64"`
	StatID string `gorm:"primaryKey;size:128;index"`
}

func (ModRecord) TableName() string { return "item_mods" }

// MembershipRecord maps an item to the stash that currently lists it.
type MembershipRecord struct {
	ItemID   string `gorm:"primaryKey;size:64"`
	StashKey string `gorm:"size:128;index"`
}

func (MembershipRecord) TableName() string { return "stash_items" }

// CursorRecord is the single ingest cursor row.
type CursorRecord struct {
	ID        uint   `gorm:"primaryKey"`
	Token     string `gorm:"size:255"`
	UpdatedAt time.Time
}

func (CursorRecord) TableName() string { return "ingest_cursor" }

const cursorRowID = 1

// Models lists the tables owned by this package, for migrations.
func Models() []any {
	return []any{&ItemRecord{}, &ModRecord{}, &MembershipRecord{}, &CursorRecord{}}
}

func toRecord(item *items.StoredItem) (ItemRecord, error) {
	payload, err := items.MarshalPayload(item.Payload)
	if err != nil {
		return ItemRecord{}, fmt.Errorf("encode payload: %w", err)
	}
	return ItemRecord{
		ID:            item.ID,
		BaseType:      item.BaseType,
		Category:      string(item.Category),
		Subcategory:   item.Subcategory,
		Name:          item.Name,
		Rarity:        string(item.Rarity),
		PriceKind:     string(item.Price.Kind),
		PriceCurrency: item.Price.Currency,
		PriceAmount:   item.Price.Amount,
		Payload:       datatypes.JSON(payload),
	}, nil
}

func (r ItemRecord) toItem() (items.StoredItem, error) {
	payload, err := items.UnmarshalPayload(r.Payload)
	if err != nil {
		return items.StoredItem{}, fmt.Errorf("item %s: %w", r.ID, err)
	}
	return items.StoredItem{
		ID:          r.ID,
		BaseType:    r.BaseType,
		Category:    items.Category(r.Category),
		Subcategory: r.Subcategory,
		Name:        r.Name,
		Rarity:      items.Rarity(r.Rarity),
		Price: items.Price{
			Kind:     items.PriceKind(r.PriceKind),
			Currency: r.PriceCurrency,
			Amount:   r.PriceAmount,
		},
		Payload: payload,
	}, nil
}

func toItems(records []ItemRecord) ([]items.StoredItem, error) {
	out := make([]items.StoredItem, 0, len(records))
	for _, r := range records {
		item, err := r.toItem()
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}
