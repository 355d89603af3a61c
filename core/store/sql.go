package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"stash-pricer/core/items"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultBatchSize = 500

// SQLStore is the relational Store.
type SQLStore struct {
	db        *gorm.DB
	batchSize int
}

// NewSQLStore wraps an open connection. batchSize <= 0 uses the default.
func NewSQLStore(db *gorm.DB, batchSize int) *SQLStore {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &SQLStore{db: db, batchSize: batchSize}
}

// Migrate creates or updates the store's tables.
func (s *SQLStore) Migrate() error {
	if err := s.db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("migrate store: %w", err)
	}
	return nil
}

// InTx implements Store.
func (s *SQLStore) InTx(ctx context.Context, fn func(w Writer) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&SQLStore{db: tx, batchSize: s.batchSize})
	})
}

// BulkInsertItems implements Writer.
func (s *SQLStore) BulkInsertItems(ctx context.Context, stashKey string, list []*items.StoredItem) (int, error) {
	if len(list) == 0 {
		return 0, nil
	}

	// Later duplicates of an id win, as they would in a sequence of upserts.
	latest := make(map[string]*items.StoredItem, len(list))
	order := make([]string, 0, len(list))
	for _, item := range list {
		if _, ok := latest[item.ID]; !ok {
			order = append(order, item.ID)
		}
		latest[item.ID] = item
	}

	records := make([]ItemRecord, 0, len(order))
	members := make([]MembershipRecord, 0, len(order))
	var mods []ModRecord
	for _, id := range order {
		item := latest[id]
		rec, err := toRecord(item)
		if err != nil {
			return 0, fmt.Errorf("item %s: %w", id, err)
		}
		records = append(records, rec)
		members = append(members, MembershipRecord{ItemID: id, StashKey: stashKey})
		for _, statID := range item.StatIDs() {
			mods = append(mods, ModRecord{ItemID: id, StatID: statID})
		}
	}

	var written int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(records, s.batchSize)
		if res.Error != nil {
			return fmt.Errorf("upsert items: %w", res.Error)
		}
		written = res.RowsAffected

		if err := s.deleteIn(tx, &ModRecord{}, "item_id", order); err != nil {
			return fmt.Errorf("replace item mods: %w", err)
		}
		if len(mods) > 0 {
			if err := tx.CreateInBatches(mods, s.batchSize).Error; err != nil {
				return fmt.Errorf("insert item mods: %w", err)
			}
		}

		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "item_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"stash_key"}),
		}).CreateInBatches(members, s.batchSize).Error
		if err != nil {
			return fmt.Errorf("record stash membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(written), nil
}

// ClearStash implements Writer.
func (s *SQLStore) ClearStash(ctx context.Context, stashKey string) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&MembershipRecord{}).Where("stash_key = ?", stashKey).Order("item_id").Pluck("item_id", &ids).Error; err != nil {
			return fmt.Errorf("read stash membership: %w", err)
		}
		if len(ids) == 0 {
			return nil
		}
		if err := s.deleteIn(tx, &ItemRecord{}, "id", ids); err != nil {
			return fmt.Errorf("delete items: %w", err)
		}
		if err := s.deleteIn(tx, &ModRecord{}, "item_id", ids); err != nil {
			return fmt.Errorf("delete item mods: %w", err)
		}
		if err := tx.Where("stash_key = ?", stashKey).Delete(&MembershipRecord{}).Error; err != nil {
			return fmt.Errorf("delete stash membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// deleteIn deletes rows whose column is in values, in batches to stay under
// placeholder limits.
func (s *SQLStore) deleteIn(tx *gorm.DB, model any, column string, values []string) error {
	for start := 0; start < len(values); start += s.batchSize {
		end := min(start+s.batchSize, len(values))
		if err := tx.Where(column+" IN ?", values[start:end]).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

// Search implements Searcher.
func (s *SQLStore) Search(ctx context.Context, f Filter) ([]items.StoredItem, error) {
	q := s.db.WithContext(ctx).Model(&ItemRecord{})
	if f.BaseType != "" {
		q = q.Where("basetype = ?", f.BaseType)
	}
	if f.Category != "" {
		q = q.Where("category = ?", string(f.Category))
	}
	if f.Subcategory != "" {
		q = q.Where("subcategory = ?", f.Subcategory)
	}
	if f.Name != "" {
		q = q.Where("name = ?", f.Name)
	}
	if statIDs := distinct(f.StatIDs); len(statIDs) > 0 {
		sub := s.db.Model(&ModRecord{}).
			Select("item_id").
			Where("stat_id IN ?", statIDs).
			Group("item_id").
			Having("COUNT(DISTINCT stat_id) = ?", len(statIDs))
		q = q.Where("id IN (?)", sub)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var records []ItemRecord
	if err := q.Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	return toItems(records)
}

// GetItems implements Store.
func (s *SQLStore) GetItems(ctx context.Context, ids []string) ([]items.StoredItem, error) {
	var records []ItemRecord
	for start := 0; start < len(ids); start += s.batchSize {
		end := min(start+s.batchSize, len(ids))
		var batch []ItemRecord
		if err := s.db.WithContext(ctx).Where("id IN ?", ids[start:end]).Order("id").Find(&batch).Error; err != nil {
			return nil, fmt.Errorf("get items: %w", err)
		}
		records = append(records, batch...)
	}
	if len(ids) > s.batchSize {
		sortRecords(records)
	}
	return toItems(records)
}

// ScanMods implements Store.
func (s *SQLStore) ScanMods(ctx context.Context, fn func(itemID, statID string) error) error {
	rows, err := s.db.WithContext(ctx).Model(&ModRecord{}).Select("item_id", "stat_id").Order("item_id").Rows()
	if err != nil {
		return fmt.Errorf("scan item mods: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m ModRecord
		if err := s.db.ScanRows(rows, &m); err != nil {
			return fmt.Errorf("scan item mod row: %w", err)
		}
		if err := fn(m.ItemID, m.StatID); err != nil {
			return err
		}
	}
	return rows.Err()
}

// CountItems implements Store.
func (s *SQLStore) CountItems(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&ItemRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

// GetCursor implements Store.
func (s *SQLStore) GetCursor(ctx context.Context) (string, error) {
	var rec CursorRecord
	err := s.db.WithContext(ctx).First(&rec, cursorRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get cursor: %w", err)
	}
	return rec.Token, nil
}

// SetCursor implements Writer.
func (s *SQLStore) SetCursor(ctx context.Context, token string) error {
	rec := CursorRecord{ID: cursorRowID, Token: token}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("set cursor: %w", err)
	}
	return nil
}

func distinct(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func sortRecords(records []ItemRecord) {
	slices.SortFunc(records, func(a, b ItemRecord) int { return strings.Compare(a.ID, b.ID) })
}
