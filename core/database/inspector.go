package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ColumnInfo is one row of SHOW COLUMNS. SQLite rows are translated into the
// same shape so the migrate report reads the same on both drivers.
type ColumnInfo struct {
	Field   string
	Type    string
	Null    string
	Key     string
	Default *string // nil for a NULL default
	Extra   string
}

// GetTableColumns lists tableName's columns with lowercased names and types.
func GetTableColumns(db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	var columns []ColumnInfo
	if db.Dialector.Name() == "sqlite" {
		type SQLiteColumn struct {
			Cid        int
			Name       string
			Type       string
			Notnull    int
			DefaultVal *string
			Pk         int
		}
		var sqliteCols []SQLiteColumn
		if err := db.Raw(fmt.Sprintf("PRAGMA table_info('%s')", tableName)).Scan(&sqliteCols).Error; err != nil {
			return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
		}
		for _, col := range sqliteCols {
			columns = append(columns, ColumnInfo{
				Field: strings.ToLower(col.Name),
				Type:  strings.ToLower(col.Type),
				Null:  nullFlag(col.Notnull),
				Key:   pkFlag(col.Pk),
			})
		}
		return columns, nil
	}

	err := db.Raw(fmt.Sprintf("SHOW COLUMNS FROM `%s`", tableName)).Scan(&columns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
	}
	for i := range columns {
		columns[i].Type = strings.ToLower(columns[i].Type)
		columns[i].Field = strings.ToLower(columns[i].Field)
	}
	return columns, nil
}

func nullFlag(notNull int) string {
	if notNull != 0 {
		return "NO"
	}
	return "YES"
}

func pkFlag(pk int) string {
	if pk != 0 {
		return "PRI"
	}
	return ""
}
