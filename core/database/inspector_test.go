package database

import (
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func TestGetTableColumnsSQLite(t *testing.T) {
	db, err := Connect(Config{Driver: "sqlite", Name: filepath.Join(t.TempDir(), "cols.db")})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE ingest_cursor (id INTEGER PRIMARY KEY, Next_Change_ID TEXT NOT NULL, updated_at DATETIME)").Error)

	columns, err := GetTableColumns(db, "ingest_cursor")
	require.NoError(t, err)
	require.Len(t, columns, 3)

	byName := make(map[string]ColumnInfo, len(columns))
	for _, col := range columns {
		byName[col.Field] = col
	}
	assert.Equal(t, "PRI", byName["id"].Key)
	assert.Equal(t, "text", byName["next_change_id"].Type)
	assert.Equal(t, "NO", byName["next_change_id"].Null)
	assert.Equal(t, "YES", byName["updated_at"].Null)
	assert.Empty(t, byName["updated_at"].Key)

	// PRAGMA table_info yields no rows for an unknown table.
	cols, err := GetTableColumns(db, "missing")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestGetTableColumnsMySQL(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("SHOW COLUMNS FROM `builds`")).
		WillReturnRows(sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
			AddRow("ID", "VARCHAR(36)", "NO", "PRI", nil, "").
			AddRow("processing", "TINYINT(1)", "NO", "MUL", "0", ""))

	columns, err := GetTableColumns(db, "builds")
	require.NoError(t, err)
	require.Len(t, columns, 2)
	assert.Equal(t, "id", columns[0].Field)
	assert.Equal(t, "varchar(36)", columns[0].Type)
	assert.Nil(t, columns[0].Default)
	require.NotNil(t, columns[1].Default)
	assert.Equal(t, "0", *columns[1].Default)
	assert.NoError(t, mock.ExpectationsWereMet())
}
