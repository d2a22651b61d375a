package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"libmate/internal/config"
	"libmate/internal/models"
)

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "lib.db?_pragma=foreign_keys(1)", sqliteDSN("lib.db"))
	assert.Equal(t, "file:lib.db?mode=rwc&_pragma=foreign_keys(1)", sqliteDSN("file:lib.db?mode=rwc"))
}

func TestOpen_CreatesSchema(t *testing.T) {
	cfg := config.Default().Database
	cfg.Path = filepath.Join(t.TempDir(), "open_test.db")

	db, err := Open(&cfg, zap.NewNop())
	require.NoError(t, err)
	defer Close(db)

	for _, table := range []string{"authors", "genres", "books", "borrowers", "loans"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	// foreign keys are enforced: a book cannot point at a missing author
	err = db.Create(&models.Book{Title: "Orphan", AuthorID: 99, GenreID: 99}).Error
	assert.Error(t, err)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	cfg := config.Default().Database
	cfg.Driver = "oracle"
	_, err := Open(&cfg, zap.NewNop())
	assert.EqualError(t, err, `unsupported database driver "oracle"`)
}

func TestReset(t *testing.T) {
	cfg := config.Default().Database
	cfg.Path = filepath.Join(t.TempDir(), "reset_test.db")
	db, err := Open(&cfg, zap.NewNop())
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, db.Create(&models.Author{Name: "Jane Doe"}).Error)
	require.NoError(t, Reset(db))

	var n int64
	require.NoError(t, db.Model(&models.Author{}).Count(&n).Error)
	assert.Zero(t, n)
}
