package seeds

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"libmate/internal/config"
	"libmate/internal/database"
	"libmate/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := config.Default().Database
	cfg.Path = filepath.Join(t.TempDir(), "seed_test.db")
	db, err := database.Open(&cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func count(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestRunAllSeeds(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	cfg := config.SeedConfig{Authors: 5, Books: 20, Borrowers: 6, Loans: 40, RandomSeed: 7}

	require.NoError(t, NewSeeder(db, zap.NewNop(), cfg.RandomSeed, now).RunAllSeeds(cfg))

	assert.EqualValues(t, 5, count(t, db, &models.Author{}))
	assert.EqualValues(t, len(GenreNames), count(t, db, &models.Genre{}))
	assert.EqualValues(t, 20, count(t, db, &models.Book{}))
	assert.EqualValues(t, 6, count(t, db, &models.Borrower{}))
	assert.EqualValues(t, 40, count(t, db, &models.Loan{}))

	// no book may end up with two outstanding loans
	type perBook struct {
		BookID uint
		N      int64
	}
	var rows []perBook
	require.NoError(t, db.Model(&models.Loan{}).
		Select("book_id, COUNT(*) AS n").
		Where("return_date IS NULL").
		Group("book_id").
		Scan(&rows).Error)
	for _, r := range rows {
		assert.EqualValues(t, 1, r.N, "book %d", r.BookID)
	}

	var loans []models.Loan
	require.NoError(t, db.Find(&loans).Error)
	for _, l := range loans {
		loanDate, err := time.Parse(models.DateLayout, l.LoanDate)
		require.NoError(t, err)
		assert.Equal(t, 2024, loanDate.Year())
		if l.ReturnDate != nil {
			returned, err := time.Parse(models.DateLayout, *l.ReturnDate)
			require.NoError(t, err)
			assert.True(t, returned.After(loanDate))
		}
	}
}

func TestRunAllSeeds_Reset(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	cfg := config.SeedConfig{Authors: 2, Books: 3, Borrowers: 2, Loans: 2, RandomSeed: 1}

	require.NoError(t, NewSeeder(db, zap.NewNop(), cfg.RandomSeed, now).RunAllSeeds(cfg))
	require.NoError(t, database.Reset(db))
	require.NoError(t, NewSeeder(db, zap.NewNop(), cfg.RandomSeed, now).RunAllSeeds(cfg))

	assert.EqualValues(t, 3, count(t, db, &models.Book{}))
	assert.EqualValues(t, len(GenreNames), count(t, db, &models.Genre{}))
}

func TestRunAllSeeds_EmptyCatalog(t *testing.T) {
	db := newTestDB(t)
	cfg := config.SeedConfig{Loans: 5}

	require.NoError(t, NewSeeder(db, zap.NewNop(), 3, time.Now()).RunAllSeeds(cfg))
	assert.Zero(t, count(t, db, &models.Book{}))
	assert.Zero(t, count(t, db, &models.Loan{}))
}
