package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"libmate/internal/config"
	"libmate/internal/database"
)

// fixedClock always reports the same instant.
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

var testDay = time.Date(2024, time.March, 5, 10, 30, 0, 0, time.UTC)

// newTestService returns a service backed by a fresh sqlite file which is
// removed when the test ends.
func newTestService(t *testing.T) (LibraryService, *gorm.DB, *fixedClock) {
	t.Helper()
	cfg := config.Default().Database
	cfg.Path = filepath.Join(t.TempDir(), "libmate_test.db")

	db, err := database.Open(&cfg, zap.NewNop())
	require.NoError(t, err, "failed in creating a test database")
	t.Cleanup(func() { _ = database.Close(db) })

	clock := &fixedClock{now: testDay}
	return New(db, zap.NewNop(), clock), db, clock
}

type catalog struct {
	authorID uint
	genreID  uint
	bookID   uint
	john     uint
	mary     uint
}

// seedScenario creates the Jane Doe / Fiction / Sample Title catalog with
// two borrowers.
func seedScenario(t *testing.T, svc LibraryService) catalog {
	t.Helper()
	author, err := svc.AddAuthor("Jane Doe")
	require.NoError(t, err)
	genre, err := svc.AddGenre("Fiction")
	require.NoError(t, err)
	book, err := svc.AddBook("Sample Title", 2020, author.ID, genre.ID)
	require.NoError(t, err)
	john, err := svc.AddBorrower("John Smith", "555-1234")
	require.NoError(t, err)
	mary, err := svc.AddBorrower("Mary Major", "555-9876")
	require.NoError(t, err)
	return catalog{
		authorID: author.ID,
		genreID:  genre.ID,
		bookID:   book.ID,
		john:     john.ID,
		mary:     mary.ID,
	}
}
