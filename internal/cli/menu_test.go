package cli

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"libmate/internal/config"
	"libmate/internal/database"
	"libmate/internal/models"
	"libmate/internal/services"
)

type fixedClock struct{}

func (fixedClock) Now() time.Time {
	return time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC)
}

func newTestLibrary(t *testing.T) services.LibraryService {
	t.Helper()
	cfg := config.Default().Database
	cfg.Path = filepath.Join(t.TempDir(), "menu_test.db")
	db, err := database.Open(&cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return services.New(db, zap.NewNop(), fixedClock{})
}

// runMenu feeds one answer per line to the menu and returns what it printed.
func runMenu(t *testing.T, svc services.LibraryService, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	menu := NewMenu(svc, zap.NewNop(), in, &out)
	require.NoError(t, menu.Run())
	return out.String()
}

func TestMenu_ExitChoice(t *testing.T) {
	out := runMenu(t, newTestLibrary(t), "0")
	assert.Contains(t, out, "--- LibMate Manager CLI ---")
	assert.Contains(t, out, "18. Library Summary")
	assert.Contains(t, out, "Exiting LibMate Manager. Goodbye!")
}

func TestMenu_EndOfInputExits(t *testing.T) {
	var out bytes.Buffer
	menu := NewMenu(newTestLibrary(t), zap.NewNop(), strings.NewReader(""), &out)
	assert.NoError(t, menu.Run())
	assert.Contains(t, out.String(), "Goodbye!")
}

func TestMenu_InvalidChoice(t *testing.T) {
	out := runMenu(t, newTestLibrary(t), "42", "0")
	assert.Contains(t, out, "Invalid choice. Please try again.")
}

func TestMenu_BorrowReturnWorkflow(t *testing.T) {
	svc := newTestLibrary(t)
	out := runMenu(t, svc,
		"6", "Jane Doe",
		"7", "Fiction",
		"8", "Sample Title", "2020", "1", "1",
		"9", "John Smith", "555-1234",
		"16", "1", "1",
		"3",
		"17", "1",
		"17", "1",
		"3",
		"0",
	)

	assert.Contains(t, out, "Author 'Jane Doe' added with ID 1.")
	assert.Contains(t, out, "Genre 'Fiction' added with ID 1.")
	assert.Contains(t, out, "Book 'Sample Title' by Jane Doe added with ID: 1.")
	assert.Contains(t, out, "Borrower 'John Smith' added with ID: 1.")
	assert.Contains(t, out, "'Sample Title' loaned to John Smith on 2024-03-05 (loan ID 1).")
	assert.Contains(t, out, "Status: On Loan")
	assert.Contains(t, out, "Loan 1 returned on 2024-03-05.")
	assert.Contains(t, out, "Error: loan 1 already returned on 2024-03-05")
	assert.Contains(t, out, "Status: Available")
}

func TestMenu_ReportsRejectedInput(t *testing.T) {
	svc := newTestLibrary(t)
	out := runMenu(t, svc,
		"6", "",
		"8", "Title", "soon",
		"12", "abc",
		"15", "555-0000",
		"0",
	)
	assert.Contains(t, out, "Error: author name cannot be empty")
	assert.Contains(t, out, `Error: invalid year "soon", please enter a number`)
	assert.Contains(t, out, `Error: invalid book ID "abc", please enter a positive number`)
	assert.Contains(t, out, "Error: no borrower found with phone number '555-0000'")
	assert.Contains(t, out, "Goodbye!")
}

func TestMenu_FindAndSummary(t *testing.T) {
	svc := newTestLibrary(t)
	author, err := svc.AddAuthor("Jane Doe")
	require.NoError(t, err)
	genre, err := svc.AddGenre("Fiction")
	require.NoError(t, err)
	_, err = svc.AddBook("Sample Title", 2020, author.ID, genre.ID)
	require.NoError(t, err)

	out := runMenu(t, svc, "14", "SAMPLE", "14", "nothing", "18", "0")
	assert.Contains(t, out, "--- Books matching 'SAMPLE' ---")
	assert.Contains(t, out, "Title: 'Sample Title', Year: 2020, Author: 'Jane Doe', Genre: 'Fiction', Status: Available")
	assert.Contains(t, out, "No books found matching 'nothing'.")
	assert.Contains(t, out, "Authors: 1, Genres: 1, Books: 1, Borrowers: 0, Loans: 0 (0 outstanding)")
	assert.Contains(t, out, "Books: 'Sample Title'")
}

func TestMenu_PauseWaitsForEnter(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("1\n\n0\n")
	menu := NewMenu(newTestLibrary(t), zap.NewNop(), in, &out, WithPause(true))
	require.NoError(t, menu.Run())
	assert.Contains(t, out.String(), "No authors found in the library.")
	assert.Contains(t, out.String(), "Press Enter to continue...")
	assert.Contains(t, out.String(), "Goodbye!")
}

// failingLibrary reports a storage failure for every listing.
type failingLibrary struct {
	services.LibraryService
}

func (failingLibrary) ListAuthors() ([]models.Author, error) {
	return nil, errors.New("database is locked")
}

func TestMenu_ReportsStorageFailure(t *testing.T) {
	out := runMenu(t, failingLibrary{}, "1", "0")
	assert.Contains(t, out, "Error: list all authors failed: database is locked")
	assert.Contains(t, out, "Goodbye!")
}
