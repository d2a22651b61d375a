package main

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libmate/internal/models"
	"libmate/internal/services"
)

// deskLibrary lends the first caller the book, refuses the others and
// fails outright for borrower 99.
type deskLibrary struct {
	services.LibraryService
	mu     sync.Mutex
	loaned bool
}

func (d *deskLibrary) BorrowBook(borrowerID, bookID uint) (*models.Loan, error) {
	if borrowerID == 99 {
		return nil, errors.New("database is locked")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.loaned {
		return nil, &services.Error{Kind: services.ErrConflict, Msg: "book currently on loan"}
	}
	d.loaned = true
	return &models.Loan{ID: 1, BorrowerID: borrowerID, BookID: bookID}, nil
}

func TestRaceBorrows(t *testing.T) {
	results, err := raceBorrows(&deskLibrary{}, 7, []uint{1, 2, 3})
	require.NoError(t, err, "refusals are not storage failures")
	require.Len(t, results, 3)

	var loaned int
	for _, r := range results {
		if r.Err == nil {
			loaned++
			assert.EqualValues(t, 1, r.LoanID)
			continue
		}
		assert.ErrorIs(t, r.Err, services.ErrConflict)
	}
	assert.Equal(t, 1, loaned)
}

func TestRaceBorrows_ReportsStorageFailure(t *testing.T) {
	results, err := raceBorrows(&deskLibrary{}, 7, []uint{1, 99})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "borrower 99: database is locked")
	require.Len(t, results, 2)
	assert.Error(t, results[1].Err)
}
