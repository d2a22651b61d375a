package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"libmate/internal/models"
	"libmate/internal/repositories"
)

var errDiskFull = errors.New("disk I/O error")

// brokenBookRepository fails the book step of an author cascade, after
// the loans of those books have already been deleted.
type brokenBookRepository struct {
	repositories.BookRepository
}

func (brokenBookRepository) DeleteByAuthor(*gorm.DB, uint) (int64, error) {
	return 0, errDiskFull
}

// brokenBorrowerRepository fails the last step of a borrower cascade.
type brokenBorrowerRepository struct {
	repositories.BorrowerRepository
}

func (brokenBorrowerRepository) Delete(*gorm.DB, uint) error {
	return errDiskFull
}

func serviceWith(db *gorm.DB, books repositories.BookRepository, borrowers repositories.BorrowerRepository) LibraryService {
	return NewLibraryService(db, zap.NewNop(), &fixedClock{now: testDay},
		repositories.NewAuthorRepository(db),
		repositories.NewGenreRepository(db),
		books,
		borrowers,
		repositories.NewLoanRepository(db),
	)
}

func TestDeleteAuthor_RollsBackOnFailure(t *testing.T) {
	svc, db, _ := newTestService(t)
	c := seedScenario(t, svc)
	loan, err := svc.BorrowBook(c.john, c.bookID)
	require.NoError(t, err)
	_, err = svc.ReturnBook(loan.ID)
	require.NoError(t, err)

	broken := serviceWith(db,
		brokenBookRepository{repositories.NewBookRepository(db)},
		repositories.NewBorrowerRepository(db))

	_, err = broken.DeleteAuthor(c.authorID)
	require.ErrorIs(t, err, errDiskFull)
	assert.False(t, IsKind(err), "storage failures stay unclassified")

	loans, err := svc.ListLoans()
	require.NoError(t, err)
	assert.Len(t, loans, 1, "loans deleted before the failure must be restored")
	books, err := svc.ListBooks()
	require.NoError(t, err)
	assert.Len(t, books, 1)
	authors, err := svc.ListAuthors()
	require.NoError(t, err)
	assert.Len(t, authors, 1)
}

func TestDeleteBorrower_RollsBackOnFailure(t *testing.T) {
	svc, db, _ := newTestService(t)
	c := seedScenario(t, svc)
	_, err := svc.BorrowBook(c.john, c.bookID)
	require.NoError(t, err)

	broken := serviceWith(db,
		repositories.NewBookRepository(db),
		brokenBorrowerRepository{repositories.NewBorrowerRepository(db)})

	_, err = broken.DeleteBorrower(c.john)
	require.ErrorIs(t, err, errDiskFull)
	assert.False(t, IsKind(err))

	loans, err := svc.ListLoans()
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, models.LoanStatusOutstanding, loans[0].Status)
	assert.Equal(t, models.BookStatusOnLoan, statusOf(t, svc, c.bookID))
}

func TestIsUniqueViolation(t *testing.T) {
	_, db, _ := newTestService(t)
	authors := repositories.NewAuthorRepository(db)

	require.NoError(t, authors.Create(nil, &models.Author{Name: "Jane Doe"}))
	err := authors.Create(nil, &models.Author{Name: "Jane Doe"})
	require.Error(t, err)
	assert.True(t, isUniqueViolation(err))

	assert.False(t, isUniqueViolation(nil))
	assert.False(t, isUniqueViolation(errDiskFull))
	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueViolation(errors.New("constraint failed: UNIQUE constraint failed: authors.name (2067)")))
}
