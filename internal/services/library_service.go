package services

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"libmate/internal/models"
	"libmate/internal/repositories"
)

// summaryTitlesPerAuthor is how many titles the summary lists per author.
const summaryTitlesPerAuthor = 3

// ─── Service Interface ────────────────────────────────────────────────────────

// LibraryService defines the operations of the library catalog and loan desk.
type LibraryService interface {
	ListAuthors() ([]models.Author, error)
	ListGenres() ([]models.Genre, error)
	ListBooks() ([]models.BookView, error)
	ListBorrowers() ([]models.Borrower, error)
	ListLoans() ([]models.LoanView, error)

	AddAuthor(name string) (*models.Author, error)
	AddGenre(name string) (*models.Genre, error)
	AddBook(title string, publishedYear int, authorID, genreID uint) (*models.Book, error)
	AddBorrower(name, phone string) (*models.Borrower, error)

	DeleteAuthor(id uint) (int64, error)
	DeleteGenre(id uint) error
	DeleteBook(id uint) error
	DeleteBorrower(id uint) (int64, error)

	FindBooksByTitle(term string) ([]models.BookView, error)
	FindBorrowerByPhone(phone string) (*models.BorrowerDetails, error)

	BorrowBook(borrowerID, bookID uint) (*models.Loan, error)
	ReturnBook(loanID uint) (*models.Loan, error)

	Summary() (*models.Summary, error)
}

// ─── Implementation ───────────────────────────────────────────────────────────

type libraryService struct {
	db           *gorm.DB
	logger       *zap.Logger
	clock        Clocker
	authorRepo   repositories.AuthorRepository
	genreRepo    repositories.GenreRepository
	bookRepo     repositories.BookRepository
	borrowerRepo repositories.BorrowerRepository
	loanRepo     repositories.LoanRepository
}

// NewLibraryService wires up all dependencies and returns a LibraryService.
func NewLibraryService(
	db *gorm.DB,
	logger *zap.Logger,
	clock Clocker,
	authorRepo repositories.AuthorRepository,
	genreRepo repositories.GenreRepository,
	bookRepo repositories.BookRepository,
	borrowerRepo repositories.BorrowerRepository,
	loanRepo repositories.LoanRepository,
) LibraryService {
	return &libraryService{
		db:           db,
		logger:       logger,
		clock:        clock,
		authorRepo:   authorRepo,
		genreRepo:    genreRepo,
		bookRepo:     bookRepo,
		borrowerRepo: borrowerRepo,
		loanRepo:     loanRepo,
	}
}

// New builds a LibraryService with the gorm backed repositories.
func New(db *gorm.DB, logger *zap.Logger, clock Clocker) LibraryService {
	return NewLibraryService(db, logger, clock,
		repositories.NewAuthorRepository(db),
		repositories.NewGenreRepository(db),
		repositories.NewBookRepository(db),
		repositories.NewBorrowerRepository(db),
		repositories.NewLoanRepository(db),
	)
}

// ─── Listing ──────────────────────────────────────────────────────────────────

func (s *libraryService) ListAuthors() ([]models.Author, error) {
	authors, err := s.authorRepo.List(nil)
	if err != nil {
		return nil, s.fail("ListAuthors", fmt.Errorf("failed to list authors: %w", err))
	}
	s.logger.Debug("authors listed", zap.Int("count", len(authors)))
	return authors, nil
}

func (s *libraryService) ListGenres() ([]models.Genre, error) {
	genres, err := s.genreRepo.List(nil)
	if err != nil {
		return nil, s.fail("ListGenres", fmt.Errorf("failed to list genres: %w", err))
	}
	s.logger.Debug("genres listed", zap.Int("count", len(genres)))
	return genres, nil
}

// ListBooks returns every book with its author and genre names and whether
// it is currently on loan.
func (s *libraryService) ListBooks() ([]models.BookView, error) {
	books, err := s.bookRepo.ListViews(nil)
	if err != nil {
		return nil, s.fail("ListBooks", fmt.Errorf("failed to list books: %w", err))
	}
	s.logger.Debug("books listed", zap.Int("count", len(books)))
	return books, nil
}

func (s *libraryService) ListBorrowers() ([]models.Borrower, error) {
	borrowers, err := s.borrowerRepo.List(nil)
	if err != nil {
		return nil, s.fail("ListBorrowers", fmt.Errorf("failed to list borrowers: %w", err))
	}
	s.logger.Debug("borrowers listed", zap.Int("count", len(borrowers)))
	return borrowers, nil
}

func (s *libraryService) ListLoans() ([]models.LoanView, error) {
	loans, err := s.loanRepo.ListViews(nil)
	if err != nil {
		return nil, s.fail("ListLoans", fmt.Errorf("failed to list loans: %w", err))
	}
	s.logger.Debug("loans listed", zap.Int("count", len(loans)))
	return loans, nil
}

// ─── Catalog ──────────────────────────────────────────────────────────────────

// AddAuthor registers an author under a name no other author uses.
func (s *libraryService) AddAuthor(name string) (*models.Author, error) {
	name = strings.TrimSpace(name)
	if err := checkInput(nameInput{Name: name}, map[string]string{"Name": "author name"}); err != nil {
		return nil, s.fail("AddAuthor", err)
	}

	author := &models.Author{Name: name}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.authorRepo.GetByName(tx, name)
		if err != nil && !isNotFound(err) {
			return err
		}
		if existing != nil {
			return duplicateError("author '%s' already exists with ID %d", name, existing.ID)
		}
		if err := s.authorRepo.Create(tx, author); err != nil {
			if isUniqueViolation(err) {
				return duplicateError("author '%s' already exists", name)
			}
			return fmt.Errorf("failed to add author: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("AddAuthor", err, zap.String("name", name))
	}
	s.logger.Info("author added", zap.Uint("author_id", author.ID), zap.String("name", name))
	return author, nil
}

// AddGenre registers a genre under a name no other genre uses.
func (s *libraryService) AddGenre(name string) (*models.Genre, error) {
	name = strings.TrimSpace(name)
	if err := checkInput(nameInput{Name: name}, map[string]string{"Name": "genre name"}); err != nil {
		return nil, s.fail("AddGenre", err)
	}

	genre := &models.Genre{Name: name}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.genreRepo.GetByName(tx, name)
		if err != nil && !isNotFound(err) {
			return err
		}
		if existing != nil {
			return duplicateError("genre '%s' already exists with ID %d", name, existing.ID)
		}
		if err := s.genreRepo.Create(tx, genre); err != nil {
			if isUniqueViolation(err) {
				return duplicateError("genre '%s' already exists", name)
			}
			return fmt.Errorf("failed to add genre: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("AddGenre", err, zap.String("name", name))
	}
	s.logger.Info("genre added", zap.Uint("genre_id", genre.ID), zap.String("name", name))
	return genre, nil
}

// AddBook creates a book linked to an existing author and genre.
func (s *libraryService) AddBook(title string, publishedYear int, authorID, genreID uint) (*models.Book, error) {
	title = strings.TrimSpace(title)
	if err := checkInput(bookInput{Title: title}, bookLabels); err != nil {
		return nil, s.fail("AddBook", err)
	}

	book := &models.Book{
		Title:         title,
		PublishedYear: publishedYear,
		AuthorID:      authorID,
		GenreID:       genreID,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		author, err := s.authorRepo.GetByID(tx, authorID)
		if err != nil {
			if isNotFound(err) {
				return notFoundError("author with ID %d not found", authorID)
			}
			return err
		}
		if _, err := s.genreRepo.GetByID(tx, genreID); err != nil {
			if isNotFound(err) {
				return notFoundError("genre with ID %d not found", genreID)
			}
			return err
		}
		if err := s.bookRepo.Create(tx, book); err != nil {
			return fmt.Errorf("failed to add book: %w", err)
		}
		book.Author = *author
		return nil
	})
	if err != nil {
		return nil, s.fail("AddBook", err, zap.String("title", title), zap.Uint("author_id", authorID), zap.Uint("genre_id", genreID))
	}
	s.logger.Info("book added", zap.Uint("book_id", book.ID), zap.String("title", title))
	return book, nil
}

// AddBorrower registers a borrower; the phone number identifies them.
func (s *libraryService) AddBorrower(name, phone string) (*models.Borrower, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	in := borrowerInput{Name: name, Phone: phone}
	if err := checkInput(in, map[string]string{"Name": "borrower name", "Phone": "phone number"}); err != nil {
		return nil, s.fail("AddBorrower", err)
	}

	borrower := &models.Borrower{Name: name, PhoneNumber: phone}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.borrowerRepo.GetByPhone(tx, phone)
		if err != nil && !isNotFound(err) {
			return err
		}
		if existing != nil {
			return duplicateError("borrower with phone number '%s' already exists (ID: %d)", phone, existing.ID)
		}
		if err := s.borrowerRepo.Create(tx, borrower); err != nil {
			if isUniqueViolation(err) {
				return duplicateError("borrower with phone number '%s' already exists", phone)
			}
			return fmt.Errorf("failed to add borrower: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("AddBorrower", err, zap.String("phone", phone))
	}
	s.logger.Info("borrower added", zap.Uint("borrower_id", borrower.ID))
	return borrower, nil
}

// ─── Deletion ─────────────────────────────────────────────────────────────────

// DeleteAuthor removes an author together with all of their books and the
// loan history of those books. It refuses while any of the books is on loan.
// It returns the number of books removed.
func (s *libraryService) DeleteAuthor(id uint) (int64, error) {
	var booksDeleted, loansDeleted int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		author, err := s.authorRepo.GetByID(tx, id)
		if err != nil {
			if isNotFound(err) {
				return notFoundError("author with ID %d not found", id)
			}
			return err
		}

		bookIDs, err := s.bookRepo.ListIDsByAuthor(tx, id)
		if err != nil {
			return err
		}
		outstanding, err := s.loanRepo.CountOutstandingByBooks(tx, bookIDs)
		if err != nil {
			return err
		}
		if outstanding > 0 {
			return conflictError("cannot delete author '%s': %d of their books currently on loan", author.Name, outstanding)
		}

		if loansDeleted, err = s.loanRepo.DeleteByBooks(tx, bookIDs); err != nil {
			return fmt.Errorf("failed to delete loans: %w", err)
		}
		if booksDeleted, err = s.bookRepo.DeleteByAuthor(tx, id); err != nil {
			return fmt.Errorf("failed to delete books: %w", err)
		}
		if err := s.authorRepo.Delete(tx, id); err != nil {
			return fmt.Errorf("failed to delete author: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, s.fail("DeleteAuthor", err, zap.Uint("author_id", id))
	}
	s.logger.Info("author deleted",
		zap.Uint("author_id", id),
		zap.Int64("books_deleted", booksDeleted),
		zap.Int64("loans_deleted", loansDeleted))
	return booksDeleted, nil
}

// DeleteGenre removes a genre that no book references.
func (s *libraryService) DeleteGenre(id uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		genre, err := s.genreRepo.GetByID(tx, id)
		if err != nil {
			if isNotFound(err) {
				return notFoundError("genre with ID %d not found", id)
			}
			return err
		}
		n, err := s.bookRepo.CountByGenre(tx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return conflictError("cannot delete genre '%s': %d books still belong to it", genre.Name, n)
		}
		if err := s.genreRepo.Delete(tx, id); err != nil {
			return fmt.Errorf("failed to delete genre: %w", err)
		}
		return nil
	})
	if err != nil {
		return s.fail("DeleteGenre", err, zap.Uint("genre_id", id))
	}
	s.logger.Info("genre deleted", zap.Uint("genre_id", id))
	return nil
}

// DeleteBook removes a book and its returned loans. A book on loan stays.
func (s *libraryService) DeleteBook(id uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		book, err := s.bookRepo.GetByID(tx, id)
		if err != nil {
			if isNotFound(err) {
				return notFoundError("book with ID %d not found", id)
			}
			return err
		}
		loan, err := s.loanRepo.FindOutstandingByBook(tx, id)
		if err != nil && !isNotFound(err) {
			return err
		}
		if loan != nil {
			return conflictError("cannot delete '%s': book currently on loan (loan ID %d)", book.Title, loan.ID)
		}
		if _, err := s.loanRepo.DeleteByBooks(tx, []uint{id}); err != nil {
			return fmt.Errorf("failed to delete loans: %w", err)
		}
		if err := s.bookRepo.Delete(tx, id); err != nil {
			return fmt.Errorf("failed to delete book: %w", err)
		}
		return nil
	})
	if err != nil {
		return s.fail("DeleteBook", err, zap.Uint("book_id", id))
	}
	s.logger.Info("book deleted", zap.Uint("book_id", id))
	return nil
}

// DeleteBorrower removes a borrower and every loan they hold, outstanding
// or not. It returns the number of loans removed.
func (s *libraryService) DeleteBorrower(id uint) (int64, error) {
	var loansDeleted int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.borrowerRepo.GetByID(tx, id); err != nil {
			if isNotFound(err) {
				return notFoundError("borrower with ID %d not found", id)
			}
			return err
		}
		var err error
		if loansDeleted, err = s.loanRepo.DeleteByBorrower(tx, id); err != nil {
			return fmt.Errorf("failed to delete loans: %w", err)
		}
		if err := s.borrowerRepo.Delete(tx, id); err != nil {
			return fmt.Errorf("failed to delete borrower: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, s.fail("DeleteBorrower", err, zap.Uint("borrower_id", id))
	}
	s.logger.Info("borrower deleted", zap.Uint("borrower_id", id), zap.Int64("loans_deleted", loansDeleted))
	return loansDeleted, nil
}

// ─── Lookup ───────────────────────────────────────────────────────────────────

// FindBooksByTitle matches part of a title, ignoring case.
func (s *libraryService) FindBooksByTitle(term string) ([]models.BookView, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, s.fail("FindBooksByTitle", validationError("search term cannot be empty"))
	}
	books, err := s.bookRepo.FindViewsByTitle(nil, term)
	if err != nil {
		return nil, s.fail("FindBooksByTitle", fmt.Errorf("failed to search books: %w", err))
	}
	s.logger.Debug("books searched", zap.String("term", term), zap.Int("count", len(books)))
	return books, nil
}

// FindBorrowerByPhone looks a borrower up by exact phone number and
// includes their loans.
func (s *libraryService) FindBorrowerByPhone(phone string) (*models.BorrowerDetails, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, s.fail("FindBorrowerByPhone", validationError("phone number cannot be empty"))
	}
	borrower, err := s.borrowerRepo.GetByPhone(nil, phone)
	if err != nil {
		if isNotFound(err) {
			return nil, s.fail("FindBorrowerByPhone", notFoundError("no borrower found with phone number '%s'", phone))
		}
		return nil, s.fail("FindBorrowerByPhone", fmt.Errorf("failed to find borrower: %w", err))
	}
	loans, err := s.loanRepo.ListViewsByBorrower(nil, borrower.ID)
	if err != nil {
		return nil, s.fail("FindBorrowerByPhone", fmt.Errorf("failed to list loans: %w", err))
	}
	s.logger.Debug("borrower found", zap.Uint("borrower_id", borrower.ID), zap.Int("loans", len(loans)))
	return &models.BorrowerDetails{Borrower: *borrower, Loans: loans}, nil
}

// ─── Loans ────────────────────────────────────────────────────────────────────

// BorrowBook lends a book that has no outstanding loan to a borrower,
// dated today.
func (s *libraryService) BorrowBook(borrowerID, bookID uint) (*models.Loan, error) {
	var loan *models.Loan
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// 1. Validate borrower exists.
		borrower, err := s.borrowerRepo.GetByID(tx, borrowerID)
		if err != nil {
			if isNotFound(err) {
				return notFoundError("borrower with ID %d not found", borrowerID)
			}
			return err
		}

		// 2. Validate book exists.
		book, err := s.bookRepo.GetByID(tx, bookID)
		if err != nil {
			if isNotFound(err) {
				return notFoundError("book with ID %d not found", bookID)
			}
			return err
		}

		// 3. A book has at most one outstanding loan.
		current, err := s.loanRepo.FindOutstandingByBook(tx, bookID)
		if err != nil && !isNotFound(err) {
			return err
		}
		if current != nil {
			return conflictError("'%s' is currently on loan (loan ID %d)", book.Title, current.ID)
		}

		// 4. Create the loan.
		loan = &models.Loan{
			LoanDate:   today(s.clock),
			BorrowerID: borrower.ID,
			BookID:     book.ID,
		}
		if err := s.loanRepo.Create(tx, loan); err != nil {
			return fmt.Errorf("failed to create loan: %w", err)
		}
		loan.Borrower = *borrower
		loan.Book = *book
		return nil
	})
	if err != nil {
		return nil, s.fail("BorrowBook", err, zap.Uint("borrower_id", borrowerID), zap.Uint("book_id", bookID))
	}
	s.logger.Info("book borrowed",
		zap.Uint("loan_id", loan.ID),
		zap.Uint("borrower_id", borrowerID),
		zap.Uint("book_id", bookID),
		zap.String("loan_date", loan.LoanDate))
	return loan, nil
}

// ReturnBook closes an outstanding loan with today's date. A loan is
// returned exactly once.
func (s *libraryService) ReturnBook(loanID uint) (*models.Loan, error) {
	var loan *models.Loan
	err := s.db.Transaction(func(tx *gorm.DB) error {
		found, err := s.loanRepo.GetByID(tx, loanID)
		if err != nil {
			if isNotFound(err) {
				return notFoundError("loan with ID %d not found", loanID)
			}
			return err
		}
		if !found.Outstanding() {
			return conflictError("loan %d already returned on %s", loanID, *found.ReturnDate)
		}

		returnDate := today(s.clock)
		updated, err := s.loanRepo.MarkReturned(tx, loanID, returnDate)
		if err != nil {
			return fmt.Errorf("failed to mark loan returned: %w", err)
		}
		if !updated {
			return conflictError("loan %d already returned", loanID)
		}
		found.ReturnDate = &returnDate
		loan = found
		return nil
	})
	if err != nil {
		return nil, s.fail("ReturnBook", err, zap.Uint("loan_id", loanID))
	}
	s.logger.Info("book returned", zap.Uint("loan_id", loanID), zap.String("return_date", *loan.ReturnDate))
	return loan, nil
}

// ─── Report ───────────────────────────────────────────────────────────────────

// Summary counts every table and lists the first titles of each author.
func (s *libraryService) Summary() (*models.Summary, error) {
	sum := &models.Summary{}
	counts := []struct {
		dst   *int64
		count func(*gorm.DB) (int64, error)
	}{
		{&sum.Authors, s.authorRepo.Count},
		{&sum.Genres, s.genreRepo.Count},
		{&sum.Books, s.bookRepo.Count},
		{&sum.Borrowers, s.borrowerRepo.Count},
		{&sum.Loans, s.loanRepo.Count},
		{&sum.OutstandingLoans, s.loanRepo.CountOutstanding},
	}
	for _, c := range counts {
		n, err := c.count(nil)
		if err != nil {
			return nil, s.fail("Summary", fmt.Errorf("failed to count rows: %w", err))
		}
		*c.dst = n
	}

	authors, err := s.authorRepo.List(nil)
	if err != nil {
		return nil, s.fail("Summary", fmt.Errorf("failed to list authors: %w", err))
	}
	for _, author := range authors {
		titles, err := s.bookRepo.ListTitlesByAuthor(nil, author.ID, summaryTitlesPerAuthor)
		if err != nil {
			return nil, s.fail("Summary", fmt.Errorf("failed to list titles: %w", err))
		}
		sum.AuthorBooks = append(sum.AuthorBooks, models.AuthorBooks{Author: author, Titles: titles})
	}
	s.logger.Debug("summary built", zap.Int64("books", sum.Books), zap.Int64("outstanding_loans", sum.OutstandingLoans))
	return sum, nil
}

// ─── Internal Helpers ─────────────────────────────────────────────────────────

// fail logs a failed operation and hands the error back. Rejected
// requests are warnings; anything else is a storage failure.
func (s *libraryService) fail(op string, err error, fields ...zap.Field) error {
	fields = append(fields, zap.String("op", op), zap.Error(err))
	if IsKind(err) {
		s.logger.Warn("operation rejected", fields...)
	} else {
		s.logger.Error("operation failed", fields...)
	}
	return err
}
