package seeds

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"libmate/internal/config"
	"libmate/internal/models"
	"libmate/internal/repositories"
)

// GenreNames is the fixed genre list every seeded catalog starts from.
var GenreNames = []string{
	"Fiction", "Non-Fiction", "Science Fiction", "Fantasy", "Mystery",
	"Biography", "Thriller", "History", "Poetry",
}

const (
	minYear          = 1900
	maxYear          = 2023
	maxLoanDays      = 60
	returnedFraction = 0.7
	maxUniqueTries   = 100
)

// Seeder fills an empty schema with randomized sample rows.
type Seeder struct {
	db     *gorm.DB
	logger *zap.Logger
	faker  *gofakeit.Faker
	now    time.Time

	authors   repositories.AuthorRepository
	genres    repositories.GenreRepository
	books     repositories.BookRepository
	borrowers repositories.BorrowerRepository
	loans     repositories.LoanRepository
}

// NewSeeder returns a seeder. A zero randomSeed picks a random one.
func NewSeeder(db *gorm.DB, logger *zap.Logger, randomSeed int64, now time.Time) *Seeder {
	return &Seeder{
		db:        db,
		logger:    logger,
		faker:     gofakeit.New(randomSeed),
		now:       now,
		authors:   repositories.NewAuthorRepository(db),
		genres:    repositories.NewGenreRepository(db),
		books:     repositories.NewBookRepository(db),
		borrowers: repositories.NewBorrowerRepository(db),
		loans:     repositories.NewLoanRepository(db),
	}
}

// RunAllSeeds inserts authors, genres, books, borrowers and loans in one
// transaction. Loans never give a book a second outstanding loan.
func (s *Seeder) RunAllSeeds(cfg config.SeedConfig) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		authors, err := s.seedAuthors(tx, cfg.Authors)
		if err != nil {
			return err
		}
		genres, err := s.seedGenres(tx)
		if err != nil {
			return err
		}
		books, err := s.seedBooks(tx, cfg.Books, authors, genres)
		if err != nil {
			return err
		}
		borrowers, err := s.seedBorrowers(tx, cfg.Borrowers)
		if err != nil {
			return err
		}
		return s.seedLoans(tx, cfg.Loans, borrowers, books)
	})
}

func (s *Seeder) seedAuthors(tx *gorm.DB, n int) ([]models.Author, error) {
	s.logger.Info("creating authors", zap.Int("count", n))
	names, err := s.unique(n, s.faker.Name)
	if err != nil {
		return nil, fmt.Errorf("author names: %w", err)
	}
	authors := make([]models.Author, 0, n)
	for _, name := range names {
		author := models.Author{Name: name}
		if err := s.authors.Create(tx, &author); err != nil {
			return nil, fmt.Errorf("failed to seed author %q: %w", name, err)
		}
		authors = append(authors, author)
	}
	return authors, nil
}

func (s *Seeder) seedGenres(tx *gorm.DB) ([]models.Genre, error) {
	s.logger.Info("creating genres", zap.Int("count", len(GenreNames)))
	genres := make([]models.Genre, 0, len(GenreNames))
	for _, name := range GenreNames {
		genre := models.Genre{Name: name}
		if err := s.genres.Create(tx, &genre); err != nil {
			return nil, fmt.Errorf("failed to seed genre %q: %w", name, err)
		}
		genres = append(genres, genre)
	}
	return genres, nil
}

func (s *Seeder) seedBooks(tx *gorm.DB, n int, authors []models.Author, genres []models.Genre) ([]models.Book, error) {
	if len(authors) == 0 || len(genres) == 0 {
		return nil, nil
	}
	s.logger.Info("creating books", zap.Int("count", n))
	books := make([]models.Book, 0, n)
	for i := 0; i < n; i++ {
		book := models.Book{
			Title:         s.faker.BookTitle(),
			PublishedYear: s.faker.IntRange(minYear, maxYear),
			AuthorID:      authors[s.faker.IntRange(0, len(authors)-1)].ID,
			GenreID:       genres[s.faker.IntRange(0, len(genres)-1)].ID,
		}
		if err := s.books.Create(tx, &book); err != nil {
			return nil, fmt.Errorf("failed to seed book %q: %w", book.Title, err)
		}
		books = append(books, book)
	}
	return books, nil
}

func (s *Seeder) seedBorrowers(tx *gorm.DB, n int) ([]models.Borrower, error) {
	s.logger.Info("creating borrowers", zap.Int("count", n))
	phones, err := s.unique(n, s.faker.PhoneFormatted)
	if err != nil {
		return nil, fmt.Errorf("borrower phones: %w", err)
	}
	borrowers := make([]models.Borrower, 0, n)
	for _, phone := range phones {
		borrower := models.Borrower{Name: s.faker.Name(), PhoneNumber: phone}
		if err := s.borrowers.Create(tx, &borrower); err != nil {
			return nil, fmt.Errorf("failed to seed borrower %q: %w", phone, err)
		}
		borrowers = append(borrowers, borrower)
	}
	return borrowers, nil
}

func (s *Seeder) seedLoans(tx *gorm.DB, n int, borrowers []models.Borrower, books []models.Book) error {
	if len(borrowers) == 0 || len(books) == 0 {
		return nil
	}
	s.logger.Info("creating loans", zap.Int("count", n))
	yearStart := time.Date(s.now.Year(), time.January, 1, 0, 0, 0, 0, s.now.Location())
	onLoan := make(map[uint]bool)

	for i := 0; i < n; i++ {
		book := books[s.faker.IntRange(0, len(books)-1)]
		loanDate := s.faker.DateRange(yearStart, s.now)
		loan := models.Loan{
			LoanDate:   loanDate.Format(models.DateLayout),
			BorrowerID: borrowers[s.faker.IntRange(0, len(borrowers)-1)].ID,
			BookID:     book.ID,
		}
		if onLoan[book.ID] || s.faker.Float64() < returnedFraction {
			returned := loanDate.AddDate(0, 0, s.faker.IntRange(1, maxLoanDays)).Format(models.DateLayout)
			loan.ReturnDate = &returned
		} else {
			onLoan[book.ID] = true
		}
		if err := s.loans.Create(tx, &loan); err != nil {
			return fmt.Errorf("failed to seed loan: %w", err)
		}
	}
	return nil
}

// unique draws n distinct values from gen.
func (s *Seeder) unique(n int, gen func() string) ([]string, error) {
	seen := make(map[string]bool, n)
	values := make([]string, 0, n)
	for tries := 0; len(values) < n; tries++ {
		if tries > n*maxUniqueTries {
			return nil, fmt.Errorf("could only generate %d of %d distinct values", len(values), n)
		}
		v := gen()
		if seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	return values, nil
}
