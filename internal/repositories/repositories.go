package repositories

import (
	"gorm.io/gorm"

	"libmate/internal/models"
)

type AuthorRepository interface {
	Create(db *gorm.DB, author *models.Author) error
	List(db *gorm.DB) ([]models.Author, error)
	GetByID(db *gorm.DB, id uint) (*models.Author, error)
	GetByName(db *gorm.DB, name string) (*models.Author, error)
	Delete(db *gorm.DB, id uint) error
	Count(db *gorm.DB) (int64, error)
}

type GenreRepository interface {
	Create(db *gorm.DB, genre *models.Genre) error
	List(db *gorm.DB) ([]models.Genre, error)
	GetByID(db *gorm.DB, id uint) (*models.Genre, error)
	GetByName(db *gorm.DB, name string) (*models.Genre, error)
	Delete(db *gorm.DB, id uint) error
	Count(db *gorm.DB) (int64, error)
}

type BookRepository interface {
	Create(db *gorm.DB, book *models.Book) error
	GetByID(db *gorm.DB, id uint) (*models.Book, error)
	ListViews(db *gorm.DB) ([]models.BookView, error)
	FindViewsByTitle(db *gorm.DB, term string) ([]models.BookView, error)
	ListIDsByAuthor(db *gorm.DB, authorID uint) ([]uint, error)
	ListTitlesByAuthor(db *gorm.DB, authorID uint, limit int) ([]string, error)
	CountByGenre(db *gorm.DB, genreID uint) (int64, error)
	Delete(db *gorm.DB, id uint) error
	DeleteByAuthor(db *gorm.DB, authorID uint) (int64, error)
	Count(db *gorm.DB) (int64, error)
}

type BorrowerRepository interface {
	Create(db *gorm.DB, borrower *models.Borrower) error
	List(db *gorm.DB) ([]models.Borrower, error)
	GetByID(db *gorm.DB, id uint) (*models.Borrower, error)
	GetByPhone(db *gorm.DB, phone string) (*models.Borrower, error)
	Delete(db *gorm.DB, id uint) error
	Count(db *gorm.DB) (int64, error)
}

type LoanRepository interface {
	Create(db *gorm.DB, loan *models.Loan) error
	GetByID(db *gorm.DB, id uint) (*models.Loan, error)
	FindOutstandingByBook(db *gorm.DB, bookID uint) (*models.Loan, error)
	CountOutstandingByBooks(db *gorm.DB, bookIDs []uint) (int64, error)
	MarkReturned(db *gorm.DB, loanID uint, returnDate string) (bool, error)
	ListViews(db *gorm.DB) ([]models.LoanView, error)
	ListViewsByBorrower(db *gorm.DB, borrowerID uint) ([]models.LoanView, error)
	DeleteByBorrower(db *gorm.DB, borrowerID uint) (int64, error)
	DeleteByBooks(db *gorm.DB, bookIDs []uint) (int64, error)
	Count(db *gorm.DB) (int64, error)
	CountOutstanding(db *gorm.DB) (int64, error)
}

// concrete implementations

type authorRepository struct {
	db *gorm.DB
}

func NewAuthorRepository(db *gorm.DB) AuthorRepository {
	return &authorRepository{db: db}
}

func (r *authorRepository) Create(db *gorm.DB, author *models.Author) error {
	if db == nil {
		db = r.db
	}
	return db.Create(author).Error
}

func (r *authorRepository) List(db *gorm.DB) ([]models.Author, error) {
	if db == nil {
		db = r.db
	}
	var authors []models.Author
	if err := db.Order("id").Find(&authors).Error; err != nil {
		return nil, err
	}
	return authors, nil
}

func (r *authorRepository) GetByID(db *gorm.DB, id uint) (*models.Author, error) {
	if db == nil {
		db = r.db
	}
	var author models.Author
	if err := db.First(&author, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &author, nil
}

func (r *authorRepository) GetByName(db *gorm.DB, name string) (*models.Author, error) {
	if db == nil {
		db = r.db
	}
	var author models.Author
	if err := db.First(&author, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &author, nil
}

func (r *authorRepository) Delete(db *gorm.DB, id uint) error {
	if db == nil {
		db = r.db
	}
	return db.Delete(&models.Author{}, "id = ?", id).Error
}

func (r *authorRepository) Count(db *gorm.DB) (int64, error) {
	if db == nil {
		db = r.db
	}
	var n int64
	err := db.Model(&models.Author{}).Count(&n).Error
	return n, err
}

type genreRepository struct {
	db *gorm.DB
}

func NewGenreRepository(db *gorm.DB) GenreRepository {
	return &genreRepository{db: db}
}

func (r *genreRepository) Create(db *gorm.DB, genre *models.Genre) error {
	if db == nil {
		db = r.db
	}
	return db.Create(genre).Error
}

func (r *genreRepository) List(db *gorm.DB) ([]models.Genre, error) {
	if db == nil {
		db = r.db
	}
	var genres []models.Genre
	if err := db.Order("id").Find(&genres).Error; err != nil {
		return nil, err
	}
	return genres, nil
}

func (r *genreRepository) GetByID(db *gorm.DB, id uint) (*models.Genre, error) {
	if db == nil {
		db = r.db
	}
	var genre models.Genre
	if err := db.First(&genre, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &genre, nil
}

func (r *genreRepository) GetByName(db *gorm.DB, name string) (*models.Genre, error) {
	if db == nil {
		db = r.db
	}
	var genre models.Genre
	if err := db.First(&genre, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &genre, nil
}

func (r *genreRepository) Delete(db *gorm.DB, id uint) error {
	if db == nil {
		db = r.db
	}
	return db.Delete(&models.Genre{}, "id = ?", id).Error
}

func (r *genreRepository) Count(db *gorm.DB) (int64, error) {
	if db == nil {
		db = r.db
	}
	var n int64
	err := db.Model(&models.Genre{}).Count(&n).Error
	return n, err
}

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(db *gorm.DB, book *models.Book) error {
	if db == nil {
		db = r.db
	}
	// Author and Genre are resolved by the caller; only the row itself is inserted.
	return db.Omit("Author", "Genre").Create(book).Error
}

func (r *bookRepository) GetByID(db *gorm.DB, id uint) (*models.Book, error) {
	if db == nil {
		db = r.db
	}
	var book models.Book
	if err := db.First(&book, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) ListViews(db *gorm.DB) ([]models.BookView, error) {
	if db == nil {
		db = r.db
	}
	return scanBookViews(bookViewQuery(db))
}

func (r *bookRepository) FindViewsByTitle(db *gorm.DB, term string) ([]models.BookView, error) {
	if db == nil {
		db = r.db
	}
	// both sides go through the store's LOWER so they fold the same way
	pattern := "%" + escapeLike(term) + "%"
	return scanBookViews(bookViewQuery(db).Where(`LOWER(books.title) LIKE LOWER(?) ESCAPE '\'`, pattern))
}

func (r *bookRepository) ListIDsByAuthor(db *gorm.DB, authorID uint) ([]uint, error) {
	if db == nil {
		db = r.db
	}
	var ids []uint
	if err := db.Model(&models.Book{}).
		Where("author_id = ?", authorID).
		Order("id").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *bookRepository) ListTitlesByAuthor(db *gorm.DB, authorID uint, limit int) ([]string, error) {
	if db == nil {
		db = r.db
	}
	var titles []string
	q := db.Model(&models.Book{}).Where("author_id = ?", authorID).Order("id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Pluck("title", &titles).Error; err != nil {
		return nil, err
	}
	return titles, nil
}

func (r *bookRepository) CountByGenre(db *gorm.DB, genreID uint) (int64, error) {
	if db == nil {
		db = r.db
	}
	var n int64
	err := db.Model(&models.Book{}).Where("genre_id = ?", genreID).Count(&n).Error
	return n, err
}

func (r *bookRepository) Delete(db *gorm.DB, id uint) error {
	if db == nil {
		db = r.db
	}
	return db.Delete(&models.Book{}, "id = ?", id).Error
}

func (r *bookRepository) DeleteByAuthor(db *gorm.DB, authorID uint) (int64, error) {
	if db == nil {
		db = r.db
	}
	res := db.Where("author_id = ?", authorID).Delete(&models.Book{})
	return res.RowsAffected, res.Error
}

func (r *bookRepository) Count(db *gorm.DB) (int64, error) {
	if db == nil {
		db = r.db
	}
	var n int64
	err := db.Model(&models.Book{}).Count(&n).Error
	return n, err
}

type borrowerRepository struct {
	db *gorm.DB
}

func NewBorrowerRepository(db *gorm.DB) BorrowerRepository {
	return &borrowerRepository{db: db}
}

func (r *borrowerRepository) Create(db *gorm.DB, borrower *models.Borrower) error {
	if db == nil {
		db = r.db
	}
	return db.Create(borrower).Error
}

func (r *borrowerRepository) List(db *gorm.DB) ([]models.Borrower, error) {
	if db == nil {
		db = r.db
	}
	var borrowers []models.Borrower
	if err := db.Order("id").Find(&borrowers).Error; err != nil {
		return nil, err
	}
	return borrowers, nil
}

func (r *borrowerRepository) GetByID(db *gorm.DB, id uint) (*models.Borrower, error) {
	if db == nil {
		db = r.db
	}
	var borrower models.Borrower
	if err := db.First(&borrower, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &borrower, nil
}

func (r *borrowerRepository) GetByPhone(db *gorm.DB, phone string) (*models.Borrower, error) {
	if db == nil {
		db = r.db
	}
	var borrower models.Borrower
	if err := db.First(&borrower, "phone_number = ?", phone).Error; err != nil {
		return nil, err
	}
	return &borrower, nil
}

func (r *borrowerRepository) Delete(db *gorm.DB, id uint) error {
	if db == nil {
		db = r.db
	}
	return db.Delete(&models.Borrower{}, "id = ?", id).Error
}

func (r *borrowerRepository) Count(db *gorm.DB) (int64, error) {
	if db == nil {
		db = r.db
	}
	var n int64
	err := db.Model(&models.Borrower{}).Count(&n).Error
	return n, err
}

type loanRepository struct {
	db *gorm.DB
}

func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(db *gorm.DB, loan *models.Loan) error {
	if db == nil {
		db = r.db
	}
	return db.Omit("Borrower", "Book").Create(loan).Error
}

func (r *loanRepository) GetByID(db *gorm.DB, id uint) (*models.Loan, error) {
	if db == nil {
		db = r.db
	}
	var loan models.Loan
	if err := db.First(&loan, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *loanRepository) FindOutstandingByBook(db *gorm.DB, bookID uint) (*models.Loan, error) {
	if db == nil {
		db = r.db
	}
	var loan models.Loan
	err := db.Where("book_id = ? AND return_date IS NULL", bookID).
		Order("id").
		First(&loan).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *loanRepository) CountOutstandingByBooks(db *gorm.DB, bookIDs []uint) (int64, error) {
	if db == nil {
		db = r.db
	}
	if len(bookIDs) == 0 {
		return 0, nil
	}
	var n int64
	err := db.Model(&models.Loan{}).
		Where("book_id IN ? AND return_date IS NULL", bookIDs).
		Count(&n).Error
	return n, err
}

// MarkReturned sets the return date of an outstanding loan. It reports
// false when the loan was already returned.
func (r *loanRepository) MarkReturned(db *gorm.DB, loanID uint, returnDate string) (bool, error) {
	if db == nil {
		db = r.db
	}
	res := db.Model(&models.Loan{}).
		Where("id = ? AND return_date IS NULL", loanID).
		Update("return_date", returnDate)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *loanRepository) ListViews(db *gorm.DB) ([]models.LoanView, error) {
	if db == nil {
		db = r.db
	}
	return scanLoanViews(loanViewQuery(db))
}

func (r *loanRepository) ListViewsByBorrower(db *gorm.DB, borrowerID uint) ([]models.LoanView, error) {
	if db == nil {
		db = r.db
	}
	return scanLoanViews(loanViewQuery(db).Where("loans.borrower_id = ?", borrowerID))
}

func (r *loanRepository) DeleteByBorrower(db *gorm.DB, borrowerID uint) (int64, error) {
	if db == nil {
		db = r.db
	}
	res := db.Where("borrower_id = ?", borrowerID).Delete(&models.Loan{})
	return res.RowsAffected, res.Error
}

func (r *loanRepository) DeleteByBooks(db *gorm.DB, bookIDs []uint) (int64, error) {
	if db == nil {
		db = r.db
	}
	if len(bookIDs) == 0 {
		return 0, nil
	}
	res := db.Where("book_id IN ?", bookIDs).Delete(&models.Loan{})
	return res.RowsAffected, res.Error
}

func (r *loanRepository) Count(db *gorm.DB) (int64, error) {
	if db == nil {
		db = r.db
	}
	var n int64
	err := db.Model(&models.Loan{}).Count(&n).Error
	return n, err
}

func (r *loanRepository) CountOutstanding(db *gorm.DB) (int64, error) {
	if db == nil {
		db = r.db
	}
	var n int64
	err := db.Model(&models.Loan{}).Where("return_date IS NULL").Count(&n).Error
	return n, err
}
