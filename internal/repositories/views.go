package repositories

import (
	"strings"

	"gorm.io/gorm"

	"libmate/internal/models"
)

type bookViewRow struct {
	ID            uint
	Title         string
	PublishedYear int
	AuthorID      uint
	AuthorName    *string
	GenreID       uint
	GenreName     *string
	OnLoan        bool
}

type loanViewRow struct {
	ID           uint
	BorrowerID   uint
	BorrowerName *string
	BookID       uint
	BookTitle    *string
	LoanDate     string
	ReturnDate   *string
}

// missingName is shown in place of a related row that no longer resolves.
const missingName = "N/A"

func bookViewQuery(db *gorm.DB) *gorm.DB {
	return db.Table("books").
		Select(`books.id, books.title, books.published_year,
			books.author_id, authors.name AS author_name,
			books.genre_id, genres.name AS genre_name,
			EXISTS (SELECT 1 FROM loans WHERE loans.book_id = books.id AND loans.return_date IS NULL) AS on_loan`).
		Joins("LEFT JOIN authors ON authors.id = books.author_id").
		Joins("LEFT JOIN genres ON genres.id = books.genre_id").
		Order("books.id")
}

func scanBookViews(q *gorm.DB) ([]models.BookView, error) {
	var rows []bookViewRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	views := make([]models.BookView, 0, len(rows))
	for _, row := range rows {
		status := models.BookStatusAvailable
		if row.OnLoan {
			status = models.BookStatusOnLoan
		}
		views = append(views, models.BookView{
			ID:            row.ID,
			Title:         row.Title,
			PublishedYear: row.PublishedYear,
			AuthorID:      row.AuthorID,
			AuthorName:    nameOrMissing(row.AuthorName),
			GenreID:       row.GenreID,
			GenreName:     nameOrMissing(row.GenreName),
			Status:        status,
		})
	}
	return views, nil
}

func loanViewQuery(db *gorm.DB) *gorm.DB {
	return db.Table("loans").
		Select(`loans.id, loans.borrower_id, borrowers.name AS borrower_name,
			loans.book_id, books.title AS book_title,
			loans.loan_date, loans.return_date`).
		Joins("LEFT JOIN borrowers ON borrowers.id = loans.borrower_id").
		Joins("LEFT JOIN books ON books.id = loans.book_id").
		Order("loans.id")
}

func scanLoanViews(q *gorm.DB) ([]models.LoanView, error) {
	var rows []loanViewRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	views := make([]models.LoanView, 0, len(rows))
	for _, row := range rows {
		status := models.LoanStatusOutstanding
		if row.ReturnDate != nil {
			status = models.LoanStatusReturned
		}
		views = append(views, models.LoanView{
			ID:           row.ID,
			BorrowerID:   row.BorrowerID,
			BorrowerName: nameOrMissing(row.BorrowerName),
			BookID:       row.BookID,
			BookTitle:    nameOrMissing(row.BookTitle),
			LoanDate:     row.LoanDate,
			ReturnDate:   row.ReturnDate,
			Status:       status,
		})
	}
	return views, nil
}

func nameOrMissing(name *string) string {
	if name == nil {
		return missingName
	}
	return *name
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
