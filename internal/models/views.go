package models

// BookView is a book joined with its author and genre names and its
// availability, derived from outstanding loans at read time.
type BookView struct {
	ID            uint       `json:"id"`
	Title         string     `json:"title"`
	PublishedYear int        `json:"published_year"`
	AuthorID      uint       `json:"author_id"`
	AuthorName    string     `json:"author_name"`
	GenreID       uint       `json:"genre_id"`
	GenreName     string     `json:"genre_name"`
	Status        BookStatus `json:"status"`
}

type LoanView struct {
	ID           uint       `json:"id"`
	BorrowerID   uint       `json:"borrower_id"`
	BorrowerName string     `json:"borrower_name"`
	BookID       uint       `json:"book_id"`
	BookTitle    string     `json:"book_title"`
	LoanDate     string     `json:"loan_date"`
	ReturnDate   *string    `json:"return_date"`
	Status       LoanStatus `json:"status"`
}

// BorrowerDetails is a borrower with the full history of their loans.
type BorrowerDetails struct {
	Borrower Borrower   `json:"borrower"`
	Loans    []LoanView `json:"loans"`
}

type AuthorBooks struct {
	Author Author   `json:"author"`
	Titles []string `json:"titles"`
}

// Summary aggregates catalog counts for the report screen.
type Summary struct {
	Authors          int64         `json:"authors"`
	Genres           int64         `json:"genres"`
	Books            int64         `json:"books"`
	Borrowers        int64         `json:"borrowers"`
	Loans            int64         `json:"loans"`
	OutstandingLoans int64         `json:"outstanding_loans"`
	AuthorBooks      []AuthorBooks `json:"author_books"`
}
