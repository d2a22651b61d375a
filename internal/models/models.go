package models

// DateLayout is the ISO-8601 calendar date format loan dates are stored in.
const DateLayout = "2006-01-02"

type BookStatus string

const (
	BookStatusAvailable BookStatus = "Available"
	BookStatusOnLoan    BookStatus = "On Loan"
)

type LoanStatus string

const (
	LoanStatusOutstanding LoanStatus = "Outstanding"
	LoanStatusReturned    LoanStatus = "Returned"
)

type Author struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:255;not null;uniqueIndex" json:"name"`
}

type Genre struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:255;not null;uniqueIndex" json:"name"`
}

type Book struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Title         string `gorm:"size:255;not null" json:"title"`
	PublishedYear int    `json:"published_year"`
	AuthorID      uint   `gorm:"not null;index" json:"author_id"`
	Author        Author `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
	GenreID       uint   `gorm:"not null;index" json:"genre_id"`
	Genre         Genre  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
}

type Borrower struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:255;not null" json:"name"`
	PhoneNumber string `gorm:"size:64;not null;uniqueIndex" json:"phone_number"`
}

// Loan records one borrowing of a book. A nil ReturnDate means the
// loan is outstanding; once set it never changes.
type Loan struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	LoanDate   string   `gorm:"size:10;not null" json:"loan_date"`
	ReturnDate *string  `gorm:"size:10;index" json:"return_date"`
	BorrowerID uint     `gorm:"not null;index" json:"borrower_id"`
	Borrower   Borrower `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
	BookID     uint     `gorm:"not null;index" json:"book_id"`
	Book       Book     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
}

func (l *Loan) Outstanding() bool {
	return l.ReturnDate == nil
}

func (l *Loan) Status() LoanStatus {
	if l.Outstanding() {
		return LoanStatusOutstanding
	}
	return LoanStatusReturned
}

// All lists the entities in dependency order, parents first.
func All() []interface{} {
	return []interface{}{&Author{}, &Genre{}, &Book{}, &Borrower{}, &Loan{}}
}
