package cli

import (
	"strings"

	"libmate/internal/models"
	"libmate/internal/services"
)

// ask prompts and returns the answer, empty when input has ended.
func (m *Menu) ask(label string) string {
	answer, _ := m.prompt(label)
	return answer
}

func (m *Menu) askID(label, what string) (uint, error) {
	return services.ParseID(m.ask(label), what)
}

// ─── View ─────────────────────────────────────────────────────────────────────

func (m *Menu) listAuthors() error {
	authors, err := m.svc.ListAuthors()
	if err != nil {
		return err
	}
	if len(authors) == 0 {
		m.printf("\nNo authors found in the library.\n")
		return nil
	}
	m.printf("\n--- All Authors ---\n")
	for _, a := range authors {
		m.printf("ID: %d, Name: %s\n", a.ID, a.Name)
	}
	return nil
}

func (m *Menu) listGenres() error {
	genres, err := m.svc.ListGenres()
	if err != nil {
		return err
	}
	if len(genres) == 0 {
		m.printf("\nNo genres found in the library.\n")
		return nil
	}
	m.printf("\n--- All Genres ---\n")
	for _, g := range genres {
		m.printf("ID: %d, Name: %s\n", g.ID, g.Name)
	}
	return nil
}

func (m *Menu) listBooks() error {
	books, err := m.svc.ListBooks()
	if err != nil {
		return err
	}
	if len(books) == 0 {
		m.printf("\nNo books found in the library.\n")
		return nil
	}
	m.printf("\n--- All Books ---\n")
	m.printBooks(books)
	return nil
}

func (m *Menu) listBorrowers() error {
	borrowers, err := m.svc.ListBorrowers()
	if err != nil {
		return err
	}
	if len(borrowers) == 0 {
		m.printf("\nNo borrowers found.\n")
		return nil
	}
	m.printf("\n--- All Borrowers ---\n")
	for _, b := range borrowers {
		m.printf("ID: %d, Name: '%s', Phone: '%s'\n", b.ID, b.Name, b.PhoneNumber)
	}
	return nil
}

func (m *Menu) listLoans() error {
	loans, err := m.svc.ListLoans()
	if err != nil {
		return err
	}
	if len(loans) == 0 {
		m.printf("\nNo loans found.\n")
		return nil
	}
	m.printf("\n--- All Loans ---\n")
	for _, l := range loans {
		m.printf("Loan ID: %d, Borrower: '%s', Book: '%s', Loaned: %s, Returned: %s, Status: %s\n",
			l.ID, l.BorrowerName, l.BookTitle, l.LoanDate, dateOrDash(l.ReturnDate), l.Status)
	}
	return nil
}

// ─── Add ──────────────────────────────────────────────────────────────────────

func (m *Menu) addAuthor() error {
	m.printf("\n--- Add New Author ---\n")
	author, err := m.svc.AddAuthor(m.ask("Enter author's name: "))
	if err != nil {
		return err
	}
	m.printf("Author '%s' added with ID %d.\n", author.Name, author.ID)
	return nil
}

func (m *Menu) addGenre() error {
	m.printf("\n--- Add New Genre ---\n")
	genre, err := m.svc.AddGenre(m.ask("Enter genre name: "))
	if err != nil {
		return err
	}
	m.printf("Genre '%s' added with ID %d.\n", genre.Name, genre.ID)
	return nil
}

func (m *Menu) addBook() error {
	m.printf("\n--- Add New Book ---\n")
	title := m.ask("Enter book title: ")
	if err := services.CheckTitle(title); err != nil {
		return err
	}
	year, err := services.ParseYear(m.ask("Enter published year (e.g., 2023): "))
	if err != nil {
		return err
	}

	if err := m.listAuthors(); err != nil {
		return err
	}
	authorID, err := m.askID("Enter Author ID for the book: ", "author")
	if err != nil {
		return err
	}

	if err := m.listGenres(); err != nil {
		return err
	}
	genreID, err := m.askID("Enter Genre ID for the book: ", "genre")
	if err != nil {
		return err
	}

	book, err := m.svc.AddBook(title, year, authorID, genreID)
	if err != nil {
		return err
	}
	m.printf("Book '%s' by %s added with ID: %d.\n", book.Title, book.Author.Name, book.ID)
	return nil
}

func (m *Menu) addBorrower() error {
	m.printf("\n--- Add New Borrower ---\n")
	name := m.ask("Enter borrower's name: ")
	phone := m.ask("Enter borrower's phone number (must be unique): ")
	borrower, err := m.svc.AddBorrower(name, phone)
	if err != nil {
		return err
	}
	m.printf("Borrower '%s' added with ID: %d.\n", borrower.Name, borrower.ID)
	return nil
}

// ─── Delete ───────────────────────────────────────────────────────────────────

func (m *Menu) deleteAuthor() error {
	m.printf("\n--- Delete Author ---\n")
	id, err := m.askID("Enter Author ID to delete: ", "author")
	if err != nil {
		return err
	}
	books, err := m.svc.DeleteAuthor(id)
	if err != nil {
		return err
	}
	m.printf("Author %d deleted along with %d book(s).\n", id, books)
	return nil
}

func (m *Menu) deleteGenre() error {
	m.printf("\n--- Delete Genre ---\n")
	id, err := m.askID("Enter Genre ID to delete: ", "genre")
	if err != nil {
		return err
	}
	if err := m.svc.DeleteGenre(id); err != nil {
		return err
	}
	m.printf("Genre %d deleted.\n", id)
	return nil
}

func (m *Menu) deleteBook() error {
	m.printf("\n--- Delete Book ---\n")
	id, err := m.askID("Enter Book ID to delete: ", "book")
	if err != nil {
		return err
	}
	if err := m.svc.DeleteBook(id); err != nil {
		return err
	}
	m.printf("Book %d deleted.\n", id)
	return nil
}

func (m *Menu) deleteBorrower() error {
	m.printf("\n--- Delete Borrower ---\n")
	id, err := m.askID("Enter Borrower ID to delete: ", "borrower")
	if err != nil {
		return err
	}
	loans, err := m.svc.DeleteBorrower(id)
	if err != nil {
		return err
	}
	m.printf("Borrower %d deleted along with %d loan(s).\n", id, loans)
	return nil
}

// ─── Find ─────────────────────────────────────────────────────────────────────

func (m *Menu) findBookByTitle() error {
	m.printf("\n--- Find Book by Title ---\n")
	term := m.ask("Enter part of the book title to search for: ")
	books, err := m.svc.FindBooksByTitle(term)
	if err != nil {
		return err
	}
	if len(books) == 0 {
		m.printf("\nNo books found matching '%s'.\n", term)
		return nil
	}
	m.printf("\n--- Books matching '%s' ---\n", term)
	m.printBooks(books)
	return nil
}

func (m *Menu) findBorrowerByPhone() error {
	m.printf("\n--- Find Borrower by Phone Number ---\n")
	details, err := m.svc.FindBorrowerByPhone(m.ask("Enter borrower's phone number: "))
	if err != nil {
		return err
	}
	b := details.Borrower
	m.printf("\n--- Borrower Found ---\n")
	m.printf("ID: %d, Name: '%s', Phone: '%s'\n", b.ID, b.Name, b.PhoneNumber)
	if len(details.Loans) == 0 {
		m.printf("  No loans for this borrower.\n")
		return nil
	}
	m.printf("--- Loans ---\n")
	for _, l := range details.Loans {
		m.printf("  - Loan ID: %d, Book: '%s', Loaned: %s, Status: %s\n", l.ID, l.BookTitle, l.LoanDate, l.Status)
	}
	return nil
}

// ─── Loans ────────────────────────────────────────────────────────────────────

func (m *Menu) borrowBook() error {
	m.printf("\n--- Borrow Book ---\n")
	borrowerID, err := m.askID("Enter Borrower ID: ", "borrower")
	if err != nil {
		return err
	}
	bookID, err := m.askID("Enter Book ID: ", "book")
	if err != nil {
		return err
	}
	loan, err := m.svc.BorrowBook(borrowerID, bookID)
	if err != nil {
		return err
	}
	m.printf("'%s' loaned to %s on %s (loan ID %d).\n", loan.Book.Title, loan.Borrower.Name, loan.LoanDate, loan.ID)
	return nil
}

func (m *Menu) returnBook() error {
	m.printf("\n--- Return Book ---\n")
	loanID, err := m.askID("Enter Loan ID: ", "loan")
	if err != nil {
		return err
	}
	loan, err := m.svc.ReturnBook(loanID)
	if err != nil {
		return err
	}
	m.printf("Loan %d returned on %s.\n", loan.ID, *loan.ReturnDate)
	return nil
}

// ─── Other ────────────────────────────────────────────────────────────────────

func (m *Menu) summary() error {
	sum, err := m.svc.Summary()
	if err != nil {
		return err
	}
	m.printf("\n--- Library Summary ---\n")
	m.printf("Authors: %d, Genres: %d, Books: %d, Borrowers: %d, Loans: %d (%d outstanding)\n",
		sum.Authors, sum.Genres, sum.Books, sum.Borrowers, sum.Loans, sum.OutstandingLoans)
	for _, ab := range sum.AuthorBooks {
		titles := "None"
		if len(ab.Titles) > 0 {
			titles = "'" + strings.Join(ab.Titles, "', '") + "'"
		}
		m.printf("ID: %d, Name: '%s', Books: %s\n", ab.Author.ID, ab.Author.Name, titles)
	}
	return nil
}

func (m *Menu) printBooks(books []models.BookView) {
	for _, b := range books {
		m.printf("ID: %d, Title: '%s', Year: %d, Author: '%s', Genre: '%s', Status: %s\n",
			b.ID, b.Title, b.PublishedYear, b.AuthorName, b.GenreName, b.Status)
	}
}

func dateOrDash(date *string) string {
	if date == nil {
		return "-"
	}
	return *date
}
