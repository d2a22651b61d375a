package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"libmate/internal/services"
)

// ErrExit is returned by an action to leave the menu loop.
var ErrExit = errors.New("exit requested")

type action struct {
	key   string
	label string
	run   func(m *Menu) error
}

type section struct {
	title   string
	actions []action
}

var sections = []section{
	{"View Data", []action{
		{"1", "List All Authors", (*Menu).listAuthors},
		{"2", "List All Genres", (*Menu).listGenres},
		{"3", "List All Books", (*Menu).listBooks},
		{"4", "List All Borrowers", (*Menu).listBorrowers},
		{"5", "List All Loans", (*Menu).listLoans},
	}},
	{"Add New Data", []action{
		{"6", "Add New Author", (*Menu).addAuthor},
		{"7", "Add New Genre", (*Menu).addGenre},
		{"8", "Add New Book", (*Menu).addBook},
		{"9", "Add New Borrower", (*Menu).addBorrower},
	}},
	{"Delete Data", []action{
		{"10", "Delete Author", (*Menu).deleteAuthor},
		{"11", "Delete Genre", (*Menu).deleteGenre},
		{"12", "Delete Book", (*Menu).deleteBook},
		{"13", "Delete Borrower", (*Menu).deleteBorrower},
	}},
	{"Find Data", []action{
		{"14", "Find Book by Title", (*Menu).findBookByTitle},
		{"15", "Find Borrower by Phone Number", (*Menu).findBorrowerByPhone},
	}},
	{"Loans", []action{
		{"16", "Borrow Book", (*Menu).borrowBook},
		{"17", "Return Book", (*Menu).returnBook},
	}},
	{"Other", []action{
		{"18", "Library Summary", (*Menu).summary},
		{"0", "Exit", func(*Menu) error { return ErrExit }},
	}},
}

// Menu is the interactive front end over a LibraryService.
type Menu struct {
	svc    services.LibraryService
	logger *zap.Logger
	in     *bufio.Scanner
	out    io.Writer
	pause  bool
}

// Option configures a Menu.
type Option func(*Menu)

// WithPause makes the menu wait for Enter after every action.
func WithPause(pause bool) Option {
	return func(m *Menu) { m.pause = pause }
}

// NewMenu returns a menu reading choices from in and printing to out.
func NewMenu(svc services.LibraryService, logger *zap.Logger, in io.Reader, out io.Writer, opts ...Option) *Menu {
	m := &Menu{
		svc:    svc,
		logger: logger,
		in:     bufio.NewScanner(in),
		out:    out,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run shows the menu until the user exits or input ends. Failed actions
// are reported and the menu is shown again.
func (m *Menu) Run() error {
	for {
		m.display()
		choice, ok := m.prompt("Enter your choice: ")
		if !ok {
			m.printf("\nExiting LibMate Manager. Goodbye!\n")
			return m.in.Err()
		}

		act, found := lookup(choice)
		if !found {
			m.printf("Invalid choice. Please try again.\n")
			continue
		}

		err := act.run(m)
		if errors.Is(err, ErrExit) {
			m.printf("Exiting LibMate Manager. Goodbye!\n")
			return nil
		}
		if err != nil {
			m.report(act.label, err)
		}

		if m.pause {
			if _, ok := m.prompt("\nPress Enter to continue..."); !ok {
				return m.in.Err()
			}
		}
	}
}

func lookup(choice string) (action, bool) {
	for _, sec := range sections {
		for _, act := range sec.actions {
			if act.key == choice {
				return act, true
			}
		}
	}
	return action{}, false
}

func (m *Menu) display() {
	m.printf("\n--- LibMate Manager CLI ---\n")
	for _, sec := range sections {
		m.printf("--- %s ---\n", sec.title)
		for _, act := range sec.actions {
			m.printf("%s. %s\n", act.key, act.label)
		}
	}
	m.printf("---------------------------\n")
}

// report prints a failed action. Only rejected requests have a message
// worth showing verbatim; storage failures are logged in full.
func (m *Menu) report(label string, err error) {
	if services.IsKind(err) {
		m.printf("Error: %s\n", err)
		return
	}
	m.logger.Error("menu action failed", zap.String("action", label), zap.Error(err))
	m.printf("Error: %s failed: %s\n", strings.ToLower(label), err)
}

// prompt prints label and reads one trimmed line. It reports false at end of input.
func (m *Menu) prompt(label string) (string, bool) {
	m.printf("%s", label)
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *Menu) printf(format string, args ...interface{}) {
	fmt.Fprintf(m.out, format, args...)
}
