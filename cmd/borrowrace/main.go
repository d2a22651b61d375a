// Command borrowrace is a manual stress tool for the borrow workflow.
//
// Usage:
//
//	go run ./cmd/borrowrace <book_id> <borrower1_id> [borrower2_id ...]
//
// Or use the convenience environment variables:
//
//	BOOK_ID=<id>  BORROWER_IDS=<id1>,<id2>,...  go run ./cmd/borrowrace
//
// What it does:
//  1. Fires one goroutine per borrower, all borrowing the same book at once.
//  2. Prints how many borrows succeeded and how many were refused as on loan.
//  3. Counts the book's outstanding loans afterwards. The borrow check is
//     read-then-write and the tool is meant for one user, so more than one
//     outstanding loan here shows the race window rather than a regression.
//
// The database is selected with the usual LIBMATE_* configuration.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"libmate/internal/config"
	"libmate/internal/database"
	"libmate/internal/models"
	"libmate/internal/services"
)

type borrowResult struct {
	BorrowerID uint
	LoanID     uint
	Err        error
}

func main() {
	bookRaw := os.Getenv("BOOK_ID")
	var borrowerRaw []string
	if env := os.Getenv("BORROWER_IDS"); env != "" {
		borrowerRaw = strings.Split(env, ",")
	}

	// Support positional args: script <book_id> [borrower_ids...]
	args := os.Args[1:]
	if len(args) >= 1 {
		bookRaw = args[0]
	}
	if len(args) >= 2 {
		borrowerRaw = args[1:]
	}
	if bookRaw == "" || len(borrowerRaw) == 0 {
		log.Fatal("Usage: BOOK_ID=<id> BORROWER_IDS=<b1,b2,...> go run ./cmd/borrowrace\n" +
			"  or: go run ./cmd/borrowrace <book_id> <borrower1_id> [borrower2_id ...]")
	}

	bookID, err := services.ParseID(bookRaw, "book")
	if err != nil {
		log.Fatal(err)
	}
	borrowerIDs := make([]uint, 0, len(borrowerRaw))
	for _, raw := range borrowerRaw {
		id, err := services.ParseID(raw, "borrower")
		if err != nil {
			log.Fatal(err)
		}
		borrowerIDs = append(borrowerIDs, id)
	}

	cfg, err := config.Load("./config.yml", "./.env")
	if err != nil {
		log.Fatal(err)
	}
	db, err := database.Open(&cfg.Database, zap.NewNop())
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close(db)
	svc := services.New(db, zap.NewNop(), services.NewClock(cfg.IsProduction))

	fmt.Printf("=== Borrow Race ===\n")
	fmt.Printf("Book      : %d\n", bookID)
	fmt.Printf("Borrowers : %d\n\n", len(borrowerIDs))

	fmt.Println("Firing all borrows simultaneously...")
	results, storageErr := raceBorrows(svc, bookID, borrowerIDs)

	var loaned, refused, failures int
	for _, r := range results {
		switch {
		case r.Err == nil:
			loaned++
			fmt.Printf("  [LOAN] borrower=%-6d loan=%d\n", r.BorrowerID, r.LoanID)
		case errors.Is(r.Err, services.ErrConflict):
			refused++
			fmt.Printf("  [BUSY] borrower=%-6d %v\n", r.BorrowerID, r.Err)
		default:
			failures++
			fmt.Printf("  [ERR ] borrower=%-6d %v\n", r.BorrowerID, r.Err)
		}
	}

	var outstanding int64
	if err := db.Model(&models.Loan{}).
		Where("book_id = ? AND return_date IS NULL", bookID).
		Count(&outstanding).Error; err != nil {
		log.Fatal(err)
	}

	fmt.Printf("\n--- Summary ---\n")
	fmt.Printf("Loaned      : %d\n", loaned)
	fmt.Printf("Refused     : %d\n", refused)
	fmt.Printf("Failures    : %d\n", failures)
	fmt.Printf("Outstanding : %d\n", outstanding)

	if outstanding > 1 {
		fmt.Println("\n[WARNING] more than one outstanding loan for the book.")
		os.Exit(1)
	}
	if storageErr != nil {
		fmt.Printf("\n[WARNING] storage failure: %v\n", storageErr)
		os.Exit(1)
	}
	if failures > 0 {
		os.Exit(1)
	}
}

// raceBorrows lends bookID to every borrower at once. The error is the
// first storage failure; refusals are only recorded in the results.
func raceBorrows(svc services.LibraryService, bookID uint, borrowerIDs []uint) ([]borrowResult, error) {
	results := make([]borrowResult, len(borrowerIDs))
	start := make(chan struct{})
	var g errgroup.Group
	for i, id := range borrowerIDs {
		i, id := i, id
		g.Go(func() error {
			<-start
			loan, err := svc.BorrowBook(id, bookID)
			results[i] = borrowResult{BorrowerID: id, Err: err}
			if loan != nil {
				results[i].LoanID = loan.ID
			}
			if err != nil && !services.IsKind(err) {
				return fmt.Errorf("borrower %d: %w", id, err)
			}
			return nil
		})
	}
	close(start)
	return results, g.Wait()
}
