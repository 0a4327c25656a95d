package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/librarystore"
	"github.com/AntonStoeckl/library-circulation-go/reports"
)

const (
	msgNoBooksWithTitle = "No books found with that title."
	msgReturnCancelled  = "Return cancelled."
	msgBookReturned     = "Book returned successfully."
)

var errAmbiguousTitle = errors.New("multiple books match the title")

var (
	bookColumns   = []string{"ID", "Title", "ISBN", "Category", "Shelf", "Qty"}
	memberColumns = []string{"ID", "Name", "National ID", "Phone", "Joined"}
	loanColumns   = []string{"Loan ID", "Member ID", "Book ID", "Loan Date", "Due Date", "Days Late"}
)

// addBook saves the book and links every non-blank name in authorNames as a new author.
func (a *app) addBook(ctx context.Context, book *librarystore.Book, authorNames []string) error {
	if err := a.store.SaveBook(ctx, book); err != nil {
		return err
	}

	for _, name := range authorNames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		author := librarystore.Author{Name: name}
		if err := a.store.SaveAuthor(ctx, &author); err != nil {
			return err
		}

		if err := a.store.AddAuthorToBook(ctx, book.ID, author.ID); err != nil {
			return err
		}
	}

	a.logger.Info("book added", "book_id", book.ID, "title", book.Title)

	return nil
}

// findBook resolves a book ID or a title fragment. For an ambiguous title it returns the candidates
// together with errAmbiguousTitle.
func (a *app) findBook(ctx context.Context, input string) (int64, librarystore.Books, error) {
	if id, err := strconv.ParseInt(input, 10, 64); err == nil {
		return id, nil, nil
	}

	books, err := a.store.SearchBooksByTitle(ctx, input)
	if err != nil {
		return 0, nil, err
	}

	switch len(books) {
	case 0:
		return 0, nil, errors.New(msgNoBooksWithTitle)
	case 1:
		return books[0].ID, books, nil
	default:
		return 0, books, errAmbiguousTitle
	}
}

func (a *app) issueLoan(ctx context.Context, c *console, memberID int64, bookID int64) error {
	outcome := a.desk.IssueLoan(ctx, memberID, bookID)
	if !outcome.Success {
		c.failure("%s", outcome.Message)
		return reportedError{err: errors.New(outcome.Message)}
	}

	c.success("%s Loan ID: %d", outcome.Message, outcome.LoanID)

	return nil
}

// returnLoan asks for confirmation before a fine is charged unless assumeYes is set.
func (a *app) returnLoan(ctx context.Context, c *console, loanID int64, assumeYes bool) error {
	preview, err := a.desk.PreviewFine(ctx, loanID)
	if err != nil {
		return a.reportLoanError(c, err)
	}

	if preview.HasFine() {
		c.warning("Book is overdue! Calculated Fine: %s", c.money(preview.Fine))

		if !assumeYes && !c.confirm("Confirm return and payment of fine?") {
			c.println(msgReturnCancelled)
			return nil
		}
	}

	outcome, err := a.desk.ReturnLoan(ctx, loanID)
	if err != nil {
		return a.reportLoanError(c, err)
	}

	if outcome.HasFine() {
		c.success("%s Fine charged: %s", msgBookReturned, c.money(outcome.Fine))
	} else {
		c.success(msgBookReturned)
	}

	return nil
}

func (a *app) reportLoanError(c *console, err error) error {
	var violation core.PolicyViolation
	if errors.As(err, &violation) {
		if violation.Reason == core.ReasonAlreadyReturned {
			c.warning("%s", violation.Reason)
		} else {
			c.failure("%s", violation.Reason)
		}

		return reportedError{err: err}
	}

	c.failure("Error: %v", err)

	return a.fail("loan operation failed", err)
}

func (a *app) generateReport(ctx context.Context, c *console, kind reports.Kind, filename string) error {
	path, err := a.reports.Generate(ctx, kind, filename)
	if err != nil {
		c.failure("Failed to generate report: %v", err)
		return a.fail("report generation failed", err)
	}

	c.success("%s saved to %s", reportLabel(kind), path)

	return nil
}

func reportLabel(kind reports.Kind) string {
	switch kind {
	case reports.KindInventory:
		return "Inventory report"
	case reports.KindOverdue:
		return "Overdue report"
	case reports.KindActiveLoans:
		return "Active loans report"
	default:
		return "Member report"
	}
}

func bookRows(books librarystore.Books) [][]string {
	rows := make([][]string, 0, len(books))
	for _, b := range books {
		rows = append(rows, []string{
			strconv.FormatInt(b.ID, 10),
			b.Title,
			b.ISBN,
			b.Category,
			b.ShelfLocation,
			strconv.Itoa(b.Quantity),
		})
	}

	return rows
}

// candidateRows lists ID, title and ISBN of books matching an ambiguous title.
func candidateRows(books librarystore.Books) [][]string {
	rows := bookRows(books)
	for i := range rows {
		rows[i] = rows[i][:3]
	}

	return rows
}

func memberRows(members librarystore.Members) [][]string {
	rows := make([][]string, 0, len(members))
	for _, m := range members {
		phone := ""
		if m.Phone != nil {
			phone = *m.Phone
		}

		rows = append(rows, []string{
			strconv.FormatInt(m.ID, 10),
			m.Name,
			m.NationalID,
			phone,
			m.JoinDate.Format(librarystore.DateLayout),
		})
	}

	return rows
}

func loanRows(loans librarystore.Loans, today time.Time) [][]string {
	rows := make([][]string, 0, len(loans))
	for _, l := range loans {
		rows = append(rows, []string{
			strconv.FormatInt(l.ID, 10),
			strconv.FormatInt(l.MemberID, 10),
			strconv.FormatInt(l.BookID, 10),
			l.LoanDate.Format(librarystore.DateLayout),
			l.DueDate.Format(librarystore.DateLayout),
			strconv.Itoa(l.DaysLate(today)),
		})
	}

	return rows
}

func statsRows(stats reports.DashboardStats) [][]string {
	return [][]string{
		{"Total Books", fmt.Sprint(stats.TotalBooks)},
		{"Members", fmt.Sprint(stats.Members)},
		{"Active Loans", fmt.Sprint(stats.ActiveLoans)},
		{"Overdue Loans", fmt.Sprint(stats.OverdueLoans)},
	}
}
