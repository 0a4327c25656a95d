package librarystore

import "time"

// Book is a catalog title with the number of copies on the shelf.
// ISBN is not enforced to be unique.
type Book struct {
	ID            int64
	Title         string
	ISBN          string
	Category      string
	Publisher     string
	PublishYear   *int
	ShelfLocation string
	Quantity      int
}

// Books is a collection of Book.
type Books = []Book

// Author can be linked to any number of books.
type Author struct {
	ID   int64
	Name string
}

// Authors is a collection of Author.
type Authors = []Author

// Member is a registered library reader. NationalID is not enforced to be unique.
type Member struct {
	ID         int64
	Name       string
	NationalID string
	Phone      *string
	JoinDate   time.Time
}

// Members is a collection of Member.
type Members = []Member

// Loan records one book lent to one member.
// A Loan is active as long as ReturnDate is nil.
type Loan struct {
	ID         int64
	MemberID   int64
	BookID     int64
	LoanDate   time.Time
	DueDate    time.Time
	ReturnDate *time.Time
	FineAmount float64
}

// LoanPeriodDays is the number of days a book may be kept.
const LoanPeriodDays = 7

// ApplyDefaultDates sets a zero LoanDate to today and a zero DueDate to LoanPeriodDays after the loan date.
func (l *Loan) ApplyDefaultDates(today time.Time) {
	if l.LoanDate.IsZero() {
		l.LoanDate = DateOf(today)
	}

	if l.DueDate.IsZero() {
		l.DueDate = DateOf(l.LoanDate).AddDate(0, 0, LoanPeriodDays)
	}
}

// Loans is a collection of Loan.
type Loans = []Loan

// IsActive reports whether the loan has not been returned yet.
func (l Loan) IsActive() bool {
	return l.ReturnDate == nil
}

// IsOverdue reports whether the loan is active and its due date lies before today.
func (l Loan) IsOverdue(today time.Time) bool {
	return l.IsActive() && l.DueDate.Before(DateOf(today))
}

// DaysLate returns the number of whole days between the due date and today, or 0 if not late.
func (l Loan) DaysLate(today time.Time) int {
	days := DaysBetween(l.DueDate, today)
	if days < 0 {
		return 0
	}

	return days
}
