package core

import (
	"time"

	"github.com/AntonStoeckl/library-circulation-go/librarystore"
)

const (
	// LoanPeriodDays is the number of days a book may be kept.
	LoanPeriodDays = librarystore.LoanPeriodDays

	// DailyFineRate is the fine charged per whole day a book is returned late.
	DailyFineRate = 1.0

	// MaxActiveLoansPerMember is how many books a member may have borrowed at the same time.
	MaxActiveLoansPerMember = 1
)

// CalculateDueDate returns the calendar date LoanPeriodDays after start.
func CalculateDueDate(start time.Time) time.Time {
	return librarystore.DateOf(start).AddDate(0, 0, LoanPeriodDays)
}

// CalculateFine returns the fine for a book due on due and returned on returned.
// Returning on or before the due date costs nothing.
func CalculateFine(due time.Time, returned time.Time) float64 {
	daysLate := librarystore.DaysBetween(due, returned)
	if daysLate <= 0 {
		return 0
	}

	return float64(daysLate) * DailyFineRate
}

// BuildLoan creates a new active loan of bookID to memberID starting on loanDate.
func BuildLoan(memberID int64, bookID int64, loanDate time.Time) librarystore.Loan {
	return librarystore.Loan{
		MemberID:   memberID,
		BookID:     bookID,
		LoanDate:   librarystore.DateOf(loanDate),
		DueDate:    CalculateDueDate(loanDate),
		ReturnDate: nil,
		FineAmount: 0,
	}
}
