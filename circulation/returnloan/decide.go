package returnloan

import (
	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/librarystore"
)

// ReturnedLoan is the loan in its terminal state together with the days it was late.
type ReturnedLoan struct {
	Loan     librarystore.Loan
	DaysLate int
}

// Outcome converts the returned loan into the result shown to the user.
func (r ReturnedLoan) Outcome() core.ReturnOutcome {
	return core.ReturnOutcome{
		LoanID:     r.Loan.ID,
		DueDate:    r.Loan.DueDate,
		ReturnDate: *r.Loan.ReturnDate,
		DaysLate:   r.DaysLate,
		Fine:       r.Loan.FineAmount,
	}
}

// Decide implements the business logic to determine whether a loan can be returned and at which fine.
// This is a pure function with no side effects.
//
// Business Rules:
//
//	GIVEN: the loan with LoanID as found in the store
//	WHEN: ReturnLoan command is received
//	THEN: the loan is returned on the command's date with fine = days late × core.DailyFineRate
//	ERROR: "Loan record not found." if no loan with LoanID exists
//	ERROR: "This book has already been returned." if the loan has a return date
func Decide(loan librarystore.Loan, found bool, command Command) core.Decision[ReturnedLoan] {
	if !found {
		return core.RejectedDecision[ReturnedLoan](core.PolicyViolation{Reason: core.ReasonLoanNotFound})
	}

	if !loan.IsActive() {
		return core.RejectedDecision[ReturnedLoan](core.PolicyViolation{Reason: core.ReasonAlreadyReturned})
	}

	returnDate := librarystore.DateOf(command.ReturnDate)
	loan.ReturnDate = &returnDate
	loan.FineAmount = core.CalculateFine(loan.DueDate, returnDate)

	return core.SuccessDecision(ReturnedLoan{
		Loan:     loan,
		DaysLate: loan.DaysLate(returnDate),
	})
}
