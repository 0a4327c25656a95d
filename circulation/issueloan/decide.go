package issueloan

import (
	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/librarystore"
)

// Decide implements the business logic to determine whether a book may be lent to a member.
// This is a pure function with no side effects.
//
// Business Rules:
//
//	GIVEN: A member with MemberID holding activeLoans active loans
//	WHEN: IssueLoan command is received
//	THEN: a new active Loan due core.LoanPeriodDays after the loan date is decided
//	ERROR: "Active loan limit reached (Max 1)." if activeLoans >= core.MaxActiveLoansPerMember
func Decide(activeLoans int, command Command) core.Decision[librarystore.Loan] {
	if activeLoans >= core.MaxActiveLoansPerMember {
		return core.RejectedDecision[librarystore.Loan](core.NewLoanLimitReached())
	}

	return core.SuccessDecision(core.BuildLoan(command.MemberID, command.BookID, command.LoanDate))
}
