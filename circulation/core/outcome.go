package core

import "time"

// MsgLoanIssued is the message of a successful issuance.
const MsgLoanIssued = "Loan issued successfully."

// Outcome is the presentation-facing result of an issuance.
type Outcome struct {
	Success bool
	Message string
	LoanID  int64
}

// ReturnOutcome is the presentation-facing result of a return or a fine preview.
type ReturnOutcome struct {
	LoanID     int64
	DueDate    time.Time
	ReturnDate time.Time
	DaysLate   int
	Fine       float64
}

// HasFine reports whether the member has to pay anything.
func (o ReturnOutcome) HasFine() bool {
	return o.Fine > 0
}
