package core

import (
	"fmt"

	"github.com/AntonStoeckl/library-circulation-go/librarystore"
)

// User-facing reasons of rejected circulation operations.
const (
	ReasonLoanLimitReached = "Active loan limit reached (Max %d)."
	ReasonLoanNotFound     = "Loan record not found."
	ReasonAlreadyReturned  = "This book has already been returned."
	ReasonMemberNotFound   = "Member not found."
	ReasonBookNotFound     = "Book not found."
)

// PolicyViolation is returned when a business rule rejects an operation.
// Its message is meant to be shown to the user as is.
type PolicyViolation struct {
	Reason string
}

// NewLoanLimitReached builds the violation for a member who already has the maximum number of active loans.
func NewLoanLimitReached() PolicyViolation {
	return PolicyViolation{Reason: fmt.Sprintf(ReasonLoanLimitReached, MaxActiveLoansPerMember)}
}

func (v PolicyViolation) Error() string {
	return v.Reason
}

// Is makes every PolicyViolation match librarystore.ErrPolicyViolation.
func (v PolicyViolation) Is(target error) bool {
	return target == librarystore.ErrPolicyViolation
}
