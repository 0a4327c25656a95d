// Package returnloan implements the Return Loan use case.
//
// Returning closes an active loan: the return date is set and the fine for every day past the due date
// is finalized. A loan that does not exist or that was already returned is rejected, returning twice is
// never a no-op. The CommandHandler follows the Query-Decide-Write pattern and closes the loan only while
// it is still active, so two concurrent returns of the same loan can not both charge a fine.
package returnloan
