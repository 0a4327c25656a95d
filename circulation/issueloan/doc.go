// Package issueloan implements the Issue Loan use case.
//
// A member may borrow a book only while holding fewer than core.MaxActiveLoansPerMember active loans.
// The CommandHandler follows the Query-Decide-Append pattern: it counts the member's active loans,
// lets the pure Decide function apply the rule and appends the new loan on the condition that the
// count has not changed in the meantime. A concurrent issuance for the same member surfaces as
// librarystore.ErrConcurrencyConflict and is retried, so the rule is evaluated again on fresh state.
package issueloan
