package core_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/librarystore"
)

func Test_CalculateDueDate_IsSevenDaysAfterTheLoanDate(t *testing.T) {
	// arrange
	start := time.Date(2024, 2, 25, 17, 45, 0, 0, time.UTC)

	// act
	due := core.CalculateDueDate(start)

	// assert
	assert.Equal(t, time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), due, "should cross the leap day")
}

func Test_CalculateFine(t *testing.T) {
	due := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		returned time.Time
		expected float64
	}{
		{name: "returned early", returned: due.AddDate(0, 0, -3), expected: 0},
		{name: "returned on the due date", returned: due, expected: 0},
		{name: "returned late in the evening of the due date", returned: due.Add(23 * time.Hour), expected: 0},
		{name: "one day late", returned: due.AddDate(0, 0, 1), expected: 1},
		{name: "three days late", returned: due.AddDate(0, 0, 3), expected: 3},
		{name: "thirty days late", returned: due.AddDate(0, 0, 30), expected: 30},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			fine := core.CalculateFine(due, tc.returned)

			// assert
			assert.InDelta(t, tc.expected, fine, 0.0001)
		})
	}
}

func Test_CalculateFine_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		// arrange
		due := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, rapid.IntRange(0, 3650).Draw(t, "dueOffset"))
		days := rapid.IntRange(-400, 400).Draw(t, "days")
		returned := due.AddDate(0, 0, days)

		// act
		fine := core.CalculateFine(due, returned)

		// assert
		if fine < 0 {
			t.Fatalf("fine must never be negative, got %v", fine)
		}

		if days <= 0 && fine != 0 {
			t.Fatalf("returning %d days relative to the due date must be free, got %v", days, fine)
		}

		if days > 0 && fine != float64(days)*core.DailyFineRate {
			t.Fatalf("returning %d days late must cost %v, got %v", days, float64(days)*core.DailyFineRate, fine)
		}
	})
}

func Test_BuildLoan_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		// arrange
		memberID := rapid.Int64Range(1, 1_000_000).Draw(t, "memberID")
		bookID := rapid.Int64Range(1, 1_000_000).Draw(t, "bookID")
		loanDate := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC).
			Add(time.Duration(rapid.Int64Range(0, 30*365*24*3600).Draw(t, "seconds")) * time.Second)

		// act
		loan := core.BuildLoan(memberID, bookID, loanDate)

		// assert
		if loan.MemberID != memberID || loan.BookID != bookID {
			t.Fatalf("ids are not carried over: %+v", loan)
		}

		if !loan.LoanDate.Equal(librarystore.DateOf(loanDate)) {
			t.Fatalf("loan date must be the calendar date of %v, got %v", loanDate, loan.LoanDate)
		}

		if librarystore.DaysBetween(loan.LoanDate, loan.DueDate) != core.LoanPeriodDays {
			t.Fatalf("due date must be %d days after the loan date, got %v -> %v", core.LoanPeriodDays, loan.LoanDate, loan.DueDate)
		}

		if !loan.IsActive() || loan.FineAmount != 0 {
			t.Fatalf("a new loan must be active and without fine: %+v", loan)
		}
	})
}

func Test_PolicyViolation_MatchesTheErrorKind(t *testing.T) {
	// arrange
	var err error = core.NewLoanLimitReached()

	// act
	var violation core.PolicyViolation
	isViolation := errors.As(err, &violation)

	// assert
	assert.True(t, isViolation)
	assert.ErrorIs(t, err, librarystore.ErrPolicyViolation)
	assert.NotErrorIs(t, err, librarystore.ErrStorage)
	assert.Equal(t, "Active loan limit reached (Max 1).", err.Error())
	assert.Equal(t, "Active loan limit reached (Max 1).", violation.Reason)
}

func Test_Decision(t *testing.T) {
	// act
	success := core.SuccessDecision(42)
	rejected := core.RejectedDecision[int](core.PolicyViolation{Reason: core.ReasonLoanNotFound})

	// assert
	assert.True(t, success.IsSuccess())
	assert.Equal(t, 42, success.Value())
	assert.NoError(t, success.HasError())

	assert.False(t, rejected.IsSuccess())
	assert.Zero(t, rejected.Value())
	assert.ErrorIs(t, rejected.HasError(), librarystore.ErrPolicyViolation)
	assert.EqualError(t, rejected.HasError(), "Loan record not found.")
}
