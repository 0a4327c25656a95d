package helper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/librarystore"
)

// StoreForFixtures is the part of the store the fixture helpers need.
type StoreForFixtures interface {
	SaveBook(ctx context.Context, book *librarystore.Book) error
	SaveMember(ctx context.Context, member *librarystore.Member) error
	SaveLoan(ctx context.Context, loan *librarystore.Loan) error
}

// GivenUniqueISBN returns an ISBN-like string that no other test uses.
func GivenUniqueISBN(t testing.TB) string {
	id, err := uuid.NewV7()
	require.NoError(t, err, "error in arranging test data")

	return "isbn-" + id.String()
}

// GivenUniqueName returns prefix followed by a unique suffix.
func GivenUniqueName(t testing.TB, prefix string) string {
	id, err := uuid.NewV7()
	require.NoError(t, err, "error in arranging test data")

	return prefix + " " + id.String()
}

// MustDate parses a YYYY-MM-DD date and fails the test on error.
func MustDate(t testing.TB, value string) time.Time {
	date, err := time.Parse(librarystore.DateLayout, value)
	require.NoError(t, err, "error in arranging test data")

	return date
}

// FixtureBook returns an unsaved book with the given title and quantity and a unique ISBN.
func FixtureBook(t testing.TB, title string, quantity int) librarystore.Book {
	year := 1997

	return librarystore.Book{
		Title:         title,
		ISBN:          GivenUniqueISBN(t),
		Category:      "Fantasy",
		Publisher:     "Bloomsbury",
		PublishYear:   &year,
		ShelfLocation: "A-01",
		Quantity:      quantity,
	}
}

// FixtureMember returns an unsaved member with the given name, joined on 2024-01-01.
func FixtureMember(t testing.TB, name string) librarystore.Member {
	phone := "+49 30 1234567"

	return librarystore.Member{
		Name:       name,
		NationalID: GivenUniqueName(t, "ID"),
		Phone:      &phone,
		JoinDate:   MustDate(t, "2024-01-01"),
	}
}

// GivenBookWasSaved saves a fixture book and returns it with its ID set.
func GivenBookWasSaved(t testing.TB, ctx context.Context, store StoreForFixtures, title string, quantity int) librarystore.Book {
	book := FixtureBook(t, title, quantity)
	require.NoError(t, store.SaveBook(ctx, &book), "error in arranging test data")

	return book
}

// GivenMemberWasSaved saves a fixture member and returns it with its ID set.
func GivenMemberWasSaved(t testing.TB, ctx context.Context, store StoreForFixtures, name string) librarystore.Member {
	member := FixtureMember(t, name)
	require.NoError(t, store.SaveMember(ctx, &member), "error in arranging test data")

	return member
}

// GivenActiveLoanWasSaved saves an active loan of book to member and returns it with its ID set.
func GivenActiveLoanWasSaved(
	t testing.TB,
	ctx context.Context,
	store StoreForFixtures,
	memberID int64,
	bookID int64,
	loanDate time.Time,
	dueDate time.Time,
) librarystore.Loan {

	loan := librarystore.Loan{
		MemberID: memberID,
		BookID:   bookID,
		LoanDate: loanDate,
		DueDate:  dueDate,
	}
	require.NoError(t, store.SaveLoan(ctx, &loan), "error in arranging test data")

	return loan
}
