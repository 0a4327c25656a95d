package reports_test

import (
	"context"
	"strconv"
	"time"

	"github.com/AntonStoeckl/library-circulation-go/librarystore"
)

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// sourceStub returns fixed data and finds no single book or member.
type sourceStub struct {
	books       librarystore.Books
	members     librarystore.Members
	activeLoans librarystore.Loans
	err         error
}

func (s sourceStub) AllBooks(context.Context) (librarystore.Books, error) {
	return s.books, s.err
}

func (s sourceStub) BookByID(context.Context, int64) (librarystore.Book, bool, error) {
	return librarystore.Book{}, false, s.err
}

func (s sourceStub) AllMembers(context.Context) (librarystore.Members, error) {
	return s.members, s.err
}

func (s sourceStub) MemberByID(context.Context, int64) (librarystore.Member, bool, error) {
	return librarystore.Member{}, false, s.err
}

func (s sourceStub) ActiveLoans(context.Context) (librarystore.Loans, error) {
	return s.activeLoans, s.err
}

func (s sourceStub) OverdueLoans(context.Context, time.Time) (librarystore.Loans, error) {
	return nil, s.err
}

func (s sourceStub) CountBooks(context.Context) (int, error) {
	return len(s.books), s.err
}

func (s sourceStub) CountMembers(context.Context) (int, error) {
	return len(s.members), s.err
}

func (s sourceStub) CountActiveLoans(context.Context) (int, error) {
	return len(s.activeLoans), s.err
}

func (s sourceStub) CountOverdueLoans(context.Context, time.Time) (int, error) {
	return 0, s.err
}
