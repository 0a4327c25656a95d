package reports

import (
	"context"
	"time"

	"github.com/AntonStoeckl/library-circulation-go/librarystore"
)

// Source defines the store operations the reports and statistics read from.
type Source interface {
	AllBooks(ctx context.Context) (librarystore.Books, error)
	BookByID(ctx context.Context, id int64) (librarystore.Book, bool, error)
	AllMembers(ctx context.Context) (librarystore.Members, error)
	MemberByID(ctx context.Context, id int64) (librarystore.Member, bool, error)
	ActiveLoans(ctx context.Context) (librarystore.Loans, error)
	OverdueLoans(ctx context.Context, today time.Time) (librarystore.Loans, error)
	CountBooks(ctx context.Context) (int, error)
	CountMembers(ctx context.Context) (int, error)
	CountActiveLoans(ctx context.Context) (int, error)
	CountOverdueLoans(ctx context.Context, today time.Time) (int, error)
}
