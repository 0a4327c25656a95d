package sqlengine

import (
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/AntonStoeckl/library-circulation-go/librarystore"
	"github.com/AntonStoeckl/library-circulation-go/librarystore/sqlengine/internal/adapters"
)

const (
	tableBooks       = "books"
	tableAuthors     = "authors"
	tableBookAuthors = "book_authors"
	tableMembers     = "members"
	tableLoans       = "loans"

	colID            = "id"
	colTitle         = "title"
	colISBN          = "isbn"
	colCategory      = "category"
	colPublisher     = "publisher"
	colPublishYear   = "publish_year"
	colShelfLocation = "shelf_location"
	colQuantity      = "quantity"
	colName          = "name"
	colBookID        = "book_id"
	colAuthorID      = "author_id"
	colNationalID    = "national_id"
	colPhone         = "phone"
	colJoinDate      = "join_date"
	colMemberID      = "member_id"
	colLoanDate      = "loan_date"
	colDueDate       = "due_date"
	colReturnDate    = "return_date"
	colFineAmount    = "fine_amount"
	aliasCount       = "cnt"

	actionInsert = "insert into "
	actionUpdate = "update "
	actionSelect = "select from "
	actionCount  = "count "
	actionLock   = "lock "
)

// Column lists in the exact order the matching decode function scans them.
var (
	bookColumns   = []any{colID, colTitle, colISBN, colCategory, colPublisher, colPublishYear, colShelfLocation, colQuantity}
	authorColumns = []any{colID, colName}
	memberColumns = []any{colID, colName, colNationalID, colPhone, colJoinDate}
	loanColumns   = []any{colID, colMemberID, colBookID, colLoanDate, colDueDate, colReturnDate, colFineAmount}
)

func decodeBook(rows adapters.DBRows) (librarystore.Book, error) {
	var (
		id            int64
		title         string
		isbn          string
		category      string
		publisher     string
		publishYear   *int
		shelfLocation string
		quantity      int
	)

	if err := rows.Scan(&id, &title, &isbn, &category, &publisher, &publishYear, &shelfLocation, &quantity); err != nil {
		return librarystore.Book{}, err
	}

	return librarystore.Book{
		ID:            id,
		Title:         title,
		ISBN:          isbn,
		Category:      category,
		Publisher:     publisher,
		PublishYear:   publishYear,
		ShelfLocation: shelfLocation,
		Quantity:      quantity,
	}, nil
}

func decodeAuthor(rows adapters.DBRows) (librarystore.Author, error) {
	var (
		id   int64
		name string
	)

	if err := rows.Scan(&id, &name); err != nil {
		return librarystore.Author{}, err
	}

	return librarystore.Author{ID: id, Name: name}, nil
}

func decodeMember(rows adapters.DBRows) (librarystore.Member, error) {
	var (
		id         int64
		name       string
		nationalID string
		phone      *string
		joinDate   time.Time
	)

	if err := rows.Scan(&id, &name, &nationalID, &phone, &joinDate); err != nil {
		return librarystore.Member{}, err
	}

	return librarystore.Member{
		ID:         id,
		Name:       name,
		NationalID: nationalID,
		Phone:      phone,
		JoinDate:   librarystore.DateOf(joinDate),
	}, nil
}

func decodeLoan(rows adapters.DBRows) (librarystore.Loan, error) {
	var (
		id         int64
		memberID   int64
		bookID     int64
		loanDate   time.Time
		dueDate    time.Time
		returnDate *time.Time
		fineAmount float64
	)

	if err := rows.Scan(&id, &memberID, &bookID, &loanDate, &dueDate, &returnDate, &fineAmount); err != nil {
		return librarystore.Loan{}, err
	}

	loan := librarystore.Loan{
		ID:         id,
		MemberID:   memberID,
		BookID:     bookID,
		LoanDate:   librarystore.DateOf(loanDate),
		DueDate:    librarystore.DateOf(dueDate),
		FineAmount: fineAmount,
	}

	if returnDate != nil {
		loan.ReturnDate = librarystore.DatePtr(*returnDate)
	}

	return loan, nil
}

func decodeCount(rows adapters.DBRows) (int, error) {
	var count int64

	if err := rows.Scan(&count); err != nil {
		return 0, err
	}

	return int(count), nil
}

func decodeID(rows adapters.DBRows) (int64, error) {
	var id int64

	if err := rows.Scan(&id); err != nil {
		return 0, err
	}

	return id, nil
}

// nullable turns a nil pointer into an untyped nil so the driver binds SQL NULL.
func nullable[T any](value *T) any {
	if value == nil {
		return nil
	}

	return *value
}

// dateArg binds a calendar date. Time values are passed at midnight UTC.
func dateArg(t time.Time) time.Time {
	return librarystore.DateOf(t)
}

func dateArgPtr(t *time.Time) any {
	if t == nil {
		return nil
	}

	return librarystore.DateOf(*t)
}

func countExpression() exp.AliasedExpression {
	return goqu.COUNT(goqu.Star()).As(aliasCount)
}
