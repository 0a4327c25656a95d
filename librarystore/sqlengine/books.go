package sqlengine

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/AntonStoeckl/library-circulation-go/librarystore"
	"github.com/AntonStoeckl/library-circulation-go/librarystore/sqlengine/internal/adapters"
)

const (
	operationSaveBook           = "save_book"
	operationBookByID           = "book_by_id"
	operationBookByISBN         = "book_by_isbn"
	operationSearchBooksByTitle = "search_books_by_title"
	operationAllBooks           = "all_books"
	operationAddAuthorToBook    = "add_author_to_book"
	operationAuthorsOfBook      = "authors_of_book"
	operationCountBooks         = "count_books"
	operationImportBooks        = "import_books"
)

func bookRecord(book *librarystore.Book) goqu.Record {
	return goqu.Record{
		colTitle:         book.Title,
		colISBN:          book.ISBN,
		colCategory:      book.Category,
		colPublisher:     book.Publisher,
		colPublishYear:   nullable(book.PublishYear),
		colShelfLocation: book.ShelfLocation,
		colQuantity:      book.Quantity,
	}
}

// SaveBook inserts the book if it has no ID yet and assigns the generated ID, otherwise it updates the row.
func (s Store) SaveBook(ctx context.Context, book *librarystore.Book) error {
	observer, ctx := s.observe(ctx, operationSaveBook)

	err := s.runInTx(ctx, operationSaveBook, func(ctx context.Context, tx adapters.DBTx) error {
		if book.ID == 0 {
			id, err := s.insertIn(ctx, tx, tableBooks, bookRecord(book))
			if err != nil {
				return err
			}

			book.ID = id
			return nil
		}

		_, err := s.updateIn(ctx, tx, tableBooks, book.ID, bookRecord(book))
		return err
	})

	if err != nil {
		return observer.finishError(err)
	}

	observer.finishSuccess(1)

	return nil
}

// ImportBooks inserts all books in one transaction and assigns their generated IDs.
// Either every book is stored or none is.
func (s Store) ImportBooks(ctx context.Context, books []librarystore.Book) error {
	observer, ctx := s.observe(ctx, operationImportBooks)

	ids := make([]int64, len(books))

	err := s.runInTx(ctx, operationImportBooks, func(ctx context.Context, tx adapters.DBTx) error {
		for i := range books {
			id, err := s.insertIn(ctx, tx, tableBooks, bookRecord(&books[i]))
			if err != nil {
				return err
			}

			ids[i] = id
		}

		return nil
	})

	if err != nil {
		return observer.finishError(err)
	}

	for i := range books {
		books[i].ID = ids[i]
	}

	observer.finishSuccess(len(books))

	return nil
}

// BookByID returns the book with the given ID. found is false if there is none.
func (s Store) BookByID(ctx context.Context, id int64) (librarystore.Book, bool, error) {
	observer, ctx := s.observe(ctx, operationBookByID, spanAttrEntityID, strconv.FormatInt(id, 10))

	book, found, err := s.selectOneBook(ctx, goqu.C(colID).Eq(id))
	if err != nil {
		return librarystore.Book{}, false, observer.finishError(err)
	}

	observer.finishSuccess(boolToCount(found))

	return book, found, nil
}

// BookByISBN returns the first book with the given ISBN. ISBNs are not unique.
func (s Store) BookByISBN(ctx context.Context, isbn string) (librarystore.Book, bool, error) {
	observer, ctx := s.observe(ctx, operationBookByISBN)

	book, found, err := s.selectOneBook(ctx, goqu.C(colISBN).Eq(isbn))
	if err != nil {
		return librarystore.Book{}, false, observer.finishError(err)
	}

	observer.finishSuccess(boolToCount(found))

	return book, found, nil
}

// SearchBooksByTitle returns all books whose title contains text, ignoring case.
func (s Store) SearchBooksByTitle(ctx context.Context, text string) (librarystore.Books, error) {
	observer, ctx := s.observe(ctx, operationSearchBooksByTitle)

	books, err := s.selectBooks(ctx, operationSearchBooksByTitle, s.containsIgnoringCase(colTitle, text))
	if err != nil {
		return nil, observer.finishError(err)
	}

	observer.finishSuccess(len(books))

	return books, nil
}

// AllBooks returns the whole inventory ordered by shelf location.
func (s Store) AllBooks(ctx context.Context) (librarystore.Books, error) {
	observer, ctx := s.observe(ctx, operationAllBooks)

	books, err := s.selectBooks(ctx, operationAllBooks)
	if err != nil {
		return nil, observer.finishError(err)
	}

	observer.finishSuccess(len(books))

	return books, nil
}

// CountBooks returns the number of book rows.
func (s Store) CountBooks(ctx context.Context) (int, error) {
	observer, ctx := s.observe(ctx, operationCountBooks)

	count, err := s.countRows(ctx, tableBooks)
	if err != nil {
		return 0, observer.finishError(err)
	}

	observer.finishSuccess(1)

	return count, nil
}

// AddAuthorToBook links an author to a book. Linking the same pair twice is silently ignored.
// Both must have been saved before, a zero ID returns ErrEntityHasNoID.
func (s Store) AddAuthorToBook(ctx context.Context, bookID, authorID int64) error {
	observer, ctx := s.observe(ctx, operationAddAuthorToBook, spanAttrEntityID, strconv.FormatInt(bookID, 10))

	if bookID == 0 || authorID == 0 {
		return observer.finishError(fmt.Errorf("%w: book %d, author %d", librarystore.ErrEntityHasNoID, bookID, authorID))
	}

	sqlQuery, args, buildErr := s.builder().
		Insert(tableBookAuthors).
		Rows(goqu.Record{colBookID: bookID, colAuthorID: authorID}).
		OnConflict(goqu.DoNothing()).
		Prepared(true).
		ToSQL()

	stmt, err := s.toStatement(ctx, actionInsert+tableBookAuthors, sqlQuery, args, buildErr)
	if err != nil {
		return observer.finishError(err)
	}

	var affected int64
	err = s.runInTx(ctx, operationAddAuthorToBook, func(ctx context.Context, tx adapters.DBTx) error {
		result, execErr := s.execIn(ctx, tx, stmt)
		if execErr != nil {
			return classify(librarystore.ErrExecutingStatementFailed, execErr)
		}

		var rowsErr error
		affected, rowsErr = s.rowsAffected(ctx, result)
		return rowsErr
	})

	if err != nil {
		return observer.finishError(err)
	}

	observer.finishSuccess(int(affected))

	return nil
}

// AuthorsOfBook returns the authors linked to a book, ordered by author ID.
func (s Store) AuthorsOfBook(ctx context.Context, bookID int64) (librarystore.Authors, error) {
	observer, ctx := s.observe(ctx, operationAuthorsOfBook, spanAttrEntityID, strconv.FormatInt(bookID, 10))

	sqlQuery, args, buildErr := s.builder().
		From(goqu.T(tableAuthors).As("a")).
		Join(goqu.T(tableBookAuthors).As("ba"), goqu.On(goqu.I("ba."+colAuthorID).Eq(goqu.I("a."+colID)))).
		Select(goqu.I("a."+colID), goqu.I("a."+colName)).
		Where(goqu.I("ba." + colBookID).Eq(bookID)).
		Order(goqu.I("a." + colID).Asc()).
		Prepared(true).
		ToSQL()

	stmt, err := s.toStatement(ctx, actionSelect+tableAuthors, sqlQuery, args, buildErr)
	if err != nil {
		return nil, observer.finishError(err)
	}

	authors, err := queryList(ctx, s, s.db, stmt, decodeAuthor)
	if err != nil {
		return nil, observer.finishError(err)
	}

	observer.finishSuccess(len(authors))

	return authors, nil
}

func (s Store) selectBooks(ctx context.Context, action string, where ...exp.Expression) (librarystore.Books, error) {
	sqlQuery, args, buildErr := s.builder().
		From(tableBooks).
		Select(bookColumns...).
		Where(where...).
		Order(goqu.C(colShelfLocation).Asc(), goqu.C(colID).Asc()).
		Prepared(true).
		ToSQL()

	stmt, err := s.toStatement(ctx, actionSelect+tableBooks+" ("+action+")", sqlQuery, args, buildErr)
	if err != nil {
		return nil, err
	}

	return queryList(ctx, s, s.db, stmt, decodeBook)
}

func (s Store) selectOneBook(ctx context.Context, where exp.Expression) (librarystore.Book, bool, error) {
	sqlQuery, args, buildErr := s.builder().
		From(tableBooks).
		Select(bookColumns...).
		Where(where).
		Order(goqu.C(colID).Asc()).
		Limit(1).
		Prepared(true).
		ToSQL()

	stmt, err := s.toStatement(ctx, actionSelect+tableBooks, sqlQuery, args, buildErr)
	if err != nil {
		return librarystore.Book{}, false, err
	}

	return queryOne(ctx, s, s.db, stmt, decodeBook)
}

// countRows counts all rows of table, optionally filtered.
func (s Store) countRows(ctx context.Context, table string, where ...exp.Expression) (int, error) {
	sqlQuery, args, buildErr := s.builder().
		From(table).
		Select(countExpression()).
		Where(where...).
		Prepared(true).
		ToSQL()

	stmt, err := s.toStatement(ctx, actionCount+table, sqlQuery, args, buildErr)
	if err != nil {
		return 0, err
	}

	return s.queryCount(ctx, s.db, stmt)
}

// containsIgnoringCase matches rows whose column contains text in any letter case.
// SQLite compares both sides lowered, which folds non-ASCII letters on DriverSQLite3Unicode connections.
func (s Store) containsIgnoringCase(column string, text string) exp.Expression {
	if s.dialect == DialectSQLite3 {
		return goqu.Func("LOWER", goqu.C(column)).Like(strings.ToLower(containsPattern(text)))
	}

	return goqu.C(column).ILike(containsPattern(text))
}

// containsPattern builds the LIKE pattern of a substring search. Wildcards in text are passed through.
func containsPattern(text string) string {
	return "%" + text + "%"
}

func boolToCount(found bool) int {
	if found {
		return 1
	}

	return 0
}
