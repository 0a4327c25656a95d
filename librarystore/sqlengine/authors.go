package sqlengine

import (
	"context"
	"strconv"

	"github.com/doug-martin/goqu/v9"

	"github.com/AntonStoeckl/library-circulation-go/librarystore"
	"github.com/AntonStoeckl/library-circulation-go/librarystore/sqlengine/internal/adapters"
)

const (
	operationSaveAuthor = "save_author"
	operationAuthorByID = "author_by_id"
)

// SaveAuthor inserts the author if it has no ID yet and assigns the generated ID, otherwise it updates the row.
func (s Store) SaveAuthor(ctx context.Context, author *librarystore.Author) error {
	observer, ctx := s.observe(ctx, operationSaveAuthor)
	record := goqu.Record{colName: author.Name}

	err := s.runInTx(ctx, operationSaveAuthor, func(ctx context.Context, tx adapters.DBTx) error {
		if author.ID == 0 {
			id, err := s.insertIn(ctx, tx, tableAuthors, record)
			if err != nil {
				return err
			}

			author.ID = id
			return nil
		}

		_, err := s.updateIn(ctx, tx, tableAuthors, author.ID, record)
		return err
	})

	if err != nil {
		return observer.finishError(err)
	}

	observer.finishSuccess(1)

	return nil
}

// AuthorByID returns the author with the given ID. found is false if there is none.
func (s Store) AuthorByID(ctx context.Context, id int64) (librarystore.Author, bool, error) {
	observer, ctx := s.observe(ctx, operationAuthorByID, spanAttrEntityID, strconv.FormatInt(id, 10))

	sqlQuery, args, buildErr := s.builder().
		From(tableAuthors).
		Select(authorColumns...).
		Where(goqu.C(colID).Eq(id)).
		Prepared(true).
		ToSQL()

	stmt, err := s.toStatement(ctx, actionSelect+tableAuthors, sqlQuery, args, buildErr)
	if err != nil {
		return librarystore.Author{}, false, observer.finishError(err)
	}

	author, found, err := queryOne(ctx, s, s.db, stmt, decodeAuthor)
	if err != nil {
		return librarystore.Author{}, false, observer.finishError(err)
	}

	observer.finishSuccess(boolToCount(found))

	return author, found, nil
}
