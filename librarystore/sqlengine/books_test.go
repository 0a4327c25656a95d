package sqlengine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/librarystore"
	"github.com/AntonStoeckl/library-circulation-go/librarystore/sqlengine"
	. "github.com/AntonStoeckl/library-circulation-go/testutil/helper"              //nolint:revive
	. "github.com/AntonStoeckl/library-circulation-go/testutil/helper/storewrapper" //nolint:revive
)

func Test_SaveBook_Inserts_AndAssignsTheGeneratedID(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	store := givenStore(t)

	// arrange
	book := FixtureBook(t, "Harry Potter and the Philosopher's Stone", 3)

	// act
	err := store.SaveBook(ctxWithTimeout, &book)

	// assert
	require.NoError(t, err)
	assert.NotZero(t, book.ID)

	loaded, found, err := store.BookByID(ctxWithTimeout, book.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, book, loaded)
}

func Test_SaveBook_WithoutPublishYear(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	store := givenStore(t)

	// arrange
	book := FixtureBook(t, "Beowulf", 1)
	book.PublishYear = nil

	// act
	err := store.SaveBook(ctxWithTimeout, &book)

	// assert
	require.NoError(t, err)

	loaded, found, err := store.BookByID(ctxWithTimeout, book.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Nil(t, loaded.PublishYear)
}

func Test_SaveBook_UpdatesAnExistingBook(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	store := givenStore(t)

	// arrange
	book := GivenBookWasSaved(t, ctxWithTimeout, store, "The Hobbit", 1)
	originalID := book.ID
	book.Quantity = 4
	book.ShelfLocation = "B-12"

	// act
	err := store.SaveBook(ctxWithTimeout, &book)

	// assert
	require.NoError(t, err)
	assert.Equal(t, originalID, book.ID)

	loaded, _, err := store.BookByID(ctxWithTimeout, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, loaded.Quantity)
	assert.Equal(t, "B-12", loaded.ShelfLocation)

	count, err := store.CountBooks(ctxWithTimeout)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "an update must not insert a new row")
}

func Test_SaveBook_Failure_IsAStorageError_AndRollsBack(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logHandler := NewTestLogHandler(false)
	store := CreatePoolWrapper(t, sqlengine.WithLogger(NewLogger(logHandler))).GetStore()

	// arrange
	book := FixtureBook(t, "Negative Stock", -1)

	// act
	err := store.SaveBook(ctxWithTimeout, &book)

	// assert
	assert.ErrorIs(t, err, librarystore.ErrStorage)
	assert.ErrorIs(t, err, librarystore.ErrExecutingStatementFailed)
	assert.NotErrorIs(t, err, librarystore.ErrConcurrencyConflict)
	assert.Zero(t, book.ID)

	count, countErr := store.CountBooks(ctxWithTimeout)
	require.NoError(t, countErr)
	assert.Zero(t, count)

	assert.True(t,
		logHandler.HasErrorLogWithMessage("database statement execution failed").
			WithAttr("query").
			WithAttr("params").
			WithAttr("error").
			Assert(), "the failed statement should be logged with its parameters",
	)
	assert.True(t,
		logHandler.HasWarnLogWithMessage("transaction rolled back").
			WithAttrValue("action", "save_book").
			Assert(),
	)
}

func Test_BookByID_NotFound_IsNoError(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	store := givenStore(t)

	// act
	book, found, err := store.BookByID(ctxWithTimeout, 4711)

	// assert
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, librarystore.Book{}, book)
}

func Test_BookByISBN_ReturnsTheFirstMatch_WhenTheISBNIsNotUnique(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	store := givenStore(t)

	// arrange
	first := FixtureBook(t, "Dune", 1)
	second := FixtureBook(t, "Dune (Reprint)", 1)
	second.ISBN = first.ISBN
	require.NoError(t, store.SaveBook(ctxWithTimeout, &first))
	require.NoError(t, store.SaveBook(ctxWithTimeout, &second), "duplicate ISBNs are permitted")

	// act
	book, found, err := store.BookByISBN(ctxWithTimeout, first.ISBN)
	_, unknownFound, unknownErr := store.BookByISBN(ctxWithTimeout, GivenUniqueISBN(t))

	// assert
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, first.ID, book.ID)

	assert.NoError(t, unknownErr)
	assert.False(t, unknownFound)
}

func Test_SearchBooksByTitle_IsACaseInsensitiveContainsMatch(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	store := givenStore(t)

	// arrange
	harryPotter := GivenBookWasSaved(t, ctxWithTimeout, store, "Harry Potter", 1)
	hobbit := GivenBookWasSaved(t, ctxWithTimeout, store, "The Hobbit", 1)
	clouds := GivenBookWasSaved(t, ctxWithTimeout, store, "Über den Wolken", 1)

	testCases := []struct {
		name        string
		search      string
		expectedIDs []int64
	}{
		{name: "lower case prefix", search: "harry", expectedIDs: []int64{harryPotter.ID}},
		{name: "upper case inner part", search: "HOBB", expectedIDs: []int64{hobbit.ID}},
		{name: "non-ASCII lower case", search: "über", expectedIDs: []int64{clouds.ID}},
		{name: "non-ASCII upper case", search: "ÜBER DEN WOLKEN", expectedIDs: []int64{clouds.ID}},
		{name: "matches all", search: "o", expectedIDs: []int64{harryPotter.ID, hobbit.ID, clouds.ID}},
		{name: "wildcards are passed through", search: "%", expectedIDs: []int64{harryPotter.ID, hobbit.ID, clouds.ID}},
		{name: "no match", search: "Silmarillion", expectedIDs: []int64{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			books, err := store.SearchBooksByTitle(ctxWithTimeout, tc.search)

			// assert
			require.NoError(t, err)
			assert.NotNil(t, books)
			assert.ElementsMatch(t, tc.expectedIDs, bookIDs(books))
		})
	}
}

func Test_AllBooks_AreOrderedByShelfLocation(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	store := givenStore(t)

	// arrange
	shelves := []string{"C-03", "A-01", "B-02"}
	for _, shelf := range shelves {
		book := FixtureBook(t, "Book on "+shelf, 1)
		book.ShelfLocation = shelf
		require.NoError(t, store.SaveBook(ctxWithTimeout, &book))
	}

	// act
	books, err := store.AllBooks(ctxWithTimeout)

	// assert
	require.NoError(t, err)
	require.Len(t, books, 3)
	assert.Equal(t, "A-01", books[0].ShelfLocation)
	assert.Equal(t, "B-02", books[1].ShelfLocation)
	assert.Equal(t, "C-03", books[2].ShelfLocation)

	count, err := store.CountBooks(ctxWithTimeout)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func Test_AddAuthorToBook_IgnoresDuplicateLinks(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	store := givenStore(t)

	// arrange
	book := GivenBookWasSaved(t, ctxWithTimeout, store, "Good Omens", 2)
	pratchett := librarystore.Author{Name: "Terry Pratchett"}
	gaiman := librarystore.Author{Name: "Neil Gaiman"}
	require.NoError(t, store.SaveAuthor(ctxWithTimeout, &pratchett))
	require.NoError(t, store.SaveAuthor(ctxWithTimeout, &gaiman))

	// act
	firstErr := store.AddAuthorToBook(ctxWithTimeout, book.ID, pratchett.ID)
	duplicateErr := store.AddAuthorToBook(ctxWithTimeout, book.ID, pratchett.ID)
	secondErr := store.AddAuthorToBook(ctxWithTimeout, book.ID, gaiman.ID)

	// assert
	require.NoError(t, firstErr)
	require.NoError(t, duplicateErr, "linking the same author twice should be silently ignored")
	require.NoError(t, secondErr)

	authors, err := store.AuthorsOfBook(ctxWithTimeout, book.ID)
	require.NoError(t, err)
	assert.Equal(t, librarystore.Authors{pratchett, gaiman}, authors)
}

func Test_AddAuthorToBook_WithUnsavedEntities_Fails(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	store := givenStore(t)

	// arrange
	book := GivenBookWasSaved(t, ctxWithTimeout, store, "Small Gods", 1)
	unsavedAuthor := librarystore.Author{Name: "Terry Pratchett"}

	// act
	authorErr := store.AddAuthorToBook(ctxWithTimeout, book.ID, unsavedAuthor.ID)
	bookErr := store.AddAuthorToBook(ctxWithTimeout, 0, 1)

	// assert
	assert.ErrorIs(t, authorErr, librarystore.ErrEntityHasNoID)
	assert.ErrorIs(t, bookErr, librarystore.ErrEntityHasNoID)

	authors, err := store.AuthorsOfBook(ctxWithTimeout, book.ID)
	require.NoError(t, err)
	assert.Empty(t, authors)
}

func Test_AuthorsOfBook_WithoutAuthors_IsEmpty(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	store := givenStore(t)

	// arrange
	book := GivenBookWasSaved(t, ctxWithTimeout, store, "Anonymous Tales", 1)

	// act
	authors, err := store.AuthorsOfBook(ctxWithTimeout, book.ID)

	// assert
	require.NoError(t, err)
	assert.Empty(t, authors)
}

func Test_ImportBooks_StoresAllBooks(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	store := givenStore(t)

	// arrange
	series := GivenUniqueName(t, "Discworld")
	books := []librarystore.Book{
		FixtureBook(t, series+" 1", 2),
		FixtureBook(t, series+" 2", 1),
		FixtureBook(t, series+" 3", 4),
	}

	// act
	err := store.ImportBooks(ctxWithTimeout, books)

	// assert
	require.NoError(t, err)
	for _, book := range books {
		assert.NotZero(t, book.ID)
	}

	found, err := store.SearchBooksByTitle(ctxWithTimeout, series)
	require.NoError(t, err)
	assert.ElementsMatch(t, bookIDs(books), bookIDs(found))
}

func Test_ImportBooks_StoresNothingWhenOneBookFails(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	store := givenStore(t)

	// arrange
	series := GivenUniqueName(t, "Earthsea")
	books := []librarystore.Book{
		FixtureBook(t, series+" 1", 2),
		FixtureBook(t, series+" 2", -1),
	}

	// act
	err := store.ImportBooks(ctxWithTimeout, books)

	// assert
	require.Error(t, err)
	assert.ErrorIs(t, err, librarystore.ErrStorage)
	assert.Zero(t, books[0].ID)

	found, err := store.SearchBooksByTitle(ctxWithTimeout, series)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func bookIDs(books librarystore.Books) []int64 {
	ids := make([]int64, 0, len(books))
	for _, book := range books {
		ids = append(ids, book.ID)
	}

	return ids
}
