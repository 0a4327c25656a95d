package reports_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/librarystore"
	"github.com/AntonStoeckl/library-circulation-go/reports"
	. "github.com/AntonStoeckl/library-circulation-go/testutil/helper" //nolint:revive
)

func Test_Generator_Generate_DefaultFileNames(t *testing.T) {
	expected := map[reports.Kind]string{
		reports.KindInventory:   "inventory_report.pdf",
		reports.KindOverdue:     "overdue_report.pdf",
		reports.KindActiveLoans: "active_loans_report.pdf",
		reports.KindMembers:     "member_report.pdf",
	}

	for kind, filename := range expected {
		t.Run(string(kind), func(t *testing.T) {
			// setup
			dir := t.TempDir()
			logHandler := NewTestLogHandler(false)
			generator := reports.NewGenerator(
				givenSourceWithBooks(3),
				reports.WithOutputDir(dir),
				reports.WithLogger(NewLogger(logHandler)),
			)

			// act
			path, err := generator.Generate(context.Background(), kind, "")

			// assert
			require.NoError(t, err)
			assert.True(t, filepath.IsAbs(path))
			assert.Equal(t, filepath.Join(dir, filename), path)

			content, readErr := os.ReadFile(path)
			require.NoError(t, readErr)
			assert.True(t, len(content) > 0)
			assert.True(t, logHandler.HasInfoLogWithMessage("report generated").WithAttrValue("path", path).Assert())
		})
	}
}

func Test_Generator_Generate_JSON_ToExplicitFile(t *testing.T) {
	// setup
	dir := t.TempDir()
	generator := reports.NewGenerator(
		givenSourceWithBooks(2),
		reports.WithClock(func() time.Time { return time.Date(2024, 6, 1, 14, 0, 0, 0, time.UTC) }),
	)

	// act
	path, err := generator.Generate(context.Background(), reports.KindInventory, filepath.Join(dir, "books.json"))

	// assert
	require.NoError(t, err)
	content, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Contains(t, string(content), `"date": "2024-06-01"`)
}

func Test_Generator_Generate_Failures(t *testing.T) {
	// setup
	storeErr := errors.Join(librarystore.ErrStorage, librarystore.ErrQueryingFailed)
	failing := reports.NewGenerator(sourceStub{err: storeErr}, reports.WithOutputDir(t.TempDir()))
	working := reports.NewGenerator(givenSourceWithBooks(1), reports.WithOutputDir(filepath.Join(t.TempDir(), "missing")))

	// act
	_, storeFailure := failing.Generate(context.Background(), reports.KindInventory, "")
	_, formatFailure := working.Generate(context.Background(), reports.KindInventory, "inventory.xlsx")
	_, writeFailure := working.Generate(context.Background(), reports.KindInventory, "")

	// assert
	assert.ErrorIs(t, storeFailure, librarystore.ErrStorage)
	assert.ErrorIs(t, formatFailure, reports.ErrUnsupportedFormat)
	assert.Error(t, writeFailure)
}

func Test_Generator_Stats(t *testing.T) {
	// arrange
	generator := reports.NewGenerator(givenSourceWithBooks(4))

	// act
	stats, err := generator.Stats(context.Background())

	// assert
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalBooks)
}

func givenSourceWithBooks(count int) sourceStub {
	books := make(librarystore.Books, 0, count)
	for i := 1; i <= count; i++ {
		books = append(books, librarystore.Book{
			ID:            int64(i),
			Title:         "Book " + strconv.Itoa(i),
			ISBN:          "978-0-00-00000" + strconv.Itoa(i),
			Category:      "Fiction",
			ShelfLocation: "B-0" + strconv.Itoa(i),
			Quantity:      i,
		})
	}

	return sourceStub{books: books}
}

func givenReport(t *testing.T, rows int) reports.Report {
	t.Helper()

	generator := reports.NewGenerator(
		givenSourceWithBooks(rows),
		reports.WithClock(func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }),
	)

	report, err := generator.Build(context.Background(), reports.KindInventory)
	require.NoError(t, err)

	return report
}
