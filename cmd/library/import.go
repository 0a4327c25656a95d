package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-circulation-go/librarystore"
)

const (
	csvTitle     = "title"
	csvISBN      = "isbn"
	csvCategory  = "category"
	csvPublisher = "publisher"
	csvYear      = "publish_year"
	csvShelf     = "shelf_location"
	csvQuantity  = "quantity"
)

var errInvalidCSV = errors.New("invalid book CSV")

func newBookImportCommand(withApp func(runFunc) func(*cobra.Command, []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import books from a CSV file with a header row, all or nothing",
		Long: "The header names the columns: title (required), isbn, category, publisher, publish_year, " +
			"shelf_location and quantity (default 1), in any order.",
		Args: cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, c *console, args []string) error {
			books, err := readBooksCSV(args[0])
			if err != nil {
				c.failure("%v", err)
				return reportedError{err: err}
			}

			if err = a.importBooks(ctx, books); err != nil {
				c.failure("Import failed, no book was stored: %v", err)
				return a.fail("importing books failed", err)
			}

			c.success("Imported %d books.", len(books))

			return nil
		}),
	}
}

func (a *app) importBooks(ctx context.Context, books []librarystore.Book) error {
	if err := a.store.ImportBooks(ctx, books); err != nil {
		return err
	}

	a.logger.Info("books imported", "count", len(books))

	return nil
}

func readBooksCSV(path string) ([]librarystore.Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return parseBooksCSV(f)
}

// parseBooksCSV reads one book per record. Line numbers in errors count the header as line 1.
func parseBooksCSV(r io.Reader) ([]librarystore.Book, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %w", errInvalidCSV, err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	if _, ok := columns[csvTitle]; !ok {
		return nil, fmt.Errorf("%w: header has no %q column", errInvalidCSV, csvTitle)
	}

	books := make([]librarystore.Book, 0)

	for line := 2; ; line++ {
		record, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}

		if readErr != nil {
			return nil, fmt.Errorf("%w: %w", errInvalidCSV, readErr)
		}

		book, parseErr := bookFromRecord(columns, record)
		if parseErr != nil {
			return nil, fmt.Errorf("%w: line %d: %w", errInvalidCSV, line, parseErr)
		}

		books = append(books, book)
	}

	return books, nil
}

func bookFromRecord(columns map[string]int, record []string) (librarystore.Book, error) {
	field := func(name string) string {
		if i, ok := columns[name]; ok && i < len(record) {
			return strings.TrimSpace(record[i])
		}

		return ""
	}

	book := librarystore.Book{
		Title:         field(csvTitle),
		ISBN:          field(csvISBN),
		Category:      field(csvCategory),
		Publisher:     field(csvPublisher),
		ShelfLocation: field(csvShelf),
		Quantity:      1,
	}

	if book.Title == "" {
		return librarystore.Book{}, errors.New("title is empty")
	}

	if raw := field(csvYear); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return librarystore.Book{}, fmt.Errorf("publish_year %q is not a number", raw)
		}
		book.PublishYear = &year
	}

	if raw := field(csvQuantity); raw != "" {
		quantity, err := strconv.Atoi(raw)
		if err != nil || quantity < 0 {
			return librarystore.Book{}, fmt.Errorf("quantity %q is not a non-negative number", raw)
		}
		book.Quantity = quantity
	}

	return book, nil
}
