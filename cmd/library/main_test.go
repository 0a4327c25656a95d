package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/librarystore/sqlengine"
	"github.com/AntonStoeckl/library-circulation-go/shell/config"
	"github.com/AntonStoeckl/library-circulation-go/shell/connpool"
	. "github.com/AntonStoeckl/library-circulation-go/testutil/helper" //nolint:revive
)

func Test_Book_AddAndSearch(t *testing.T) {
	// setup
	dbPath := givenEnvironment(t)

	// act
	addOut, addErr := runCLI(t, "", "--db", dbPath, "book", "add",
		"--title", "The Hobbit", "--isbn", "978-0-261-10221-7", "--shelf", "B-02", "--quantity", "3",
		"--authors", "J. R. R. Tolkien")
	searchOut, searchErr := runCLI(t, "", "--db", dbPath, "book", "search", "hobbit")
	isbnOut, isbnErr := runCLI(t, "", "--db", dbPath, "book", "isbn", "000-0")

	// assert
	require.NoError(t, addErr)
	assert.Contains(t, addOut, "SUCCESS: Book 'The Hobbit' added successfully! ID: 1")
	assert.NotContains(t, addOut, "\033[", "no colors when not writing to a terminal")

	require.NoError(t, searchErr)
	assert.Contains(t, searchOut, "The Hobbit")
	assert.Contains(t, searchOut, "B-02")

	require.NoError(t, isbnErr)
	assert.Contains(t, isbnOut, "WARNING: Book not found.")
}

func Test_Loan_IssueTwice_TheSecondIsRejected(t *testing.T) {
	// setup
	dbPath := givenEnvironment(t)
	_, err := runCLI(t, "", "--db", dbPath, "member", "register", "--name", "Ginny Weasley", "--national-id", "GW-1")
	require.NoError(t, err)
	_, err = runCLI(t, "", "--db", dbPath, "book", "add", "--title", "Tom Riddle's Diary", "--quantity", "1")
	require.NoError(t, err)

	// act
	firstOut, firstErr := runCLI(t, "", "--db", dbPath, "loan", "issue", "--member", "1", "--book", "Riddle")
	secondOut, secondErr := runCLI(t, "", "--db", dbPath, "loan", "issue", "--member", "1", "--book", "1")
	activeOut, activeErr := runCLI(t, "", "--db", dbPath, "loan", "active")

	// assert
	require.NoError(t, firstErr)
	assert.Contains(t, firstOut, "Selected: Tom Riddle's Diary")
	assert.Contains(t, firstOut, "SUCCESS: Loan issued successfully. Loan ID: 1")

	require.Error(t, secondErr)
	assert.True(t, isReported(secondErr))
	assert.Contains(t, secondOut, "ERROR: Active loan limit reached (Max 1).")

	require.NoError(t, activeErr)
	assert.Contains(t, activeOut, "Loan ID")
}

func Test_Loan_Return_AsksBeforeChargingTheFine(t *testing.T) {
	// setup
	dbPath := givenEnvironment(t)
	loanID := givenOverdueLoan(t, dbPath)

	// act
	cancelledOut, cancelledErr := runCLI(t, "n\n", "--db", dbPath, "loan", "return", loanID)
	confirmedOut, confirmedErr := runCLI(t, "y\n", "--db", dbPath, "loan", "return", loanID)
	againOut, againErr := runCLI(t, "", "--db", dbPath, "loan", "return", loanID)

	// assert
	require.NoError(t, cancelledErr)
	assert.Contains(t, cancelledOut, "WARNING: Book is overdue! Calculated Fine: $")
	assert.Contains(t, cancelledOut, "Return cancelled.")

	require.NoError(t, confirmedErr)
	assert.Contains(t, confirmedOut, "SUCCESS: Book returned successfully. Fine charged: $")

	require.Error(t, againErr)
	assert.Contains(t, againOut, "WARNING: This book has already been returned.")
}

func Test_Loan_Return_UnknownLoan(t *testing.T) {
	// setup
	dbPath := givenEnvironment(t)

	// act
	out, err := runCLI(t, "", "--db", dbPath, "loan", "return", "4711")

	// assert
	require.Error(t, err)
	assert.Contains(t, out, "ERROR: Loan record not found.")
}

func Test_Report_WritesTheFile(t *testing.T) {
	// setup
	dbPath := givenEnvironment(t)
	reportDir := t.TempDir()

	// act
	pdfOut, pdfErr := runCLI(t, "", "--db", dbPath, "--report-dir", reportDir, "report", "inventory")
	jsonOut, jsonErr := runCLI(t, "", "--db", dbPath, "--report-dir", reportDir, "report", "members", "-o", "members.json")
	_, unknownErr := runCLI(t, "", "--db", dbPath, "report", "payroll")

	// assert
	require.NoError(t, pdfErr)
	assert.Contains(t, pdfOut, "Inventory report saved to "+filepath.Join(reportDir, "inventory_report.pdf"))
	assert.FileExists(t, filepath.Join(reportDir, "inventory_report.pdf"))

	require.NoError(t, jsonErr)
	assert.Contains(t, jsonOut, "Member report saved to")
	assert.FileExists(t, filepath.Join(reportDir, "members.json"))

	assert.Error(t, unknownErr)
}

func Test_Stats(t *testing.T) {
	// setup
	dbPath := givenEnvironment(t)
	_, err := runCLI(t, "", "--db", dbPath, "member", "register", "--name", "Fred Weasley")
	require.NoError(t, err)

	// act
	out, err := runCLI(t, "", "--db", dbPath, "stats")

	// assert
	require.NoError(t, err)
	assert.Contains(t, out, "Total Books")
	assert.Contains(t, out, "Members")
	assert.Contains(t, out, "Overdue Loans")
}

func Test_Menu_RegisterMemberAndLeave(t *testing.T) {
	// setup
	dbPath := givenEnvironment(t)
	input := strings.Join([]string{
		"2", "1", "Hermione Granger", "HG-1", "+44 20 7946 0000",
		"2", "Granger",
		"0",
		"9",
		"0",
	}, "\n") + "\n"

	// act
	out, err := runCLI(t, input, "--db", dbPath, "menu")

	// assert
	require.NoError(t, err)
	assert.Contains(t, out, "LIBRARY MANAGEMENT SYSTEM")
	assert.Contains(t, out, "SUCCESS: Member 'Hermione Granger' registered successfully! ID: 1")
	assert.Contains(t, out, "HG-1")
	assert.Contains(t, out, "ERROR: Invalid option. Please try again.")
	assert.Contains(t, out, "GOODBYE")
}

func Test_Menu_EndsWhenTheInputEnds(t *testing.T) {
	// setup
	dbPath := givenEnvironment(t)

	// act
	out, err := runCLI(t, "3\n1\n", "--db", dbPath, "menu")

	// assert
	require.NoError(t, err)
	assert.Contains(t, out, "ISSUE LOAN")
	assert.Contains(t, out, "GOODBYE")
}

func Test_Simulate_RunsAndReports(t *testing.T) {
	// setup
	dbPath := givenEnvironment(t)

	// act
	out, err := runCLI(t, "", "--db", dbPath, "simulate",
		"--rate", "200", "--duration", "300ms", "--members", "3", "--books", "2")

	// assert
	require.NoError(t, err)
	assert.Contains(t, out, "Issued")
	assert.Contains(t, out, "Rejected")
}

func Test_Console_Money(t *testing.T) {
	c := newConsole(strings.NewReader(""), &bytes.Buffer{})

	assert.Equal(t, "$12.00", c.money(12))
	assert.Equal(t, "$1,234.50", c.money(1234.5))
}

// givenEnvironment points the log file into a temp dir and returns a fresh database path.
func givenEnvironment(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv(config.EnvLogFile, filepath.Join(dir, "library_system.log"))
	t.Setenv(config.EnvDBDriver, config.DriverSQLite3)
	t.Setenv(config.EnvOTLPEndpoint, "")
	t.Setenv(config.EnvMySQLHost, "")
	t.Setenv(config.EnvDBHost, "")

	return filepath.Join(dir, "library.db")
}

// givenOverdueLoan stores a loan that was due long ago and returns its ID.
func givenOverdueLoan(t *testing.T, dbPath string) string {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := connpool.Open(ctx, config.Database{Driver: config.DriverSQLite3, Path: dbPath, PoolSize: 1})
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, pool.EnsureSchema(ctx))

	store, err := pool.NewStore()
	require.NoError(t, err)

	return strconv.FormatInt(givenOverdueLoanIn(t, ctx, store), 10)
}

func givenOverdueLoanIn(t *testing.T, ctx context.Context, store sqlengine.Store) int64 {
	t.Helper()

	member := GivenMemberWasSaved(t, ctx, store, "Percy Weasley")
	book := GivenBookWasSaved(t, ctx, store, "Cauldron Thickness Standards", 1)
	loan := GivenActiveLoanWasSaved(t, ctx, store, member.ID, book.ID, MustDate(t, "2020-01-01"), MustDate(t, "2020-01-08"))

	return loan.ID
}

func runCLI(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := newRootCommand(strings.NewReader(input), &out)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())

	return out.String(), err
}

func Test_Book_Import(t *testing.T) {
	// setup
	dbPath := givenEnvironment(t)
	csvPath := filepath.Join(t.TempDir(), "books.csv")
	content := "title,isbn,quantity,publish_year\n" +
		"Dune,978-0-441-17271-9,2,1965\n" +
		"\"Children of Dune\",978-0-441-10402-4,,\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(content), 0o600))

	// act
	out, err := runCLI(t, "", "--db", dbPath, "book", "import", csvPath)
	searchOut, searchErr := runCLI(t, "", "--db", dbPath, "book", "search", "Dune")

	// assert
	require.NoError(t, err)
	assert.Contains(t, out, "SUCCESS: Imported 2 books.")
	require.NoError(t, searchErr)
	assert.Contains(t, searchOut, "Children of Dune")
}

func Test_ParseBooksCSV_Failures(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		errText string
	}{
		{name: "empty input", content: "", errText: "reading header"},
		{name: "no title column", content: "isbn\n123\n", errText: `no "title" column`},
		{name: "empty title", content: "title,isbn\n,123\n", errText: "line 2: title is empty"},
		{name: "bad year", content: "title,publish_year\nDune,soon\n", errText: `publish_year "soon"`},
		{name: "negative quantity", content: "title,quantity\nDune,-2\n", errText: `quantity "-2"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			books, err := parseBooksCSV(strings.NewReader(tc.content))

			// assert
			assert.ErrorIs(t, err, errInvalidCSV)
			assert.ErrorContains(t, err, tc.errText)
			assert.Nil(t, books)
		})
	}
}
