package reports

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/AntonStoeckl/library-circulation-go/librarystore"
)

// Kind identifies one of the reports.
type Kind string

// The available reports.
const (
	KindInventory   Kind = "inventory"
	KindOverdue     Kind = "overdue"
	KindActiveLoans Kind = "active"
	KindMembers     Kind = "members"
)

// ErrUnknownKind is returned for a report kind that does not exist.
var ErrUnknownKind = errors.New("unknown report kind")

// Kinds lists all report kinds in menu order.
func Kinds() []Kind {
	return []Kind{KindInventory, KindOverdue, KindActiveLoans, KindMembers}
}

// ParseKind maps user input to a Kind.
func ParseKind(value string) (Kind, error) {
	for _, kind := range Kinds() {
		if string(kind) == value {
			return kind, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownKind, value)
}

// RGB is a header background color.
type RGB struct {
	R, G, B int
}

var (
	headerGrey  = RGB{R: 128, G: 128, B: 128}
	headerRed   = RGB{R: 255, G: 0, B: 0}
	headerBlue  = RGB{R: 0, G: 0, B: 255}
	headerGreen = RGB{R: 0, G: 128, B: 0}
)

type layout struct {
	title          string
	columns        []string
	headerColor    RGB
	defaultFileOut string
}

var layouts = map[Kind]layout{
	KindInventory: {
		title:          "Library Inventory Report",
		columns:        []string{"ID", "Title", "ISBN", "Category", "Shelf", "Qty"},
		headerColor:    headerGrey,
		defaultFileOut: "inventory_report",
	},
	KindOverdue: {
		title:          "Overdue Loans Report",
		columns:        []string{"Loan ID", "Member", "Book ID", "Due Date", "Days Late"},
		headerColor:    headerRed,
		defaultFileOut: "overdue_report",
	},
	KindActiveLoans: {
		title:          "Active Loans Report",
		columns:        []string{"Loan ID", "Member", "Book Title", "Loan Date", "Due Date"},
		headerColor:    headerBlue,
		defaultFileOut: "active_loans_report",
	},
	KindMembers: {
		title:          "Member Directory",
		columns:        []string{"ID", "Name", "National ID", "Phone", "Join Date"},
		headerColor:    headerGreen,
		defaultFileOut: "member_report",
	},
}

// DefaultFilename returns the file name a report is written to when none is given.
func DefaultFilename(kind Kind, format Format) string {
	return layouts[kind].defaultFileOut + "." + string(format)
}

// Report is a built report: a title, the date it was built for and a table of strings.
type Report struct {
	Kind        Kind       `json:"kind"`
	Title       string     `json:"title"`
	Date        string     `json:"date"`
	Columns     []string   `json:"columns"`
	Rows        [][]string `json:"rows"`
	HeaderColor RGB        `json:"-"`
}

// DateLine is the line printed under the title.
func (r Report) DateLine() string {
	return "Date: " + r.Date
}

func newReport(kind Kind, today time.Time) Report {
	l := layouts[kind]

	return Report{
		Kind:        kind,
		Title:       l.title,
		Date:        formatDate(today),
		Columns:     l.columns,
		Rows:        make([][]string, 0),
		HeaderColor: l.headerColor,
	}
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func fallbackID(id int64) string {
	return "ID: " + formatID(id)
}

func formatDate(t time.Time) string {
	return librarystore.DateOf(t).Format(librarystore.DateLayout)
}
