// Package reports builds the library's tabular reports and the dashboard statistics.
//
// Four reports exist: the inventory of all books, the overdue loans, the active loans and the member
// directory. A Report is built from the store once and can then be rendered as PDF (go-pdf/fpdf) or as
// JSON (json-iterator). Generator writes rendered reports to files and returns their absolute path.
package reports
