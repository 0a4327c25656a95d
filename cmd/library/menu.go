package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/librarystore"
	"github.com/AntonStoeckl/library-circulation-go/reports"
)

const msgInvalidOption = "Invalid option. Please try again."

// menu is the interactive text menu. Every screen loops until "0" is chosen or the input ends.
type menu struct {
	app     *app
	console *console
}

type menuEntry struct {
	label  string
	action func(ctx context.Context)
}

func newMenu(a *app, c *console) *menu {
	return &menu{app: a, console: c}
}

func (m *menu) run(ctx context.Context) error {
	m.loop(ctx, "LIBRARY MANAGEMENT SYSTEM", "Exit", []menuEntry{
		{label: "Book Management", action: m.bookMenu},
		{label: "Member Management", action: m.memberMenu},
		{label: "Loan Operations", action: m.loanMenu},
		{label: "Reports", action: m.reportMenu},
		{label: "Help", action: m.help},
	})

	m.console.header("GOODBYE")

	return nil
}

// loop shows the entries numbered from 1 and runs the chosen one.
func (m *menu) loop(ctx context.Context, title string, backLabel string, entries []menuEntry) {
	for ctx.Err() == nil {
		m.console.header(title)
		for i, entry := range entries {
			m.console.println(strconv.Itoa(i+1) + ". " + entry.label)
		}
		m.console.println("0. " + backLabel)

		choice, ok := m.console.prompt("\nSelect an option: ")
		if !ok || choice == "0" {
			return
		}

		index, err := strconv.Atoi(choice)
		if err != nil || index < 1 || index > len(entries) {
			m.console.failure(msgInvalidOption)
			continue
		}

		entries[index-1].action(ctx)
	}
}

func (m *menu) bookMenu(ctx context.Context) {
	m.loop(ctx, "BOOK MANAGEMENT", "Back to Main Menu", []menuEntry{
		{label: "Add New Book", action: m.addBook},
		{label: "Search Book by Title", action: m.searchBooksByTitle},
		{label: "Search Book by ISBN", action: m.searchBookByISBN},
	})
}

func (m *menu) addBook(ctx context.Context) {
	c := m.console
	c.header("ADD NEW BOOK")

	answers := make([]string, 0, 8)
	for _, label := range []string{
		"Title: ", "ISBN: ", "Category: ", "Publisher: ", "Publish Year (optional): ", "Shelf Location: ", "Quantity: ",
		"Author(s) (comma separated): ",
	} {
		answer, ok := c.prompt(label)
		if !ok {
			return
		}
		answers = append(answers, answer)
	}

	book := librarystore.Book{
		Title:         answers[0],
		ISBN:          answers[1],
		Category:      answers[2],
		Publisher:     answers[3],
		ShelfLocation: answers[5],
	}

	if answers[4] != "" {
		year, err := strconv.Atoi(answers[4])
		if err != nil {
			c.failure("Failed to add book: invalid publish year %q", answers[4])
			return
		}
		book.PublishYear = &year
	}

	quantity, err := strconv.Atoi(answers[6])
	if err != nil {
		c.failure("Failed to add book: invalid quantity %q", answers[6])
		return
	}
	book.Quantity = quantity

	if err = m.app.addBook(ctx, &book, strings.Split(answers[7], ",")); err != nil {
		c.failure("Failed to add book: %v", err)
		_ = m.app.fail("adding book failed", err)
		return
	}

	c.success("Book '%s' added successfully!", book.Title)
}

func (m *menu) searchBooksByTitle(ctx context.Context) {
	title, ok := m.console.prompt("Enter title keywords: ")
	if !ok {
		return
	}

	books, err := m.app.store.SearchBooksByTitle(ctx, title)
	if err != nil {
		m.storeFailure(err)
		return
	}

	if len(books) == 0 {
		m.console.warning("No books found.")
		return
	}

	m.console.table(bookColumns, bookRows(books))
}

func (m *menu) searchBookByISBN(ctx context.Context) {
	isbn, ok := m.console.prompt("Enter ISBN: ")
	if !ok {
		return
	}

	book, found, err := m.app.store.BookByISBN(ctx, isbn)
	if err != nil {
		m.storeFailure(err)
		return
	}

	if !found {
		m.console.warning("Book not found.")
		return
	}

	m.console.table(bookColumns, bookRows(librarystore.Books{book}))
}

func (m *menu) memberMenu(ctx context.Context) {
	m.loop(ctx, "MEMBER MANAGEMENT", "Back to Main Menu", []menuEntry{
		{label: "Register New Member", action: m.registerMember},
		{label: "Search Member by Name", action: m.searchMembers},
	})
}

func (m *menu) registerMember(ctx context.Context) {
	c := m.console
	c.header("REGISTER MEMBER")

	name, ok := c.prompt("Name: ")
	if !ok {
		return
	}

	nationalID, ok := c.prompt("National ID: ")
	if !ok {
		return
	}

	phone, ok := c.prompt("Phone: ")
	if !ok {
		return
	}

	member := librarystore.Member{Name: name, NationalID: nationalID, JoinDate: m.app.desk.Today()}
	if phone != "" {
		member.Phone = &phone
	}

	if err := m.app.store.SaveMember(ctx, &member); err != nil {
		c.failure("Failed to register member: %v", err)
		_ = m.app.fail("registering member failed", err)
		return
	}

	c.success("Member '%s' registered successfully! ID: %d", member.Name, member.ID)
}

func (m *menu) searchMembers(ctx context.Context) {
	name, ok := m.console.prompt("Enter name: ")
	if !ok {
		return
	}

	members, err := m.app.store.SearchMembersByName(ctx, name)
	if err != nil {
		m.storeFailure(err)
		return
	}

	if len(members) == 0 {
		m.console.warning("No members found.")
		return
	}

	m.console.table(memberColumns, memberRows(members))
}

func (m *menu) loanMenu(ctx context.Context) {
	m.loop(ctx, "LOAN OPERATIONS", "Back to Main Menu", []menuEntry{
		{label: "Issue New Loan", action: m.issueLoan},
		{label: "Return Book", action: m.returnBook},
	})
}

func (m *menu) issueLoan(ctx context.Context) {
	c := m.console
	c.header("ISSUE LOAN")

	memberID, ok := c.promptID("Member ID: ")
	if !ok {
		return
	}

	bookInput, ok := c.prompt("Book ID or Title: ")
	if !ok {
		return
	}

	bookID, candidates, err := m.app.findBook(ctx, bookInput)
	switch {
	case errors.Is(err, errAmbiguousTitle):
		c.warning("Multiple books found:")
		c.table(bookColumns[:3], candidateRows(candidates))

		if bookID, ok = c.promptID("Enter Book ID from list: "); !ok {
			return
		}
	case err != nil:
		c.failure("%v", err)
		return
	case len(candidates) == 1:
		c.println("Selected: " + candidates[0].Title + " (ID: " + strconv.FormatInt(bookID, 10) + ")")
	}

	_ = m.app.issueLoan(ctx, c, memberID, bookID)
}

func (m *menu) returnBook(ctx context.Context) {
	m.console.header("RETURN BOOK")

	loanID, ok := m.console.promptID("Enter Loan ID: ")
	if !ok {
		return
	}

	_ = m.app.returnLoan(ctx, m.console, loanID, false)
}

func (m *menu) reportMenu(ctx context.Context) {
	entries := make([]menuEntry, 0, len(reports.Kinds()))
	for _, kind := range reports.Kinds() {
		entries = append(entries, menuEntry{
			label: "Generate " + reportMenuLabel(kind) + " PDF",
			action: func(ctx context.Context) {
				_ = m.app.generateReport(ctx, m.console, kind, "")
			},
		})
	}

	m.loop(ctx, "REPORTS", "Back to Main Menu", entries)
}

func reportMenuLabel(kind reports.Kind) string {
	switch kind {
	case reports.KindInventory:
		return "Inventory"
	case reports.KindOverdue:
		return "Overdue Loans"
	case reports.KindActiveLoans:
		return "Active Loans"
	default:
		return "Member Directory"
	}
}

func (m *menu) help(_ context.Context) {
	m.console.header("USER GUIDE & HELP")
	m.console.table([]string{"Command", "Description"}, [][]string{
		{"Book Management", "Add books, link authors, and search the catalog."},
		{"Member Management", "Register new members and search existing ones."},
		{"Loan Operations", fmt.Sprintf("Issue %d-day loans (max %d per member) and process returns.", core.LoanPeriodDays, core.MaxActiveLoansPerMember)},
		{"Fine Calculation", "Fines are " + m.console.money(core.DailyFineRate) + "/day for overdue returns."},
		{"Reports", "Generate PDFs for inventory, overdue loans, active loans and members."},
	})
	m.console.prompt("\nPress Enter to return to main menu...")
}

func (m *menu) storeFailure(err error) {
	m.console.failure("Error: %v", err)
	_ = m.app.fail("menu operation failed", err)
}
