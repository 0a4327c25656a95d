package reports

import (
	"context"
	"strconv"
	"time"
)

// Build reads the data of the report kind from source as of today.
func Build(ctx context.Context, source Source, kind Kind, today time.Time) (Report, error) {
	switch kind {
	case KindInventory:
		return buildInventory(ctx, source, today)
	case KindOverdue:
		return buildOverdue(ctx, source, today)
	case KindActiveLoans:
		return buildActiveLoans(ctx, source, today)
	case KindMembers:
		return buildMembers(ctx, source, today)
	default:
		_, err := ParseKind(string(kind))
		return Report{}, err
	}
}

func buildInventory(ctx context.Context, source Source, today time.Time) (Report, error) {
	books, err := source.AllBooks(ctx)
	if err != nil {
		return Report{}, err
	}

	report := newReport(KindInventory, today)
	for _, b := range books {
		report.Rows = append(report.Rows, []string{
			formatID(b.ID), b.Title, b.ISBN, b.Category, b.ShelfLocation, strconv.Itoa(b.Quantity),
		})
	}

	return report, nil
}

func buildOverdue(ctx context.Context, source Source, today time.Time) (Report, error) {
	loans, err := source.OverdueLoans(ctx, today)
	if err != nil {
		return Report{}, err
	}

	names := newNameLookup(source)
	report := newReport(KindOverdue, today)
	for _, l := range loans {
		memberName, lookupErr := names.member(ctx, l.MemberID)
		if lookupErr != nil {
			return Report{}, lookupErr
		}

		report.Rows = append(report.Rows, []string{
			formatID(l.ID), memberName, formatID(l.BookID), formatDate(l.DueDate), strconv.Itoa(l.DaysLate(today)),
		})
	}

	return report, nil
}

func buildActiveLoans(ctx context.Context, source Source, today time.Time) (Report, error) {
	loans, err := source.ActiveLoans(ctx)
	if err != nil {
		return Report{}, err
	}

	names := newNameLookup(source)
	report := newReport(KindActiveLoans, today)
	for _, l := range loans {
		memberName, lookupErr := names.member(ctx, l.MemberID)
		if lookupErr != nil {
			return Report{}, lookupErr
		}

		bookTitle, lookupErr := names.book(ctx, l.BookID)
		if lookupErr != nil {
			return Report{}, lookupErr
		}

		report.Rows = append(report.Rows, []string{
			formatID(l.ID), memberName, bookTitle, formatDate(l.LoanDate), formatDate(l.DueDate),
		})
	}

	return report, nil
}

func buildMembers(ctx context.Context, source Source, today time.Time) (Report, error) {
	members, err := source.AllMembers(ctx)
	if err != nil {
		return Report{}, err
	}

	report := newReport(KindMembers, today)
	for _, m := range members {
		phone := ""
		if m.Phone != nil {
			phone = *m.Phone
		}

		report.Rows = append(report.Rows, []string{
			formatID(m.ID), m.Name, m.NationalID, phone, formatDate(m.JoinDate),
		})
	}

	return report, nil
}

// nameLookup resolves member names and book titles once per report.
// Missing rows are shown as "ID: n".
type nameLookup struct {
	source  Source
	members map[int64]string
	books   map[int64]string
}

func newNameLookup(source Source) *nameLookup {
	return &nameLookup{
		source:  source,
		members: make(map[int64]string),
		books:   make(map[int64]string),
	}
}

func (n *nameLookup) member(ctx context.Context, id int64) (string, error) {
	if name, ok := n.members[id]; ok {
		return name, nil
	}

	member, found, err := n.source.MemberByID(ctx, id)
	if err != nil {
		return "", err
	}

	name := fallbackID(id)
	if found {
		name = member.Name
	}
	n.members[id] = name

	return name, nil
}

func (n *nameLookup) book(ctx context.Context, id int64) (string, error) {
	if title, ok := n.books[id]; ok {
		return title, nil
	}

	book, found, err := n.source.BookByID(ctx, id)
	if err != nil {
		return "", err
	}

	title := fallbackID(id)
	if found {
		title = book.Title
	}
	n.books[id] = title

	return title, nil
}
