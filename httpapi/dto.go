package httpapi

import (
	"fmt"
	"strings"
	"time"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/librarystore"
)

type bookDTO struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	ISBN          string `json:"isbn"`
	Category      string `json:"category"`
	Publisher     string `json:"publisher"`
	PublishYear   *int   `json:"publish_year,omitempty"`
	ShelfLocation string `json:"shelf_location"`
	Quantity      int    `json:"quantity"`
}

type memberDTO struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	NationalID string  `json:"national_id"`
	Phone      *string `json:"phone,omitempty"`
	JoinDate   string  `json:"join_date"`
}

type loanDTO struct {
	ID         int64   `json:"id"`
	MemberID   int64   `json:"member_id"`
	BookID     int64   `json:"book_id"`
	LoanDate   string  `json:"loan_date"`
	DueDate    string  `json:"due_date"`
	ReturnDate *string `json:"return_date,omitempty"`
	FineAmount float64 `json:"fine_amount"`
}

type addBookRequest struct {
	Title         string   `json:"title"`
	ISBN          string   `json:"isbn"`
	Category      string   `json:"category"`
	Publisher     string   `json:"publisher"`
	PublishYear   *int     `json:"publish_year"`
	ShelfLocation string   `json:"shelf_location"`
	Quantity      *int     `json:"quantity"`
	Authors       []string `json:"authors"`
}

// toBook validates the request. A missing quantity means one copy.
func (r addBookRequest) toBook() (librarystore.Book, error) {
	if strings.TrimSpace(r.Title) == "" {
		return librarystore.Book{}, fmt.Errorf("%w: title is required", errInvalidArgument)
	}

	quantity := 1
	if r.Quantity != nil {
		quantity = *r.Quantity
	}

	if quantity < 0 {
		return librarystore.Book{}, fmt.Errorf("%w: quantity must not be negative", errInvalidArgument)
	}

	return librarystore.Book{
		Title:         r.Title,
		ISBN:          r.ISBN,
		Category:      r.Category,
		Publisher:     r.Publisher,
		PublishYear:   r.PublishYear,
		ShelfLocation: r.ShelfLocation,
		Quantity:      quantity,
	}, nil
}

type registerMemberRequest struct {
	Name       string  `json:"name"`
	NationalID string  `json:"national_id"`
	Phone      *string `json:"phone"`
}

func (r registerMemberRequest) toMember() (librarystore.Member, error) {
	if strings.TrimSpace(r.Name) == "" {
		return librarystore.Member{}, fmt.Errorf("%w: name is required", errInvalidArgument)
	}

	return librarystore.Member{Name: r.Name, NationalID: r.NationalID, Phone: r.Phone}, nil
}

type issueLoanRequest struct {
	MemberID int64 `json:"member_id"`
	BookID   int64 `json:"book_id"`
}

type outcomeDTO struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	LoanID  int64  `json:"loan_id,omitempty"`
}

type returnOutcomeDTO struct {
	LoanID     int64   `json:"loan_id"`
	DueDate    string  `json:"due_date"`
	ReturnDate string  `json:"return_date"`
	DaysLate   int     `json:"days_late"`
	Fine       float64 `json:"fine"`
}

type errorDTO struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func formatDate(t time.Time) string {
	return librarystore.DateOf(t).Format(librarystore.DateLayout)
}

func toBookDTOs(books librarystore.Books) []bookDTO {
	dtos := make([]bookDTO, 0, len(books))
	for _, b := range books {
		dtos = append(dtos, toBookDTO(b))
	}

	return dtos
}

func toBookDTO(b librarystore.Book) bookDTO {
	return bookDTO{
		ID:            b.ID,
		Title:         b.Title,
		ISBN:          b.ISBN,
		Category:      b.Category,
		Publisher:     b.Publisher,
		PublishYear:   b.PublishYear,
		ShelfLocation: b.ShelfLocation,
		Quantity:      b.Quantity,
	}
}

func toMemberDTOs(members librarystore.Members) []memberDTO {
	dtos := make([]memberDTO, 0, len(members))
	for _, m := range members {
		dtos = append(dtos, toMemberDTO(m))
	}

	return dtos
}

func toMemberDTO(m librarystore.Member) memberDTO {
	return memberDTO{
		ID:         m.ID,
		Name:       m.Name,
		NationalID: m.NationalID,
		Phone:      m.Phone,
		JoinDate:   formatDate(m.JoinDate),
	}
}

func toLoanDTOs(loans librarystore.Loans) []loanDTO {
	dtos := make([]loanDTO, 0, len(loans))
	for _, l := range loans {
		dto := loanDTO{
			ID:         l.ID,
			MemberID:   l.MemberID,
			BookID:     l.BookID,
			LoanDate:   formatDate(l.LoanDate),
			DueDate:    formatDate(l.DueDate),
			FineAmount: l.FineAmount,
		}
		if l.ReturnDate != nil {
			returned := formatDate(*l.ReturnDate)
			dto.ReturnDate = &returned
		}
		dtos = append(dtos, dto)
	}

	return dtos
}

func toReturnOutcomeDTO(o core.ReturnOutcome) returnOutcomeDTO {
	return returnOutcomeDTO{
		LoanID:     o.LoanID,
		DueDate:    formatDate(o.DueDate),
		ReturnDate: formatDate(o.ReturnDate),
		DaysLate:   o.DaysLate,
		Fine:       o.Fine,
	}
}
