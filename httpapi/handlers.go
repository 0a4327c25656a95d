package httpapi

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/librarystore"
	"github.com/AntonStoeckl/library-circulation-go/reports"
)

var errInvalidArgument = errors.New("invalid argument")

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.generator.Stats(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleSearchBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.store.SearchBooksByTitle(r.Context(), r.URL.Query().Get("title"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toBookDTOs(books))
}

func (s *Server) handleAddBook(w http.ResponseWriter, r *http.Request) {
	var req addBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody(CodeInvalidArgument, "malformed request body"))
		return
	}

	book, err := req.toBook()
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody(CodeInvalidArgument, err.Error()))
		return
	}

	if err = s.store.SaveBook(r.Context(), &book); err != nil {
		s.writeError(w, err)
		return
	}

	for _, name := range req.Authors {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		author := librarystore.Author{Name: name}
		if err = s.store.SaveAuthor(r.Context(), &author); err != nil {
			s.writeError(w, err)
			return
		}

		if err = s.store.AddAuthorToBook(r.Context(), book.ID, author.ID); err != nil {
			s.writeError(w, err)
			return
		}
	}

	s.logInfo(logMsgBookAdded, "book_id", book.ID, "title", book.Title)
	s.writeJSON(w, http.StatusCreated, toBookDTO(book))
}

func (s *Server) handleBookByID(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	book, found, err := s.store.BookByID(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if !found {
		s.writeError(w, notFoundError{reason: core.ReasonBookNotFound})
		return
	}

	s.writeJSON(w, http.StatusOK, toBookDTO(book))
}

func (s *Server) handleBookByISBN(w http.ResponseWriter, r *http.Request) {
	book, found, err := s.store.BookByISBN(r.Context(), chi.URLParam(r, "isbn"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	if !found {
		s.writeError(w, notFoundError{reason: core.ReasonBookNotFound})
		return
	}

	s.writeJSON(w, http.StatusOK, toBookDTO(book))
}

func (s *Server) handleSearchMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.store.SearchMembersByName(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toMemberDTOs(members))
}

func (s *Server) handleRegisterMember(w http.ResponseWriter, r *http.Request) {
	var req registerMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody(CodeInvalidArgument, "malformed request body"))
		return
	}

	member, err := req.toMember()
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody(CodeInvalidArgument, err.Error()))
		return
	}

	member.JoinDate = s.desk.Today()
	if err = s.store.SaveMember(r.Context(), &member); err != nil {
		s.writeError(w, err)
		return
	}

	s.logInfo(logMsgMemberRegistered, "member_id", member.ID)
	s.writeJSON(w, http.StatusCreated, toMemberDTO(member))
}

func (s *Server) handleMemberByID(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	member, found, err := s.store.MemberByID(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if !found {
		s.writeError(w, notFoundError{reason: core.ReasonMemberNotFound})
		return
	}

	s.writeJSON(w, http.StatusOK, toMemberDTO(member))
}

func (s *Server) handleActiveLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := s.store.ActiveLoans(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toLoanDTOs(loans))
}

func (s *Server) handleOverdueLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := s.store.OverdueLoans(r.Context(), s.desk.Today())
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toLoanDTOs(loans))
}

func (s *Server) handleIssueLoan(w http.ResponseWriter, r *http.Request) {
	var req issueLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody(CodeInvalidArgument, "malformed request body"))
		return
	}

	if req.MemberID <= 0 || req.BookID <= 0 {
		s.writeJSON(w, http.StatusBadRequest, errorBody(CodeInvalidArgument, "member_id and book_id must be positive"))
		return
	}

	loan, err := s.desk.Issue(r.Context(), req.MemberID, req.BookID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, outcomeDTO{Success: true, Message: core.MsgLoanIssued, LoanID: loan.ID})
}

func (s *Server) handlePreviewFine(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	outcome, err := s.desk.PreviewFine(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toReturnOutcomeDTO(outcome))
}

func (s *Server) handleReturnLoan(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	outcome, err := s.desk.ReturnLoan(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toReturnOutcomeDTO(outcome))
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	kind, err := reports.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	format, err := reports.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	report, err := s.generator.Build(r.Context(), kind)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var body bytes.Buffer
	if err = reports.Render(&body, report, format); err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", reports.DefaultFilename(kind, format)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body.Bytes())
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		s.writeJSON(w, http.StatusBadRequest, errorBody(CodeInvalidArgument, fmt.Sprintf("%s: id %q", errInvalidArgument, raw)))
		return 0, false
	}

	return id, true
}
