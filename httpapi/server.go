package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/time/rate"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
	"github.com/AntonStoeckl/library-circulation-go/librarystore"
	"github.com/AntonStoeckl/library-circulation-go/reports"
)

const (
	defaultRequestsPerSecond = 20
	defaultBurst             = 40
	readHeaderTimeout        = 5 * time.Second
	shutdownTimeout          = 10 * time.Second

	logMsgRequest          = "http request"
	logMsgRateLimited      = "http request rate limited"
	logMsgEncodingFailed   = "encoding http response failed"
	logMsgServerStarted    = "http server started"
	logMsgServerStopped    = "http server stopped"
	logMsgRequestFailed    = "http request failed"
	logMsgBookAdded        = "book added"
	logMsgMemberRegistered = "member registered"

	msgInternalError = "internal server error"
	msgUnavailable   = "database unavailable, try again later"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Store defines the store operations the API reads directly.
type Store interface {
	reports.Source
	BookByISBN(ctx context.Context, isbn string) (librarystore.Book, bool, error)
	SearchBooksByTitle(ctx context.Context, text string) (librarystore.Books, error)
	SearchMembersByName(ctx context.Context, text string) (librarystore.Members, error)
	SaveBook(ctx context.Context, book *librarystore.Book) error
	SaveAuthor(ctx context.Context, author *librarystore.Author) error
	AddAuthorToBook(ctx context.Context, bookID, authorID int64) error
	SaveMember(ctx context.Context, member *librarystore.Member) error
}

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	store     Store
	desk      *circulation.Desk
	generator *reports.Generator
	limiter   *rate.Limiter
	logger    librarystore.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithRateLimit sets the token bucket shared by all requests.
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(s *Server) {
		s.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
}

// WithLogger logs every request at info level and failures at error level.
func WithLogger(logger librarystore.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a Server.
func NewServer(store Store, desk *circulation.Desk, generator *reports.Generator, opts ...Option) *Server {
	s := &Server{
		store:     store,
		desk:      desk,
		generator: generator,
		limiter:   rate.NewLimiter(rate.Limit(defaultRequestsPerSecond), defaultBurst),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Router returns the http.Handler serving all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(s.rateLimit)

	r.Get("/healthz", s.handleHealth)
	r.Get("/stats", s.handleStats)

	r.Route("/books", func(r chi.Router) {
		r.Get("/", s.handleSearchBooks)
		r.Post("/", s.handleAddBook)
		r.Get("/{id}", s.handleBookByID)
		r.Get("/isbn/{isbn}", s.handleBookByISBN)
	})

	r.Route("/members", func(r chi.Router) {
		r.Get("/", s.handleSearchMembers)
		r.Post("/", s.handleRegisterMember)
		r.Get("/{id}", s.handleMemberByID)
	})

	r.Route("/loans", func(r chi.Router) {
		r.Post("/", s.handleIssueLoan)
		r.Get("/active", s.handleActiveLoans)
		r.Get("/overdue", s.handleOverdueLoans)
		r.Get("/{id}/fine", s.handlePreviewFine)
		r.Post("/{id}/return", s.handleReturnLoan)
	})

	r.Get("/reports/{kind}", s.handleReport)

	return r
}

// ListenAndServe serves the API on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.ListenAndServe()
	}()

	s.logInfo(logMsgServerStarted, "addr", addr)

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := httpServer.Shutdown(shutdownCtx)
	if serveResult := <-serveErr; !errors.Is(serveResult, http.ErrServerClosed) {
		err = errors.Join(err, serveResult)
	}

	s.logInfo(logMsgServerStopped, "addr", addr)

	return err
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			s.logWarn(logMsgRateLimited, "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()))
			w.Header().Set("Retry-After", "1")
			s.writeJSON(w, http.StatusTooManyRequests, errorBody(CodeRateLimited, "rate limit exceeded"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logInfo(logMsgRequest,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", float64(time.Since(start).Nanoseconds())/1e6,
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logError(logMsgEncodingFailed, "error", err.Error())
	}
}

// writeError answers with the classified status. Driver details of 5xx errors only go to the log.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	message := err.Error()

	switch status {
	case http.StatusInternalServerError:
		s.logError(logMsgRequestFailed, "status", status, "error", message)
		message = msgInternalError
	case http.StatusServiceUnavailable:
		s.logError(logMsgRequestFailed, "status", status, "error", message)
		message = msgUnavailable
	}

	s.writeJSON(w, status, errorBody(code, message))
}

func (s *Server) logInfo(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Server) logWarn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func (s *Server) logError(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Error(msg, args...)
	}
}
