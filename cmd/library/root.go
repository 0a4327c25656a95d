package main

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-circulation-go/httpapi"
	"github.com/AntonStoeckl/library-circulation-go/librarystore"
	"github.com/AntonStoeckl/library-circulation-go/reports"
)

type runFunc func(ctx context.Context, a *app, c *console, args []string) error

func newRootCommand(in io.Reader, out io.Writer) *cobra.Command {
	var s settings

	c := newConsole(in, out)

	withApp := func(fn runFunc) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), s)
			if err != nil {
				return err
			}
			defer a.close()

			return fn(cmd.Context(), a, c, args)
		}
	}

	root := &cobra.Command{
		Use:           "library",
		Short:         "Library circulation: books, members, loans and reports",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(in)
	root.SetOut(out)

	root.PersistentFlags().StringVar(&s.configFile, "config", "", "YAML configuration file")
	root.PersistentFlags().StringSliceVar(&s.envFiles, "env-file", nil, "dotenv files to load (default .env)")
	root.PersistentFlags().StringVar(&s.dbPath, "db", "", "SQLite database file, overrides the configured database")
	root.PersistentFlags().StringVar(&s.reportDir, "report-dir", "", "directory reports are written to (default working directory)")

	root.AddCommand(
		newBookCommand(withApp),
		newMemberCommand(withApp),
		newLoanCommand(withApp),
		newReportCommand(withApp),
		&cobra.Command{
			Use:   "stats",
			Short: "Show the dashboard counters",
			Args:  cobra.NoArgs,
			RunE: withApp(func(ctx context.Context, a *app, c *console, _ []string) error {
				stats, err := a.reports.Stats(ctx)
				if err != nil {
					return err
				}

				c.table([]string{"Statistic", "Value"}, statsRows(stats))

				return nil
			}),
		},
		newServeCommand(withApp),
		newSimulateCommand(withApp),
		&cobra.Command{
			Use:   "menu",
			Short: "Start the interactive text menu",
			Args:  cobra.NoArgs,
			RunE: withApp(func(ctx context.Context, a *app, c *console, _ []string) error {
				return newMenu(a, c).run(ctx)
			}),
		},
	)

	return root
}

func newBookCommand(withApp func(runFunc) func(*cobra.Command, []string) error) *cobra.Command {
	cmd := &cobra.Command{Use: "book", Short: "Manage the book catalog"}

	var book librarystore.Book
	var year int
	var authors []string

	add := &cobra.Command{
		Use:   "add",
		Short: "Add a new book",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, c *console, _ []string) error {
			if year != 0 {
				book.PublishYear = &year
			}

			if err := a.addBook(ctx, &book, authors); err != nil {
				c.failure("Failed to add book: %v", err)
				return a.fail("adding book failed", err)
			}

			c.success("Book '%s' added successfully! ID: %d", book.Title, book.ID)

			return nil
		}),
	}
	add.Flags().StringVar(&book.Title, "title", "", "title")
	add.Flags().StringVar(&book.ISBN, "isbn", "", "ISBN")
	add.Flags().StringVar(&book.Category, "category", "", "category")
	add.Flags().StringVar(&book.Publisher, "publisher", "", "publisher")
	add.Flags().IntVar(&year, "year", 0, "publish year")
	add.Flags().StringVar(&book.ShelfLocation, "shelf", "", "shelf location")
	add.Flags().IntVar(&book.Quantity, "quantity", 1, "number of copies")
	add.Flags().StringSliceVar(&authors, "authors", nil, "comma separated author names")
	_ = add.MarkFlagRequired("title")

	search := &cobra.Command{
		Use:   "search <title keywords>",
		Short: "Search books by title",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, c *console, args []string) error {
			books, err := a.store.SearchBooksByTitle(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}

			if len(books) == 0 {
				c.warning("No books found.")
				return nil
			}

			c.table(bookColumns, bookRows(books))

			return nil
		}),
	}

	isbn := &cobra.Command{
		Use:   "isbn <isbn>",
		Short: "Look up a book by ISBN",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, c *console, args []string) error {
			found, ok, err := a.store.BookByISBN(ctx, args[0])
			if err != nil {
				return err
			}

			if !ok {
				c.warning("Book not found.")
				return nil
			}

			c.table(bookColumns, bookRows(librarystore.Books{found}))

			return nil
		}),
	}

	cmd.AddCommand(add, search, isbn, newBookImportCommand(withApp))

	return cmd
}

func newMemberCommand(withApp func(runFunc) func(*cobra.Command, []string) error) *cobra.Command {
	cmd := &cobra.Command{Use: "member", Short: "Manage library members"}

	var member librarystore.Member
	var phone string

	register := &cobra.Command{
		Use:   "register",
		Short: "Register a new member",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, c *console, _ []string) error {
			if phone != "" {
				member.Phone = &phone
			}

			if err := a.store.SaveMember(ctx, &member); err != nil {
				c.failure("Failed to register member: %v", err)
				return a.fail("registering member failed", err)
			}

			c.success("Member '%s' registered successfully! ID: %d", member.Name, member.ID)

			return nil
		}),
	}
	register.Flags().StringVar(&member.Name, "name", "", "full name")
	register.Flags().StringVar(&member.NationalID, "national-id", "", "national ID")
	register.Flags().StringVar(&phone, "phone", "", "phone number")
	_ = register.MarkFlagRequired("name")

	search := &cobra.Command{
		Use:   "search <name>",
		Short: "Search members by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, c *console, args []string) error {
			members, err := a.store.SearchMembersByName(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}

			if len(members) == 0 {
				c.warning("No members found.")
				return nil
			}

			c.table(memberColumns, memberRows(members))

			return nil
		}),
	}

	cmd.AddCommand(register, search)

	return cmd
}

func newLoanCommand(withApp func(runFunc) func(*cobra.Command, []string) error) *cobra.Command {
	cmd := &cobra.Command{Use: "loan", Short: "Issue and return loans"}

	var memberID int64
	var bookInput string

	issue := &cobra.Command{
		Use:   "issue",
		Short: "Lend a book to a member, due in 7 days",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, c *console, _ []string) error {
			bookID, candidates, err := a.findBook(ctx, bookInput)
			if errors.Is(err, errAmbiguousTitle) {
				c.warning("Multiple books found:")
				c.table(bookColumns[:3], candidateRows(candidates))
				c.failure("Pass the book ID instead of the title.")
				return reportedError{err: err}
			}

			if err != nil {
				c.failure("%v", err)
				return reportedError{err: err}
			}

			if len(candidates) == 1 {
				c.println("Selected: " + candidates[0].Title)
			}

			return a.issueLoan(ctx, c, memberID, bookID)
		}),
	}
	issue.Flags().Int64Var(&memberID, "member", 0, "member ID")
	issue.Flags().StringVar(&bookInput, "book", "", "book ID or title")
	_ = issue.MarkFlagRequired("member")
	_ = issue.MarkFlagRequired("book")

	var assumeYes bool

	returnCmd := &cobra.Command{
		Use:   "return <loan id>",
		Short: "Return a loan and charge the fine, if any",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, c *console, args []string) error {
			loanID, err := parseID(args[0])
			if err != nil {
				c.failure("Invalid ID format.")
				return reportedError{err: err}
			}

			return a.returnLoan(ctx, c, loanID, assumeYes)
		}),
	}
	returnCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "charge the fine without asking")

	active := &cobra.Command{
		Use:   "active",
		Short: "List all active loans",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, c *console, _ []string) error {
			loans, err := a.store.ActiveLoans(ctx)
			if err != nil {
				return err
			}

			c.table(loanColumns, loanRows(loans, a.desk.Today()))

			return nil
		}),
	}

	overdue := &cobra.Command{
		Use:   "overdue",
		Short: "List active loans past their due date",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, c *console, _ []string) error {
			loans, err := a.store.OverdueLoans(ctx, a.desk.Today())
			if err != nil {
				return err
			}

			if len(loans) == 0 {
				c.warning("No overdue loans.")
				return nil
			}

			c.table(loanColumns, loanRows(loans, a.desk.Today()))

			return nil
		}),
	}

	cmd.AddCommand(issue, returnCmd, active, overdue)

	return cmd
}

func newReportCommand(withApp func(runFunc) func(*cobra.Command, []string) error) *cobra.Command {
	var output string

	kinds := make([]string, 0, len(reports.Kinds()))
	for _, kind := range reports.Kinds() {
		kinds = append(kinds, string(kind))
	}

	cmd := &cobra.Command{
		Use:       "report <" + strings.Join(kinds, "|") + ">",
		Short:     "Generate a PDF (or JSON with a .json output file) report",
		Args:      cobra.ExactArgs(1),
		ValidArgs: kinds,
		RunE: withApp(func(ctx context.Context, a *app, c *console, args []string) error {
			kind, err := reports.ParseKind(args[0])
			if err != nil {
				c.failure("%v", err)
				return reportedError{err: err}
			}

			return a.generateReport(ctx, c, kind, output)
		}),
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, the extension selects the format")

	return cmd
}

func newServeCommand(withApp func(runFunc) func(*cobra.Command, []string) error) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, c *console, _ []string) error {
			if addr == "" {
				addr = a.cfg.HTTP.Addr
			}

			server := httpapi.NewServer(
				a.store,
				a.desk,
				a.reports,
				httpapi.WithRateLimit(a.cfg.HTTP.RateLimit, a.cfg.HTTP.RateBurst),
				httpapi.WithLogger(a.logger),
			)

			c.println("Serving the library API on http://" + addr)

			return server.ListenAndServe(ctx, addr)
		}),
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from configuration)")

	return cmd
}
