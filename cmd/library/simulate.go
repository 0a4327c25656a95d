package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/AntonStoeckl/library-circulation-go/librarystore"
)

const (
	defaultSimulationRate     = 30
	defaultSimulationDuration = 30 * time.Second
	defaultSimulationMembers  = 50
	defaultSimulationBooks    = 20
	defaultReturnShare        = 40
	simulationOpTimeout       = 5 * time.Second
	simulationStatsInterval   = 10 * time.Second
)

// simulationConfig controls the load a simulation puts on the desk.
type simulationConfig struct {
	rate        float64
	duration    time.Duration
	members     int
	books       int
	returnShare int
}

// simulation issues and returns loans for random members at a fixed rate,
// so that concurrent issuances for the same member meet in the store.
type simulation struct {
	app     *app
	cfg     simulationConfig
	limiter *rate.Limiter

	memberIDs []int64
	bookIDs   []int64

	mu          sync.Mutex
	activeLoans map[int64]int64 // loan ID by member ID

	issued    atomic.Int64
	rejected  atomic.Int64
	returned  atomic.Int64
	failed    atomic.Int64
	startTime time.Time
	wg        sync.WaitGroup
}

func newSimulateCommand(withApp func(runFunc) func(*cobra.Command, []string) error) *cobra.Command {
	cfg := simulationConfig{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Generate concurrent loan traffic against the configured database",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, c *console, _ []string) error {
			if cfg.rate <= 0 || cfg.members < 1 || cfg.books < 1 || cfg.returnShare < 0 || cfg.returnShare > 100 {
				err := errors.New("rate, members and books must be positive and return-share within [0, 100]")
				c.failure("%v", err)
				return reportedError{err: err}
			}

			sim := newSimulation(a, cfg)
			if err := sim.seed(ctx); err != nil {
				c.failure("Seeding failed: %v", err)
				return a.fail("seeding simulation failed", err)
			}

			c.println(fmt.Sprintf("Simulating %.0f operations/s for %s with %d members and %d books...",
				cfg.rate, cfg.duration, cfg.members, cfg.books))

			sim.run(ctx)
			c.table([]string{"Result", "Count"}, sim.resultRows())

			return nil
		}),
	}
	cmd.Flags().Float64Var(&cfg.rate, "rate", defaultSimulationRate, "operations per second")
	cmd.Flags().DurationVar(&cfg.duration, "duration", defaultSimulationDuration, "how long to run")
	cmd.Flags().IntVar(&cfg.members, "members", defaultSimulationMembers, "members to register first")
	cmd.Flags().IntVar(&cfg.books, "books", defaultSimulationBooks, "books to add first")
	cmd.Flags().IntVar(&cfg.returnShare, "return-share", defaultReturnShare, "percentage of operations that return a loan")

	return cmd
}

func newSimulation(a *app, cfg simulationConfig) *simulation {
	return &simulation{
		app:         a,
		cfg:         cfg,
		limiter:     rate.NewLimiter(rate.Limit(cfg.rate), 1),
		activeLoans: make(map[int64]int64),
	}
}

func (s *simulation) seed(ctx context.Context) error {
	runID := time.Now().Format("20060102-150405")

	for i := 0; i < s.cfg.members; i++ {
		member := librarystore.Member{
			Name:       fmt.Sprintf("Simulated Member %d (%s)", i+1, runID),
			NationalID: fmt.Sprintf("SIM-%s-%d", runID, i+1),
		}
		if err := s.app.store.SaveMember(ctx, &member); err != nil {
			return err
		}
		s.memberIDs = append(s.memberIDs, member.ID)
	}

	for i := 0; i < s.cfg.books; i++ {
		book := librarystore.Book{
			Title:    fmt.Sprintf("Simulated Book %d (%s)", i+1, runID),
			ISBN:     fmt.Sprintf("SIM-%s-%d", runID, i+1),
			Quantity: 1 + rand.Intn(5), //nolint:gosec
		}
		if err := s.app.store.SaveBook(ctx, &book); err != nil {
			return err
		}
		s.bookIDs = append(s.bookIDs, book.ID)
	}

	return nil
}

// run blocks until the configured duration has passed or ctx is canceled, then waits for
// the operations in flight.
func (s *simulation) run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.duration)
	defer cancel()

	s.startTime = time.Now()

	s.wg.Add(1)
	go s.statsReporter(ctx)

	for s.limiter.Wait(ctx) == nil {
		s.wg.Add(1)
		go s.executeScenario(context.WithoutCancel(ctx))
	}

	s.wg.Wait()
	s.logStats("simulation finished")
}

func (s *simulation) executeScenario(ctx context.Context) {
	defer s.wg.Done()

	opCtx, cancel := context.WithTimeout(ctx, simulationOpTimeout)
	defer cancel()

	memberID := s.memberIDs[rand.Intn(len(s.memberIDs))] //nolint:gosec

	if rand.Intn(100) < s.cfg.returnShare { //nolint:gosec
		if loanID, ok := s.takeActiveLoan(memberID); ok {
			s.returnLoan(opCtx, loanID)
			return
		}
	}

	bookID := s.bookIDs[rand.Intn(len(s.bookIDs))] //nolint:gosec
	loan, err := s.app.desk.Issue(opCtx, memberID, bookID)

	switch {
	case errors.Is(err, librarystore.ErrPolicyViolation):
		s.rejected.Add(1)
	case err != nil:
		s.failed.Add(1)
		s.app.logger.Warn("simulated issuance failed", "member_id", memberID, "book_id", bookID, "error", err.Error())
	default:
		s.issued.Add(1)
		s.mu.Lock()
		s.activeLoans[memberID] = loan.ID
		s.mu.Unlock()
	}
}

func (s *simulation) returnLoan(ctx context.Context, loanID int64) {
	if _, err := s.app.desk.ReturnLoan(ctx, loanID); err != nil {
		s.failed.Add(1)
		s.app.logger.Warn("simulated return failed", "loan_id", loanID, "error", err.Error())
		return
	}

	s.returned.Add(1)
}

func (s *simulation) takeActiveLoan(memberID int64) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loanID, ok := s.activeLoans[memberID]
	delete(s.activeLoans, memberID)

	return loanID, ok
}

func (s *simulation) statsReporter(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(simulationStatsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.logStats("simulation progress")
		}
	}
}

func (s *simulation) total() int64 {
	return s.issued.Load() + s.rejected.Load() + s.returned.Load() + s.failed.Load()
}

func (s *simulation) logStats(msg string) {
	elapsed := time.Since(s.startTime)

	s.app.logger.Info(msg,
		"operations", s.total(),
		"issued", s.issued.Load(),
		"rejected", s.rejected.Load(),
		"returned", s.returned.Load(),
		"failed", s.failed.Load(),
		"ops_per_second", float64(s.total())/max(elapsed.Seconds(), 1e-9),
	)
}

func (s *simulation) resultRows() [][]string {
	return [][]string{
		{"Issued", fmt.Sprint(s.issued.Load())},
		{"Rejected", fmt.Sprint(s.rejected.Load())},
		{"Returned", fmt.Sprint(s.returned.Load())},
		{"Failed", fmt.Sprint(s.failed.Load())},
	}
}
