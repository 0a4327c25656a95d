package issueloan_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/circulation/issueloan"
	"github.com/AntonStoeckl/library-circulation-go/circulation/shell"
	"github.com/AntonStoeckl/library-circulation-go/circulation/shell/observable"
	"github.com/AntonStoeckl/library-circulation-go/librarystore"
	"github.com/AntonStoeckl/library-circulation-go/librarystore/sqlengine"
)

func givenObservableHandler(
	t *testing.T,
	store sqlengine.Store,
	metrics shell.MetricsCollector,
) *observable.CommandWrapper[issueloan.Command, librarystore.Loan] {

	t.Helper()

	handler, err := observable.NewCommandWrapper[issueloan.Command, librarystore.Loan](
		issueloan.NewCommandHandler(store, issueloan.WithRetryOptions(shell.WithMetrics(metrics, "IssueLoan"))),
		observable.WithCommandMetrics[issueloan.Command, librarystore.Loan](metrics),
	)
	require.NoError(t, err)

	return handler
}
