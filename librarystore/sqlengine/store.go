package sqlengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql"    // dialect import
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect import
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/library-circulation-go/librarystore"
	"github.com/AntonStoeckl/library-circulation-go/librarystore/sqlengine/internal/adapters"
)

const (
	// DialectPostgres builds statements for PostgreSQL (pgx, lib/pq).
	DialectPostgres = "postgres"

	// DialectMySQL builds statements for MySQL and MariaDB (go-sql-driver/mysql).
	DialectMySQL = "mysql"

	// DialectSQLite3 builds statements for SQLite (mattn/go-sqlite3).
	DialectSQLite3 = "sqlite3"
)

const (
	logMsgBuildQueryFailed    = "failed to build sql statement"
	logMsgDBQueryFailed       = "database query execution failed"
	logMsgDBExecFailed        = "database statement execution failed"
	logMsgCloseRowsFailed     = "failed to close database rows"
	logMsgScanRowFailed       = "failed to scan database row"
	logMsgBeginTxFailed       = "failed to begin transaction"
	logMsgCommitTxFailed      = "failed to commit transaction"
	logMsgRollbackFailed      = "failed to roll back transaction"
	logMsgRolledBack          = "transaction rolled back"
	logMsgRowsAffectedFailed  = "failed to get rows affected count"
	logMsgInsertedIDFailed    = "failed to get the generated id"
	logMsgConcurrencyConflict = "concurrency conflict detected"
	logMsgSQLExecuted         = "executed sql for: "
	logMsgOperation           = "librarystore operation: "
	logAttrError              = "error"
	logAttrQuery              = "query"
	logAttrParams             = "params"
	logAttrAction             = "action"
	logAttrRowCount           = "row_count"
	logAttrDurationMS         = "duration_ms"
	logAttrMemberID           = "member_id"
	logAttrLoanID             = "loan_id"
	logAttrExpectedActive     = "expected_active_loans"
	logAttrActualActive       = "actual_active_loans"
)

// Store is the relational implementation of the library entity repository.
// It works on top of a pgx pool, a sql.DB or a sqlx.DB and builds every statement with
// bound parameters for the configured dialect.
type Store struct {
	db               adapters.DBAdapter
	dialect          string
	logger           Logger
	contextualLogger ContextualLogger
	metricsCollector MetricsCollector
	tracingCollector TracingCollector
}

// statement is a built SQL statement with its bound parameters.
type statement struct {
	action string
	sql    string
	args   []any
}

// NewStoreFromPGXPool creates a new Store using a pgx Pool with optional configuration.
// The dialect is always DialectPostgres.
func NewStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, librarystore.ErrNilDatabaseConnection
	}

	s := Store{
		db:      adapters.NewPGXAdapter(db),
		dialect: DialectPostgres,
	}

	for _, option := range options {
		if err := option(&s); err != nil {
			return Store{}, err
		}
	}

	if s.dialect != DialectPostgres {
		return Store{}, librarystore.ErrUnsupportedDialect
	}

	return s, nil
}

// NewStoreFromSQLDB creates a new Store using a sql.DB with optional configuration.
// The dialect defaults to DialectPostgres, use WithDialect for other drivers.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, librarystore.ErrNilDatabaseConnection
	}

	s := Store{
		db:      adapters.NewSQLAdapter(db),
		dialect: DialectPostgres,
	}

	for _, option := range options {
		if err := option(&s); err != nil {
			return Store{}, err
		}
	}

	return s, nil
}

// NewStoreFromSQLX creates a new Store using a sqlx.DB with optional configuration.
// The dialect is derived from the sqlx driver name and can be overridden with WithDialect.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, librarystore.ErrNilDatabaseConnection
	}

	s := Store{
		db:      adapters.NewSQLXAdapter(db),
		dialect: dialectForDriver(db.DriverName()),
	}

	for _, option := range options {
		if err := option(&s); err != nil {
			return Store{}, err
		}
	}

	return s, nil
}

// Dialect returns the SQL dialect the Store builds statements for.
func (s Store) Dialect() string {
	return s.dialect
}

func dialectForDriver(driverName string) string {
	switch driverName {
	case "mysql":
		return DialectMySQL
	case "sqlite3", DriverSQLite3Unicode:
		return DialectSQLite3
	default:
		return DialectPostgres
	}
}

func (s Store) builder() goqu.DialectWrapper {
	return goqu.Dialect(s.dialect)
}

// supportsReturning reports whether inserts can hand back the generated id with RETURNING.
func (s Store) supportsReturning() bool {
	return s.dialect == DialectPostgres
}

// supportsRowLocks reports whether SELECT ... FOR UPDATE is available.
// SQLite serializes writers with an immediate transaction lock instead.
func (s Store) supportsRowLocks() bool {
	return s.dialect != DialectSQLite3
}

// toStatement converts a goqu dataset into a statement, logging build failures.
func (s Store) toStatement(ctx context.Context, action string, sqlQuery string, args []any, buildErr error) (statement, error) {
	if buildErr != nil {
		s.logError(ctx, logMsgBuildQueryFailed, buildErr, logAttrAction, action)
		return statement{}, errors.Join(librarystore.ErrStorage, librarystore.ErrBuildingQueryFailed, buildErr)
	}

	return statement{action: action, sql: sqlQuery, args: args}, nil
}

// queryIn executes the statement as a query and returns the rows with timing information.
// The returned error is the unclassified driver error.
func (s Store) queryIn(ctx context.Context, q adapters.DBQuerier, stmt statement) (adapters.DBRows, error) {
	start := time.Now()
	rows, queryErr := q.Query(ctx, stmt.sql, stmt.args...)
	s.logQueryWithDuration(ctx, stmt, time.Since(start))

	if queryErr != nil {
		s.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, stmt.sql, logAttrParams, stmt.args)
		return nil, queryErr
	}

	return rows, nil
}

// execIn executes the statement and returns the result with timing information.
// The returned error is the unclassified driver error.
func (s Store) execIn(ctx context.Context, q adapters.DBQuerier, stmt statement) (adapters.DBResult, error) {
	start := time.Now()
	result, execErr := q.Exec(ctx, stmt.sql, stmt.args...)
	s.logQueryWithDuration(ctx, stmt, time.Since(start))

	if execErr != nil {
		s.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, stmt.sql, logAttrParams, stmt.args)
		return nil, execErr
	}

	return result, nil
}

// rowsAffected reads the affected row count of a statement result.
func (s Store) rowsAffected(ctx context.Context, result adapters.DBResult) (int64, error) {
	affected, err := result.RowsAffected()
	if err != nil {
		s.logError(ctx, logMsgRowsAffectedFailed, err)
		return 0, errors.Join(librarystore.ErrStorage, librarystore.ErrGettingRowsAffectedFailed, err)
	}

	return affected, nil
}

// closeRows safely closes database rows and logs any errors.
func (s Store) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		s.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

// insertIn inserts one row and returns the generated id.
// Dialects with RETURNING read the id from the statement, the others ask the driver for it.
func (s Store) insertIn(ctx context.Context, q adapters.DBQuerier, table string, record goqu.Record) (int64, error) {
	action := actionInsert + table
	ds := s.builder().Insert(table).Rows(record).Prepared(true)

	if s.supportsReturning() {
		sqlQuery, args, buildErr := ds.Returning(colID).ToSQL()
		stmt, err := s.toStatement(ctx, action, sqlQuery, args, buildErr)
		if err != nil {
			return 0, err
		}

		rows, queryErr := s.queryIn(ctx, q, stmt)
		if queryErr != nil {
			return 0, classify(librarystore.ErrExecutingStatementFailed, queryErr)
		}
		defer s.closeRows(ctx, rows)

		var id int64
		if !rows.Next() {
			rowsErr := rows.Err()
			if rowsErr == nil {
				rowsErr = sql.ErrNoRows
			}
			s.logError(ctx, logMsgInsertedIDFailed, rowsErr, logAttrQuery, stmt.sql, logAttrParams, stmt.args)
			return 0, classify(librarystore.ErrGettingInsertedIDFailed, rowsErr)
		}

		if scanErr := rows.Scan(&id); scanErr != nil {
			s.logError(ctx, logMsgScanRowFailed, scanErr, logAttrQuery, stmt.sql)
			return 0, errors.Join(librarystore.ErrStorage, librarystore.ErrScanningDBRowFailed, scanErr)
		}

		return id, nil
	}

	sqlQuery, args, buildErr := ds.ToSQL()
	stmt, err := s.toStatement(ctx, action, sqlQuery, args, buildErr)
	if err != nil {
		return 0, err
	}

	result, execErr := s.execIn(ctx, q, stmt)
	if execErr != nil {
		return 0, classify(librarystore.ErrExecutingStatementFailed, execErr)
	}

	id, idErr := result.LastInsertId()
	if idErr != nil {
		s.logError(ctx, logMsgInsertedIDFailed, idErr, logAttrQuery, stmt.sql)
		return 0, errors.Join(librarystore.ErrStorage, librarystore.ErrGettingInsertedIDFailed, idErr)
	}

	return id, nil
}

// updateIn updates the row with the given id and reports how many rows were affected.
func (s Store) updateIn(ctx context.Context, q adapters.DBQuerier, table string, id int64, record goqu.Record) (int64, error) {
	sqlQuery, args, buildErr := s.builder().
		Update(table).
		Set(record).
		Where(goqu.C(colID).Eq(id)).
		Prepared(true).
		ToSQL()

	stmt, err := s.toStatement(ctx, actionUpdate+table, sqlQuery, args, buildErr)
	if err != nil {
		return 0, err
	}

	result, execErr := s.execIn(ctx, q, stmt)
	if execErr != nil {
		return 0, classify(librarystore.ErrExecutingStatementFailed, execErr)
	}

	return s.rowsAffected(ctx, result)
}

// runInTx runs fn inside a transaction. It commits if fn returns nil and rolls back otherwise.
func (s Store) runInTx(ctx context.Context, action string, fn func(ctx context.Context, tx adapters.DBTx) error) error {
	tx, beginErr := s.db.BeginTx(ctx)
	if beginErr != nil {
		s.logError(ctx, logMsgBeginTxFailed, beginErr, logAttrAction, action)
		return classify(librarystore.ErrBeginTxFailed, beginErr)
	}

	if err := fn(ctx, tx); err != nil {
		s.rollback(ctx, tx, action)
		return err
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		s.logError(ctx, logMsgCommitTxFailed, commitErr, logAttrAction, action)
		s.rollback(ctx, tx, action)
		return classify(librarystore.ErrCommitTxFailed, commitErr)
	}

	return nil
}

// rollback aborts the transaction even if ctx is already canceled.
func (s Store) rollback(ctx context.Context, tx adapters.DBTx, action string) {
	if rollbackErr := tx.Rollback(context.WithoutCancel(ctx)); rollbackErr != nil {
		if errors.Is(rollbackErr, sql.ErrTxDone) {
			return
		}

		s.logWarn(ctx, logMsgRollbackFailed, logAttrError, rollbackErr.Error(), logAttrAction, action)
		return
	}

	s.logWarn(ctx, logMsgRolledBack, logAttrAction, action)
}

// queryList runs a select statement and decodes every row with decode.
func queryList[T any](
	ctx context.Context,
	s Store,
	q adapters.DBQuerier,
	stmt statement,
	decode func(adapters.DBRows) (T, error),
) ([]T, error) {

	rows, queryErr := s.queryIn(ctx, q, stmt)
	if queryErr != nil {
		return nil, classify(librarystore.ErrQueryingFailed, queryErr)
	}
	defer s.closeRows(ctx, rows)

	result := make([]T, 0)

	for rows.Next() {
		item, decodeErr := decode(rows)
		if decodeErr != nil {
			s.logError(ctx, logMsgScanRowFailed, decodeErr, logAttrQuery, stmt.sql)
			return nil, errors.Join(librarystore.ErrStorage, librarystore.ErrScanningDBRowFailed, decodeErr)
		}

		result = append(result, item)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		s.logError(ctx, logMsgDBQueryFailed, rowsErr, logAttrQuery, stmt.sql, logAttrParams, stmt.args)
		return nil, classify(librarystore.ErrQueryingFailed, rowsErr)
	}

	return result, nil
}

// queryOne runs a select statement and decodes the first row, found is false if there was none.
func queryOne[T any](
	ctx context.Context,
	s Store,
	q adapters.DBQuerier,
	stmt statement,
	decode func(adapters.DBRows) (T, error),
) (T, bool, error) {

	var empty T

	list, err := queryList(ctx, s, q, stmt, decode)
	if err != nil {
		return empty, false, err
	}

	if len(list) == 0 {
		return empty, false, nil
	}

	return list[0], true, nil
}

// queryCount runs a COUNT statement.
func (s Store) queryCount(ctx context.Context, q adapters.DBQuerier, stmt statement) (int, error) {
	counts, err := queryList(ctx, s, q, stmt, decodeCount)
	if err != nil {
		return 0, err
	}

	if len(counts) == 0 {
		return 0, nil
	}

	return counts[0], nil
}
