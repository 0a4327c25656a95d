package librarystore

import (
	"errors"
)

// Error kinds. Every error returned by a store or the circulation handlers matches at most one of them.
var (
	// ErrConnection is the ConnectionError kind: the pool could not be built, reached or is closed.
	ErrConnection = errors.New("connection error")

	// ErrStorage is the StorageError kind: a statement failed, write paths have been rolled back.
	ErrStorage = errors.New("storage error")

	// ErrPolicyViolation is the PolicyViolation kind: a business rule rejected the operation.
	ErrPolicyViolation = errors.New("policy violation")

	// ErrConcurrencyConflict signals that a concurrent writer changed the data the operation was based on.
	ErrConcurrencyConflict = errors.New("concurrency error, no rows were affected")
)

var ErrNilDatabaseConnection = errors.New("database connection must not be nil")
var ErrUnsupportedDialect = errors.New("unsupported sql dialect")
var ErrEmptyDialect = errors.New("empty sql dialect supplied")
var ErrBuildingQueryFailed = errors.New("building query failed")
var ErrQueryingFailed = errors.New("querying failed")
var ErrExecutingStatementFailed = errors.New("executing statement failed")
var ErrScanningDBRowFailed = errors.New("scanning db row failed")
var ErrBeginTxFailed = errors.New("beginning transaction failed")
var ErrCommitTxFailed = errors.New("committing transaction failed")
var ErrGettingRowsAffectedFailed = errors.New("getting rows affected failed")
var ErrGettingInsertedIDFailed = errors.New("getting inserted id failed")
var ErrEntityHasNoID = errors.New("entity has no id")
