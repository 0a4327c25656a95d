// Package librarystore provides the core abstractions and types for storing
// the entities of a public library: books, authors, members and loans.
//
// This package defines the entity types shared by all store implementations,
// the error kinds callers branch on, and the dependency-free observability
// interfaces (logging, metrics, tracing) that store implementations accept.
//
// Error kinds:
//   - ErrConnection: the connection pool could not be established or is closed
//   - ErrStorage: a statement failed; write paths have been rolled back
//   - ErrPolicyViolation: a business rule rejected the operation
//   - ErrConcurrencyConflict: a concurrent writer changed the data, the operation can be retried
//
// Common usage pattern:
//
//	book := librarystore.Book{Title: "Learning Domain-Driven Design", ISBN: "978-1-098-10013-1"}
//	if err := store.SaveBook(ctx, &book); err != nil {
//		if errors.Is(err, librarystore.ErrStorage) {
//			// handle storage failure
//		}
//	}
//
//	found, ok, err := store.BookByID(ctx, book.ID)
package librarystore
