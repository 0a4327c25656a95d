// Package helper provides test doubles and fixture helpers shared by the package tests.
//
// It contains spies for the logging, metrics and tracing interfaces of librarystore,
// fixture builders for books, members and loans, and the storewrapper subpackage
// which opens a fresh, schema-initialized store for each test.
package helper
