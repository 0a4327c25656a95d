// Package core contains the circulation rules of the library:
// loan periods, overdue fines and the active loan limit per member.
//
// Everything in this package is pure. Functions take the current state and a point in time
// and return a value or a Decision, they never touch the database.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'domain' layer.
package core
