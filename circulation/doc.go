// Package circulation is the entry point the presentation layers use for lending and returning books.
//
// Desk wires the issueloan and returnloan command handlers with retry and observability and translates
// their results into the shapes the CLI and the HTTP API render: core.Outcome for issuance and
// core.ReturnOutcome for returns. The rules themselves live in circulation/core and in the Decide
// functions of the use case packages.
package circulation
