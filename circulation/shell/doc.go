// Package shell contains the infrastructure shared by the circulation command handlers:
// retry with exponential backoff on concurrency conflicts, the handler result metadata
// and the helpers that report command handling to logs, metrics and traces.
//
// In Hexagonal Architecture terminology, this would be called the 'adapters' or 'infrastructure' layer.
package shell
