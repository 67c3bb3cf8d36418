// Package domain defines the core session model for the foteam storefront.
//
// Domain code is pure: no file IO, no framework coupling. This package
// contains:
//
//   - Session identifiers: generation and syntactic validation
//   - Record attributes: the reserved keys every persisted record carries
//   - ExpirationPolicy: idle-time staleness and the in-place reset record
//   - Errors: domain error codes shared by the manager, config and CLI
//
// A session record is a plain map[string]any whose values are restricted to
// nil, bool, int64, float64, string, []any and map[string]any, recursively.
package domain
