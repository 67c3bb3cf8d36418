// Package filestore persists session records as one file per identifier.
//
// Records live at <dir>/sess_<id> with mode 0600 inside a 0700 directory.
// Each file holds one record in the codec wire format.
//
// Read enforces the idle TTL: a stale record is reset in place (same id,
// attributes dropped, renewed set) and the read reports StateExpired. The
// caller threads that state into Write for the rest of the request, which
// suppresses any attempt to persist data derived from the stale record.
//
// Concurrency is handled at two levels. Goroutines in one process are
// serialized per identifier by striped locks; processes sharing the
// directory coordinate through flock on the record file (shared for reads,
// exclusive for writes). Files are truncated only after the exclusive lock
// is held.
package filestore
