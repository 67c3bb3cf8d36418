// Package service provides the request-scoped session facade.
//
// Manager starts one Session per request on top of a Store. The Session
// holds the decoded attributes and the state reported by the store's Read,
// and threads that state back into the final Write so an expired request
// can never resurrect stale data.
//
// This package contains:
//
//   - Manager: session start, id allocation and the opportunistic GC hook
//   - Session: attribute access, Regenerate, Destroy and Save
//   - GCScheduler: probabilistic and periodic retention sweeps
//
// A Session belongs to one request. Its methods are safe for concurrent use
// by the goroutines serving that request, and are no-ops on a nil *Session.
package service
