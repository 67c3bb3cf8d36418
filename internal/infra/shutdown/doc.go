// Package shutdown coordinates graceful shutdown of foteam-server.
//
// Components register hooks with OnShutdown as they start. Wait blocks
// until SIGINT/SIGTERM, an explicit Trigger (e.g. the HTTP listener
// failed) or context cancellation, then runs the hooks newest first under
// one shared timeout.
package shutdown
