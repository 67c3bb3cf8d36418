// foteam-server serves the storefront session endpoints on top of the
// file-backed session store.
//
// Usage:
//
//	foteam-server -config /etc/foteam/server.yaml
//
// Every setting can also be supplied through FOTEAM_ environment
// variables, with "__" separating levels (FOTEAM_SESSION__TTL=45m).
// Edits to the config file are picked up at runtime for the log level,
// session TTL and GC retention; other changes need a restart.
package main
