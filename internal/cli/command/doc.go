// Package command provides the foteam-sessctl commands.
//
// The tool operates directly on a session directory, so it must run on
// the host (or volume) that foteam-server writes to. It shares the
// server's locking, so it is safe to run against a live directory.
//
//	foteam-sessctl --dir /var/lib/foteam/sessions list --stale
//	foteam-sessctl -c /etc/foteam/server.yaml gc --dry-run
package command
