// foteam-sessctl inspects and maintains a foteam session directory
// offline.
//
// Usage:
//
//	foteam-sessctl --dir /var/lib/foteam/sessions list --stale
//	foteam-sessctl -c /etc/foteam/server.yaml -o json inspect SESSION_ID
//	foteam-sessctl gc --max-lifetime 24h --dry-run
//
// Note that validate behaves like a request would: it refreshes a live
// record and resets a stale one.
package main
