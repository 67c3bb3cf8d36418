// Package tlscert serves the HTTP listener's certificate and reloads it
// when the PEM files are rewritten, so renewed certificates take effect
// without a restart.
package tlscert
