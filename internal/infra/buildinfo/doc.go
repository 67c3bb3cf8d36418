// Package buildinfo exposes the version of the foteam binaries.
//
// Values are injected via ldflags:
//
//	go build -ldflags "-X github.com/foteam/sessionstore/internal/infra/buildinfo.Version=v1.0.0"
//
// Fields left at their defaults are filled from the module build info
// embedded by the Go toolchain (VCS revision, Go version).
package buildinfo
