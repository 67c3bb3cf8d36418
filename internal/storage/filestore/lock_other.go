//go:build !unix

package filestore

import "os"

// Without flock only the in-process striped locks apply.
func lockFile(*os.File, bool) error { return nil }

func unlockFile(*os.File) error { return nil }
