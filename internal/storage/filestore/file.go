package filestore

import (
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/foteam/sessionstore/internal/core/domain"
	"github.com/foteam/sessionstore/internal/storage/codec"
)

const (
	filePrefix = "sess_"
	fileMode   = 0o600
	dirMode    = 0o700
)

// readRecord loads and decodes a record under a shared lock. found is false
// when the file does not exist.
func readRecord(path string) (attrs domain.Attributes, found bool, err error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	if err := lockFile(f, false); err != nil {
		return nil, false, err
	}
	defer unlockFile(f)

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, false, err
	}
	return codec.Decode(data), true, nil
}

// writeRecord replaces the content of path under an exclusive lock. With
// create false a missing file is reported as fs.ErrNotExist.
func writeRecord(path string, data []byte, create bool) error {
	flags := os.O_WRONLY
	if create {
		flags |= os.O_CREATE
	}
	f, err := os.OpenFile(path, flags, fileMode)
	if err != nil {
		return err
	}
	return finishWrite(f, data)
}

// createRecord writes data only if path does not exist yet.
func createRecord(path string, data []byte) (created bool, err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, fileMode)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, finishWrite(f, data)
}

func finishWrite(f *os.File, data []byte) error {
	if err := lockFile(f, true); err != nil {
		f.Close()
		return err
	}

	err := func() error {
		if err := f.Truncate(0); err != nil {
			return err
		}
		if _, err := f.WriteAt(data, 0); err != nil {
			return err
		}
		if err := f.Chmod(fileMode); err != nil {
			return err
		}
		return f.Sync()
	}()

	unlockFile(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
