// Package fileutil reads and writes small private files such as the
// session token.
package fileutil

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	apperrors "github.com/applytrack/applytrack/internal/errors"
)

// ErrTooLarge is returned when a file is bigger than the caller allows.
var ErrTooLarge = errors.New("file exceeds size limit")

type tempFile interface {
	Name() string
	Chmod(os.FileMode) error
	Write([]byte) (int, error)
	Sync() error
	Close() error
}

type fsOps struct {
	createTemp func(dir, pattern string) (tempFile, error)
	rename     func(oldpath, newpath string) error
	remove     func(path string) error
}

func defaultFSOps() fsOps {
	return fsOps{
		createTemp: func(dir, pattern string) (tempFile, error) {
			return os.CreateTemp(dir, pattern)
		},
		rename: os.Rename,
		remove: os.Remove,
	}
}

// ReadLimited reads path, refusing files larger than maxSize.
// A missing file returns an error matching fs.ErrNotExist.
func ReadLimited(path string, maxSize int64) ([]byte, error) {
	const op = "fileutil.ReadLimited"

	f, err := os.Open(path) // #nosec G304 -- path comes from configuration
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, apperrors.IOWrap(err, op, "failed to open file")
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, apperrors.IOWrap(err, op, "failed to stat file")
	}
	if info.IsDir() {
		return nil, apperrors.IO(op, path+" is a directory")
	}
	if info.Size() > maxSize {
		return nil, apperrors.IOWrap(ErrTooLarge, op, "refusing to read oversized file")
	}

	// The file may grow between Stat and ReadAll.
	data, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		return nil, apperrors.IOWrap(err, op, "failed to read file")
	}
	if int64(len(data)) > maxSize {
		return nil, apperrors.IOWrap(ErrTooLarge, op, "refusing to read oversized file")
	}
	return data, nil
}

// WriteAtomic replaces path with data so readers see either the old or the
// new content, never a partial write.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	return writeAtomic(path, data, perm, defaultFSOps())
}

func writeAtomic(path string, data []byte, perm os.FileMode, ops fsOps) error {
	const op = "fileutil.WriteAtomic"

	// The temp file must share a filesystem with path for rename to be atomic.
	tmp, err := ops.createTemp(filepath.Dir(path), filepath.Base(path)+".tmp")
	if err != nil {
		return apperrors.IOWrap(err, op, "failed to create temp file")
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = ops.remove(tmpPath)
		}
	}()

	if err := tmp.Chmod(perm); err != nil {
		return apperrors.IOWrap(err, op, "failed to set permissions")
	}
	if _, err := tmp.Write(data); err != nil {
		return apperrors.IOWrap(err, op, "failed to write temp file")
	}
	if err := tmp.Sync(); err != nil {
		return apperrors.IOWrap(err, op, "failed to sync temp file")
	}
	if err := tmp.Close(); err != nil {
		return apperrors.IOWrap(err, op, "failed to close temp file")
	}
	if err := ops.rename(tmpPath, path); err != nil {
		_ = ops.remove(tmpPath)
		committed = true
		return apperrors.IOWrap(err, op, "failed to replace file")
	}
	committed = true
	return nil
}
