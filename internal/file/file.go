package file

import (
	"io"
	"os"
)

type ReadCloser interface {
	io.Reader
	io.ReaderAt
	io.Closer
}

type File interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer
	io.ReaderAt
	Sync() error
}

// FileSystem defines the file operations a trail database needs.
type FileSystem interface {
	// Open opens a file using specified flag.
	Open(name string, flag int) (File, error)

	// Size returns the size in bytes of named file.
	Size(name string) (int64, error)

	// Exists returns true if the named file exists.
	Exists(name string) bool

	// Remove removes named file.
	Remove(name string) error

	// Rename renames(moves) oldpath to newpath. If newpath already exists,
	// Rename replaces it.
	Rename(oldpath, newpath string) error
}

type osFileSystem struct{}

func (osFileSystem) Open(name string, flag int) (File, error) {
	return os.OpenFile(name, flag, 0644)
}

func (osFileSystem) Size(name string) (int64, error) {
	fi, err := os.Stat(name)
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

func (osFileSystem) Exists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

func (osFileSystem) Remove(name string) error {
	return os.Remove(name)
}

func (osFileSystem) Rename(oldpath, newpath string) error {
	return os.Rename(oldpath, newpath)
}

var DefaultFileSystem FileSystem = osFileSystem{}
