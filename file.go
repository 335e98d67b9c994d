package traildb

import (
	"io"

	"github.com/kezhuw/traildb/internal/file"
)

// File defines methods on one file.
type File interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer
	io.ReaderAt
	Sync() error
}

// FileSystem defines the file operations used to open and construct
// databases.
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

type internalFileSystem struct {
	file.FileSystem
}

func (fs internalFileSystem) Open(name string, flag int) (File, error) {
	return fs.FileSystem.Open(name, flag)
}

type wrappedFileSystem struct {
	FileSystem
}

func (fs wrappedFileSystem) Open(name string, flag int) (file.File, error) {
	return fs.FileSystem.Open(name, flag)
}

// DefaultFileSystem is the file system provided by os package.
var DefaultFileSystem FileSystem = internalFileSystem{file.DefaultFileSystem}

var _ FileSystem = internalFileSystem{}
var _ file.FileSystem = wrappedFileSystem{}
