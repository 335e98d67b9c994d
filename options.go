package traildb

import (
	"fmt"

	"github.com/kezhuw/traildb/internal/compress"
	"github.com/kezhuw/traildb/internal/file"
	"github.com/kezhuw/traildb/internal/logger"
	"github.com/kezhuw/traildb/internal/options"
)

// CompressionType defines compression methods to compress a block.
type CompressionType int

const (
	DefaultCompression CompressionType = iota // Points to SnappyCompression
	NoCompression
	SnappyCompression
)

// ParseCompression parses compression names "none" and "snappy". The empty
// name and "default" yield DefaultCompression.
func ParseCompression(name string) (CompressionType, error) {
	if name == "" || name == "default" {
		return DefaultCompression, nil
	}
	t, err := compress.ParseType(name)
	if err != nil {
		return DefaultCompression, fmt.Errorf("%w: %q", err, name)
	}
	if t == compress.NoCompression {
		return NoCompression, nil
	}
	return SnappyCompression, nil
}

// Options contains options controlling how databases are opened and
// constructed.
type Options struct {
	// Compression type used to compress blocks written by a Constructor.
	//
	// The default value points to SnappyCompression.
	Compression CompressionType

	// BlockCompressionRatio is the minimum ratio of raw to compressed size
	// for a compressed block to be kept. Blocks compressing worse are
	// stored raw.
	//
	// The default value is 8/7.
	BlockCompressionRatio float64

	// VerifyChecksums specifys whether blocks read from the database file
	// should be verified against saved checksums.
	//
	// The default value is false.
	VerifyChecksums bool

	// Logger specifys a place that progress and error information, including
	// skipped or corrupt trails, will be written to.
	//
	// The default value is DiscardLogger.
	Logger Logger

	// FileSystem defines the file storage interface.
	//
	// The default file system is built around os package.
	FileSystem FileSystem
}

func (opts *Options) getLogger() logger.LogCloser {
	if opts.Logger == nil {
		return logger.Discard
	}
	return logger.NopCloser(opts.Logger)
}

func (opts *Options) getFileSystem() file.FileSystem {
	if opts.FileSystem == nil {
		return file.DefaultFileSystem
	}
	if fs, ok := opts.FileSystem.(internalFileSystem); ok {
		return fs.FileSystem
	}
	return wrappedFileSystem{opts.FileSystem}
}

func (opts *Options) getCompression() compress.Type {
	switch opts.Compression {
	case NoCompression:
		return compress.NoCompression
	case SnappyCompression:
		return compress.SnappyCompression
	}
	return options.DefaultCompression
}

func (opts *Options) getBlockCompressionRatio() float64 {
	if opts.BlockCompressionRatio <= 0 {
		return options.DefaultBlockCompressionRatio
	}
	return opts.BlockCompressionRatio
}

func convertOptions(opts *Options) *options.Options {
	if opts == nil {
		return &options.DefaultOptions
	}
	var iopts options.Options
	iopts.Compression = opts.getCompression()
	iopts.BlockCompressionRatio = opts.getBlockCompressionRatio()
	iopts.VerifyChecksums = opts.VerifyChecksums
	iopts.Logger = opts.getLogger()
	iopts.FileSystem = opts.getFileSystem()
	return &iopts
}

// CursorOptions contains options controlling events produced by a cursor.
type CursorOptions struct {
	// EdgeEncoded specifys whether events carry only the items that changed
	// since the previous event of the trail, instead of every field.
	EdgeEncoded bool
}

func convertCursorOptions(opts *CursorOptions) *options.CursorOptions {
	if opts == nil {
		return &options.DefaultCursorOptions
	}
	return &options.CursorOptions{EdgeEncoded: opts.EdgeEncoded}
}

// IteratorOptions contains options controlling a TrailIterator.
type IteratorOptions struct {
	// Logger receives a warning for every trail skipped because it could
	// not be loaded.
	//
	// The default value is DiscardLogger.
	Logger Logger

	// OnSkip, if not nil, is called with the trail id and a *TrailError of
	// kind ErrTrailLoad for every trail skipped because it could not be
	// loaded. Traversal continues after it returns.
	OnSkip func(trailID uint64, err error)
}

func (opts *IteratorOptions) getLogger() Logger {
	if opts == nil || opts.Logger == nil {
		return DiscardLogger
	}
	return opts.Logger
}

func (opts *IteratorOptions) getOnSkip() func(uint64, error) {
	if opts == nil {
		return nil
	}
	return opts.OnSkip
}
