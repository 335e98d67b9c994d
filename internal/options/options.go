package options

import (
	"github.com/kezhuw/traildb/internal/compress"
	"github.com/kezhuw/traildb/internal/file"
	"github.com/kezhuw/traildb/internal/logger"
)

const (
	DefaultCompression = compress.SnappyCompression

	// Compressed blocks are kept only when they are at least 12.5% smaller.
	DefaultBlockCompressionRatio = 8.0 / 7.0
)

type Options struct {
	Compression           compress.Type
	BlockCompressionRatio float64
	VerifyChecksums       bool
	Logger                logger.LogCloser
	FileSystem            file.FileSystem
}

type CursorOptions struct {
	EdgeEncoded bool
}

var DefaultOptions = Options{
	Compression:           DefaultCompression,
	BlockCompressionRatio: DefaultBlockCompressionRatio,
	Logger:                logger.Discard,
	FileSystem:            file.DefaultFileSystem,
}

var DefaultCursorOptions = CursorOptions{}
