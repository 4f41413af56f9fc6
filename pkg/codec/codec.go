// Package codec wraps the actual compression algorithm behind a small
// collaborator interface, so the I/O pool pipeline in pkg/engine never
// has to know which codec it's driving. The default implementation
// uses klauspost/compress's zstd, the same codec this tool's file
// layout and sparse-write behavior are modeled on.
package codec

import (
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/valyala/bytebufferpool"

	"zstream/pkg/helper/errors"
)

// Level selects a compression/speed tradeoff.
type Level int

const (
	LevelFastest Level = iota
	LevelDefault
	LevelBetter
	LevelBest
)

// ParseLevel maps a config string ("fastest", "default", "better",
// "best") to a Level, defaulting to LevelDefault for anything else.
func ParseLevel(s string) Level {
	switch s {
	case "fastest":
		return LevelFastest
	case "better":
		return LevelBetter
	case "best":
		return LevelBest
	default:
		return LevelDefault
	}
}

func (l Level) zstdLevel() zstd.EncoderLevel {
	switch l {
	case LevelFastest:
		return zstd.SpeedFastest
	case LevelBetter:
		return zstd.SpeedBetterCompression
	case LevelBest:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}

// Codec is the collaborator the engine drives: a streaming
// encoder/decoder pair operating over io.Reader/io.Writer, so it can
// sit directly between a ReadPool (an io.Reader) and a WritePool (fed
// via Write).
type Codec interface {
	// NewEncoder wraps dst with a streaming compressor.
	NewEncoder(dst io.Writer) (io.WriteCloser, error)
	// NewDecoder wraps src with a streaming decompressor.
	NewDecoder(src io.Reader) (io.ReadCloser, error)
}

// zstdCodec is the default Codec, backed by klauspost/compress/zstd.
type zstdCodec struct {
	level      Level
	windowSize int
}

// New returns the default zstd-backed Codec at the given level. Each
// NewEncoder/NewDecoder call constructs a fresh zstd stream; the
// package's scratch pool (GetScratch) is not used by them.
func New(level Level, windowSizeMB int) Codec {
	return &zstdCodec{level: level, windowSize: windowSizeMB * 1024 * 1024}
}

func (c *zstdCodec) NewEncoder(dst io.Writer) (io.WriteCloser, error) {
	opts := []zstd.EOption{zstd.WithEncoderLevel(c.level.zstdLevel())}
	if c.windowSize > 0 {
		opts = append(opts, zstd.WithWindowSize(c.windowSize))
	}
	enc, err := zstd.NewWriter(dst, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to construct zstd encoder")
	}
	return enc, nil
}

func (c *zstdCodec) NewDecoder(src io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(src)
	if err != nil {
		return nil, errors.Wrap(err, "failed to construct zstd decoder")
	}
	return &readCloser{Reader: dec, closer: dec.Close}, nil
}

type readCloser struct {
	io.Reader
	closer func()
}

func (r *readCloser) Close() error {
	r.closer()
	return nil
}

// scratchPool hands out transient buffers through GetScratch and
// PutScratch for callers that need to stage bytes outside a job
// buffer; nothing else in this module currently borrows from it.
var scratchPool bytebufferpool.Pool

// GetScratch borrows a transient buffer from the shared pool.
func GetScratch() *bytebufferpool.ByteBuffer { return scratchPool.Get() }

// PutScratch returns a transient buffer to the shared pool.
func PutScratch(b *bytebufferpool.ByteBuffer) { scratchPool.Put(b) }
