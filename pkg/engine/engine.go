// Package engine drives a full compress or decompress pass: it wires a
// ReadPool, a Codec, and a WritePool together into a single streaming
// pipeline, with optional progress reporting, metrics, and content
// verification layered on top without the pool or codec packages
// needing to know about any of them.
package engine

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"zstream/pkg/codec"
	"zstream/pkg/fingerprint"
	"zstream/pkg/helper/errors"
	"zstream/pkg/helper/log"
	"zstream/pkg/iojob"
	"zstream/pkg/iopool"
	"zstream/pkg/metrics"
	"zstream/pkg/progress"
)

// Options configures an Engine. Zero values are not valid; fill in
// sensible defaults (see zstream/pkg/config, from which cmd builds its
// Options) before constructing an Engine.
type Options struct {
	BufferSize  int
	Jobs        int
	AsyncIO     bool
	ReadWorkers int
	Sparse      bool
	TestMode    bool

	Level        codec.Level
	WindowSizeMB int
	Verify       bool

	Progress *progress.Reporter
	Metrics  *metrics.Registry
	Logger   log.Logger
}

// Result summarizes one completed compress or decompress pass.
type Result struct {
	RunID    string // correlates this pass's log lines and metrics
	BytesIn  int64
	BytesOut int64
	Duration time.Duration
	Digest   string // set only when Options.Verify is true
}

// Engine runs compress/decompress passes according to a fixed set of
// Options. It is safe to reuse across multiple files; each pass opens
// its own pools bound to that file's descriptors.
type Engine struct {
	opts  Options
	codec codec.Codec
}

// New builds an Engine. codec.New is used directly if opts.Level's
// zero value (LevelFastest == 0) isn't what the caller wants;
// config.CodecConfig.Level should already have been resolved to a
// codec.Level by the caller.
func New(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = log.NewBasicLogger(log.InfoLevel)
	}
	return &Engine{
		opts:  opts,
		codec: codec.New(opts.Level, opts.WindowSizeMB),
	}
}

func (e *Engine) poolConfig(logger log.Logger) iopool.Config {
	return iopool.Config{
		BufferSize: e.opts.BufferSize,
		TotalJobs:  e.opts.Jobs,
		AsyncIO:    e.opts.AsyncIO,
		Workers:    e.opts.ReadWorkers,
		Logger:     logger,
	}
}

// Compress reads srcPath, compresses it through the configured codec,
// and writes the result to dstPath.
func (e *Engine) Compress(ctx context.Context, srcPath, dstPath string) (Result, error) {
	return e.run(ctx, srcPath, dstPath, func(r io.Reader, w io.Writer) (io.Reader, io.Writer, io.Closer, error) {
		enc, err := e.codec.NewEncoder(w)
		if err != nil {
			return nil, nil, nil, err
		}
		return r, enc, enc, nil
	})
}

// Decompress reads srcPath, decompresses it through the configured
// codec, and writes the result to dstPath.
func (e *Engine) Decompress(ctx context.Context, srcPath, dstPath string) (Result, error) {
	return e.run(ctx, srcPath, dstPath, func(r io.Reader, w io.Writer) (io.Reader, io.Writer, io.Closer, error) {
		dec, err := e.codec.NewDecoder(r)
		if err != nil {
			return nil, nil, nil, err
		}
		return dec, w, dec, nil
	})
}

// transform wires the raw source (readPool) and sink (the pool writer,
// possibly tee'd through a fingerprint verifier) through the codec in
// whichever direction the caller wants: compress pushes raw bytes
// through an encoder on the way to the sink, decompress pulls encoded
// bytes through a decoder on the way from the source.
type transform func(r io.Reader, w io.Writer) (src io.Reader, dst io.Writer, closer io.Closer, err error)

func (e *Engine) run(ctx context.Context, srcPath, dstPath string, xform transform) (Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := e.opts.Logger.WithField("run_id", runID)
	logger.WithFields(map[string]interface{}{"src": srcPath, "dst": dstPath}).Info("starting pass")

	src, err := os.Open(srcPath)
	if err != nil {
		return Result{}, errors.Wrap(err, "failed to open source file")
	}
	defer src.Close()

	dst, err := os.Create(dstPath)
	if err != nil {
		return Result{}, errors.Wrap(err, "failed to create destination file")
	}

	readPool, err := iopool.NewReadPool(e.poolConfig(e.opts.Logger))
	if err != nil {
		dst.Close()
		return Result{}, err
	}
	readPool.SetFile(src)
	readPool.StartReading()

	writePool, err := iopool.NewWritePool(e.poolConfig(e.opts.Logger), e.opts.Sparse, e.opts.TestMode)
	if err != nil {
		readPool.Destroy()
		dst.Close()
		return Result{}, err
	}
	writePool.SetFile(dst)

	pw := newPoolWriter(writePool)

	var verifier *fingerprint.Verifier
	var out io.Writer = pw
	if e.opts.Verify {
		verifier = fingerprint.New()
		out = fingerprint.TeeVerifier(pw, verifier)
	}

	src2, sink, closer, err := xform(readPool, out)
	if err != nil {
		readPool.Destroy()
		_ = writePool.CloseFile()
		return Result{}, err
	}

	copyReader := io.Reader(src2)
	if ctx != nil {
		copyReader = &contextReader{ctx: ctx, r: src2}
	}

	bytesIn, copyErr := e.copyWithProgress(copyReader, sink)
	if closer != nil {
		if cerr := closer.Close(); cerr != nil && copyErr == nil {
			copyErr = errors.Wrap(cerr, "failed to finalize codec stream")
		}
	}
	pw.Flush()

	readPool.Destroy()
	closeErr := writePool.CloseFile()

	if e.opts.Progress != nil {
		e.opts.Progress.Done()
	}

	result := Result{RunID: runID, BytesIn: bytesIn, BytesOut: pw.offset, Duration: time.Since(start)}
	if verifier != nil {
		result.Digest = verifier.Digest().String()
	}
	if e.opts.Metrics != nil {
		status := "ok"
		if copyErr != nil || closeErr != nil {
			status = "error"
		}
		e.opts.Metrics.RecordFileProcessed("transform", status)
		e.opts.Metrics.AddBytesRead(bytesIn)
		e.opts.Metrics.AddBytesWritten(result.BytesOut)
	}

	if copyErr != nil || closeErr != nil {
		logger.Error("pass failed", firstNonNil(copyErr, closeErr))
	} else {
		logger.WithFields(map[string]interface{}{"bytes_in": bytesIn, "bytes_out": result.BytesOut, "duration": result.Duration}).Info("pass complete")
	}

	if copyErr != nil {
		return result, copyErr
	}
	return result, closeErr
}

func firstNonNil(a, b error) error {
	if a != nil {
		return a
	}
	return b
}

func (e *Engine) copyWithProgress(r io.Reader, w io.Writer) (int64, error) {
	if e.opts.Progress == nil {
		return io.Copy(w, r)
	}
	buf := make([]byte, e.opts.BufferSize)
	var total int64
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return total, werr
			}
			total += int64(n)
			e.opts.Progress.Add(int64(n))
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// contextReader aborts a Read once ctx is done, so a long-running
// compress/decompress pass can be cancelled between buffer fills.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	select {
	case <-c.ctx.Done():
		return 0, c.ctx.Err()
	default:
	}
	return c.r.Read(p)
}

// poolWriter adapts a WritePool (which only accepts whole job buffers)
// into an io.Writer that accepts arbitrary-sized writes, filling the
// current job until it's full and then handing it off to the pool
// while acquiring the next one to keep filling.
type poolWriter struct {
	wp     *iopool.WritePool
	job    *iojob.Job
	offset int64
}

func newPoolWriter(wp *iopool.WritePool) *poolWriter {
	return &poolWriter{wp: wp, job: wp.CreateJob(0)}
}

func (w *poolWriter) Write(p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		room := len(w.job.Buffer) - w.job.UsedBufferSize
		n := copy(w.job.Buffer[w.job.UsedBufferSize:], p)
		if n > room {
			n = room
		}
		w.job.UsedBufferSize += n
		p = p[n:]
		total += n
		w.offset += int64(n)

		if w.job.UsedBufferSize == len(w.job.Buffer) {
			w.job = w.wp.EnqueueAndReacquireWriteJob(w.job, w.offset)
		}
	}
	return total, nil
}

// Flush enqueues whatever partial job buffer is left, if any, and
// otherwise releases the empty job back to the pool.
func (w *poolWriter) Flush() {
	if w.job == nil {
		return
	}
	if w.job.UsedBufferSize > 0 {
		w.wp.EnqueueWrite(w.job)
	} else {
		w.wp.ReleaseJob(w.job)
	}
	w.job = nil
}
