package iopool

import (
	"os"

	"zstream/pkg/helper/errors"
	"zstream/pkg/iojob"
	"zstream/pkg/sparsewrite"
)

// WritePool is the base Pool specialized for sequential, ordered output:
// a single background worker drains write jobs in submission order, so
// the sparse-file skip accounting in sparsewrite can rely on writes
// landing on the file in the same order the caller created them.
type WritePool struct {
	*Pool

	storedSkips int64
	sparse      bool
	testMode    bool
}

// NewWritePool builds a WritePool. Workers is always pinned to 1 for
// AsyncIO pools: the sparse writer's carried-skip state is only valid
// under a single-writer-thread ordering guarantee.
func NewWritePool(cfg Config, sparse, testMode bool) (*WritePool, error) {
	cfg.Workers = 1
	base, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return &WritePool{Pool: base, sparse: sparse, testMode: testMode}, nil
}

// CreateJob acquires a job from the pool and stamps it with the file
// offset the caller is about to fill its buffer for.
func (w *WritePool) CreateJob(offset int64) *iojob.Job {
	j := w.AcquireJob()
	j.File = w.File()
	j.Offset = offset
	return j
}

// EnqueueWrite submits job (whose Buffer[:UsedBufferSize] the caller
// has already filled in) to be written, releasing it back to the pool
// once the write completes.
func (w *WritePool) EnqueueWrite(j *iojob.Job) {
	w.Enqueue(j, w.executeWriteJob)
}

// EnqueueAndReacquireWriteJob enqueues job for writing and immediately
// returns a freshly acquired job stamped with nextOffset, so the caller
// can keep filling a buffer while the previous one drains to disk.
func (w *WritePool) EnqueueAndReacquireWriteJob(j *iojob.Job, nextOffset int64) *iojob.Job {
	w.EnqueueWrite(j)
	return w.CreateJob(nextOffset)
}

func (w *WritePool) executeWriteJob(j *iojob.Job) {
	defer w.ReleaseJob(j)

	buf := j.Buffer[:j.UsedBufferSize]
	if len(buf) == 0 {
		return
	}

	var err error
	switch {
	case w.testMode:
		// Test mode measures pipeline throughput without touching the
		// filesystem.
	case w.sparse:
		err = sparsewrite.Write(j.File, buf, &w.storedSkips, false)
	default:
		_, err = j.File.Write(buf)
		if err != nil {
			err = errors.Wrap(err, "non-sparse write failed")
		}
	}
	if err != nil {
		w.logger.Error("write job failed", err)
	}
}

// SparseWriteEnd joins outstanding writes and, if the pool is writing
// sparsely, terminates the sparse run so the file ends up the right
// length even if it tails off in zeros.
func (w *WritePool) SparseWriteEnd() error {
	w.Join()
	if !w.sparse || w.testMode {
		return nil
	}
	if err := sparsewrite.End(w.File(), &w.storedSkips); err != nil {
		return err
	}
	return nil
}

// CloseFile terminates any pending sparse run and closes the
// underlying file.
func (w *WritePool) CloseFile() error {
	if err := w.SparseWriteEnd(); err != nil {
		return err
	}
	f := w.File()
	if f == nil {
		return nil
	}
	return f.Close()
}

// SetFile joins outstanding writes, asserts the sparse-skip carry was
// fully drained by a prior SparseWriteEnd, and rebinds the pool to a
// new destination file. If a skip is still outstanding it returns an
// error and leaves the current file bound.
func (w *WritePool) SetFile(f *os.File) error {
	w.Join()
	if w.storedSkips != 0 {
		return errors.Internalf("write pool rebound with %d bytes of sparse skip still outstanding", w.storedSkips)
	}
	w.Pool.SetFile(f)
	return nil
}
