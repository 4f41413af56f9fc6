package iopool

import (
	"io"
	"os"
	"sync"

	"zstream/pkg/iojob"
)

// ReadPool is the base Pool specialized for pipelined, ordered input:
// any number of background workers may finish reads out of order (a
// later offset can come back before an earlier one), but ReadPool
// re-serializes delivery to the consumer by offset, the way a single
// pthread_cond_t-guarded "waiting offset" does in the reference
// implementation.
//
// Consumed data is staged through a small sliding buffer (the
// "slider") so that Read can hand back arbitrary-sized chunks to the
// caller even though the underlying jobs only ever deliver whole
// buffer-sized pieces.
type ReadPool struct {
	*Pool

	stateMu   sync.Mutex
	stateCond *sync.Cond

	reachedEOF      bool
	nextReadOffset  int64
	waitingOnOffset int64
	// totalSize is the file's total size once a short read has been
	// observed, or -1 if EOF hasn't been seen yet. It lets
	// getNextCompletedJob stop waiting once nothing more can arrive.
	totalSize int64

	completed []*iojob.Job

	slider      []byte
	sliderStart int
	sliderLen   int
}

// NewReadPool builds a ReadPool. Unlike WritePool, reads may safely run
// with more than one background worker: reordering among in-flight
// reads is expected and handled by the offset-ordered delivery logic
// below, so cfg.Workers is left as the caller specified it.
func NewReadPool(cfg Config) (*ReadPool, error) {
	base, err := New(cfg)
	if err != nil {
		return nil, err
	}
	r := &ReadPool{
		Pool:      base,
		totalSize: -1,
		slider:    make([]byte, 2*cfg.BufferSize),
	}
	r.stateCond = sync.NewCond(&r.stateMu)
	return r, nil
}

// StartReading kicks off the initial wave of pipelined reads: one read
// per available job buffer in async mode, or a single synchronous read
// in degraded mode.
func (r *ReadPool) StartReading() {
	n := r.TotalJobs()
	if !r.AsyncIO() {
		n = 1
	}
	for i := 0; i < n; i++ {
		r.enqueueNextRead()
	}
}

func (r *ReadPool) enqueueNextRead() {
	r.stateMu.Lock()
	if r.reachedEOF {
		r.stateMu.Unlock()
		return
	}
	offset := r.nextReadOffset
	r.nextReadOffset += int64(r.BufferSize())
	r.stateMu.Unlock()

	j := r.AcquireJob()
	j.File = r.File()
	j.Offset = offset
	r.Enqueue(j, r.executeReadJob)
}

func (r *ReadPool) executeReadJob(j *iojob.Job) {
	n, err := j.File.ReadAt(j.Buffer, j.Offset)
	if err != nil && err != io.EOF {
		r.logger.Error("read job failed", err)
		n = 0
	}
	j.UsedBufferSize = n
	r.addCompleted(j, n < len(j.Buffer))
}

func (r *ReadPool) addCompleted(j *iojob.Job, short bool) {
	r.stateMu.Lock()
	if short {
		r.reachedEOF = true
		if end := j.Offset + int64(j.UsedBufferSize); r.totalSize < 0 || end < r.totalSize {
			r.totalSize = end
		}
	}
	r.completed = append(r.completed, j)
	kept := r.completed[:0]
	var past []*iojob.Job
	for _, c := range r.completed {
		if r.totalSize >= 0 && c.Offset >= r.totalSize {
			past = append(past, c)
			continue
		}
		kept = append(kept, c)
	}
	r.completed = kept
	r.stateCond.Broadcast()
	r.stateMu.Unlock()
	for _, c := range past {
		r.ReleaseJob(c)
	}
}

// getNextCompletedJob blocks until the completed job for
// waitingOnOffset arrives, then removes and returns it, advancing
// waitingOnOffset past it. Returns nil once the file's total size is
// known and waitingOnOffset has reached it: nothing more will ever
// arrive.
func (r *ReadPool) getNextCompletedJob() *iojob.Job {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	for {
		if r.totalSize >= 0 && r.waitingOnOffset >= r.totalSize {
			return nil
		}
		for i, j := range r.completed {
			if j.Offset == r.waitingOnOffset {
				last := len(r.completed) - 1
				r.completed[i] = r.completed[last]
				r.completed = r.completed[:last]
				r.waitingOnOffset += int64(j.UsedBufferSize)
				return j
			}
		}
		r.stateCond.Wait()
	}
}

// fillBuffer pulls the next in-order completed job into the slider,
// compacting the slider first if its tail doesn't have room. Returns
// false once there is nothing left to pull (EOF fully drained).
func (r *ReadPool) fillBuffer() bool {
	j := r.getNextCompletedJob()
	if j == nil {
		return false
	}
	payload := j.Buffer[:j.UsedBufferSize]

	if r.sliderStart+r.sliderLen+len(payload) > len(r.slider) {
		copy(r.slider, r.slider[r.sliderStart:r.sliderStart+r.sliderLen])
		r.sliderStart = 0
	}
	copy(r.slider[r.sliderStart+r.sliderLen:], payload)
	r.sliderLen += len(payload)

	r.ReleaseJob(j)
	r.enqueueNextRead()
	return true
}

// ConsumeBytes advances the slider past n already-copied-out bytes.
// Consuming 0 bytes is a valid no-op.
func (r *ReadPool) ConsumeBytes(n int) {
	if n <= 0 {
		return
	}
	r.sliderStart += n
	r.sliderLen -= n
}

// Read implements io.Reader, delivering bytes strictly in file order
// regardless of the order the background workers finished reading
// them in.
func (r *ReadPool) Read(dst []byte) (int, error) {
	total := 0
	for total < len(dst) {
		if r.sliderLen == 0 {
			if !r.fillBuffer() {
				break
			}
		}
		n := copy(dst[total:], r.slider[r.sliderStart:r.sliderStart+r.sliderLen])
		r.ConsumeBytes(n)
		total += n
	}
	if total == 0 {
		return 0, io.EOF
	}
	return total, nil
}

// ConsumeAndReadAll copies every remaining byte of the input file to w.
func (r *ReadPool) ConsumeAndReadAll(w io.Writer) (int64, error) {
	return io.Copy(w, r)
}

// SetFile joins outstanding reads and rebinds the pool to a new source
// file, resetting every piece of ordering and buffering state for a
// fresh sequential pass.
func (r *ReadPool) SetFile(f *os.File) {
	r.Pool.SetFile(f)

	r.stateMu.Lock()
	r.reachedEOF = false
	r.nextReadOffset = 0
	r.waitingOnOffset = 0
	r.totalSize = -1
	r.completed = r.completed[:0]
	r.stateMu.Unlock()

	r.sliderStart = 0
	r.sliderLen = 0
}

// Close drains outstanding reads and closes the underlying file.
func (r *ReadPool) Close() error {
	r.Destroy()
	f := r.File()
	if f == nil {
		return nil
	}
	return f.Close()
}
