// Package iopool implements the asynchronous, ordered file I/O pool:
// a small set of reusable buffers cycling between available, in-flight,
// and completed state, backed by background worker goroutines (one for
// writes, one or more for reads) so that file I/O runs off the caller's
// compression/decompression loop.
//
// The design mirrors a pthread_mutex_t + pthread_cond_t job pool from
// a single-writer-thread C implementation, translated to sync.Mutex /
// sync.Cond, with the dispatch loop itself built the way this
// repository's other channel-based worker pools are: a buffered task
// channel drained by one or more long-lived goroutines.
package iopool

import (
	"os"
	"sync"

	"zstream/pkg/helper/errors"
	"zstream/pkg/helper/log"
	"zstream/pkg/iojob"
)

// MaxJobs is the hard ceiling on the number of reusable buffers a pool
// will allocate, matching the bound used by the reference single-writer
// implementation this package is ported from.
const MaxJobs = 10

// Config controls how a Pool is constructed.
type Config struct {
	// BufferSize is the size, in bytes, of each job's fixed buffer.
	BufferSize int

	// TotalJobs is the number of reusable Job buffers to allocate.
	// Values <= 0 select MaxJobs; values above MaxJobs are clamped to
	// MaxJobs.
	TotalJobs int

	// AsyncIO enables the background dispatch goroutine. When false,
	// Enqueue runs its task synchronously on the caller's goroutine,
	// which is the pool's graceful single-threaded degradation mode.
	AsyncIO bool

	// Workers is the number of dispatch goroutines draining the task
	// queue. The reference implementation uses exactly one; values
	// above 1 are honored but break the single-writer-thread ordering
	// guarantee the sparse writer relies on, so WritePool always
	// forces this to 1.
	Workers int

	Logger log.Logger
}

// Pool is the base asynchronous job pool shared by WritePool and
// ReadPool. It owns the fixed set of Job buffers and the background
// dispatcher; the write/read-specific state machines embed it.
type Pool struct {
	mu sync.Mutex
	cv *sync.Cond

	logger log.Logger

	jobs      []*iojob.Job
	available []*iojob.Job

	bufferSize int
	totalJobs  int

	file *os.File

	asyncIO    bool
	dispatcher *dispatcher
}

// New allocates TotalJobs buffers of BufferSize bytes and, when AsyncIO
// is set, starts the background dispatch goroutine(s).
func New(cfg Config) (*Pool, error) {
	if cfg.BufferSize <= 0 {
		return nil, errors.InvalidInputf("buffer size must be positive, got %d", cfg.BufferSize)
	}
	total := cfg.TotalJobs
	if total <= 0 {
		total = MaxJobs
	}
	if total > MaxJobs {
		total = MaxJobs
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewBasicLogger(log.InfoLevel)
	}

	p := &Pool{
		logger:     logger,
		jobs:       make([]*iojob.Job, 0, total),
		available:  make([]*iojob.Job, 0, total),
		bufferSize: cfg.BufferSize,
		totalJobs:  total,
		asyncIO:    cfg.AsyncIO,
	}
	p.cv = sync.NewCond(&p.mu)

	for i := 0; i < total; i++ {
		j := iojob.New(cfg.BufferSize)
		p.jobs = append(p.jobs, j)
		p.available = append(p.available, j)
	}

	if cfg.AsyncIO {
		workers := cfg.Workers
		if workers <= 0 {
			workers = 1
		}
		// Queue depth leaves room for the jobs actively being filled
		// by the caller, matching the reference pool's
		// totalJobs-2 bound (at least one job in flight, one being
		// filled, the rest queued).
		queueDepth := total - 2
		if queueDepth < 1 {
			queueDepth = 1
		}
		p.dispatcher = newDispatcher(workers, queueDepth)
	}

	return p, nil
}

// TotalJobs returns the number of buffers the pool was constructed
// with.
func (p *Pool) TotalJobs() int { return p.totalJobs }

// BufferSize returns the fixed size of each job's buffer.
func (p *Pool) BufferSize() int { return p.bufferSize }

// AsyncIO reports whether the pool dispatches work in the background.
func (p *Pool) AsyncIO() bool { return p.asyncIO }

// File returns the file descriptor jobs currently read from or write
// to.
func (p *Pool) File() *os.File {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.file
}

// AcquireJob removes and returns a job from the available set,
// blocking until one is released if the pool is momentarily exhausted.
// It blocks whenever every job is held by the caller or queued/in
// flight (e.g. a writer that has outrun the disk); blocking here
// (rather than asserting, as the reference C pool does) turns that into
// back-pressure instead of corrupting the buffer array.
func (p *Pool) AcquireJob() *iojob.Job {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.available) == 0 {
		p.cv.Wait()
	}
	n := len(p.available)
	j := p.available[n-1]
	p.available = p.available[:n-1]
	return j
}

// ReleaseJob resets and returns a job to the available set, waking any
// goroutine blocked in AcquireJob or Join.
func (p *Pool) ReleaseJob(j *iojob.Job) {
	p.mu.Lock()
	j.Reset()
	p.available = append(p.available, j)
	p.cv.Broadcast()
	p.mu.Unlock()
}

// Enqueue runs task against job, either on the background dispatcher
// (async mode) or synchronously on the calling goroutine (degraded
// mode). The task is responsible for releasing job back to the pool
// when it finishes.
func (p *Pool) Enqueue(j *iojob.Job, task func(*iojob.Job)) {
	if !p.asyncIO {
		task(j)
		return
	}
	p.dispatcher.submit(func() { task(j) })
}

// Join blocks until every job has been released back to the available
// set, i.e. until all in-flight and queued work has drained.
func (p *Pool) Join() {
	if p.asyncIO {
		p.dispatcher.drain()
	}
	p.mu.Lock()
	for len(p.available) < p.totalJobs {
		p.cv.Wait()
	}
	p.mu.Unlock()
}

// SetFile joins outstanding work and rebinds the pool to a new file,
// ready for a fresh sequential pass.
func (p *Pool) SetFile(f *os.File) {
	p.Join()
	p.mu.Lock()
	p.file = f
	p.mu.Unlock()
}

// AvailableCount reports how many jobs are currently available, mostly
// useful for tests asserting the job-conservation invariant.
func (p *Pool) AvailableCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.available)
}

// Destroy joins outstanding work and stops the background dispatcher.
// The pool must not be used afterward.
func (p *Pool) Destroy() {
	p.Join()
	if p.dispatcher != nil {
		p.dispatcher.stop()
	}
}
