// Package iojob defines the unit of work shared by the read and write
// I/O pools: a reusable, page-sized buffer paired with the file offset
// it currently represents.
package iojob

import "os"

// Job is a single reusable I/O buffer cycling through acquire, fill,
// enqueue, and release. A pool never allocates more than its configured
// total of Jobs; the same Job is reused for every operation that flows
// through it.
type Job struct {
	// File is the descriptor the job's buffer will be read from or
	// written to. Stamped from the pool's current file (Pool.File) each
	// time the job is acquired for a read or write.
	File *os.File

	// Buffer is the job's fixed-size backing array, allocated once at
	// pool construction and never resized.
	Buffer []byte

	// UsedBufferSize is the number of valid bytes currently held in
	// Buffer: the read size for a read job, the write size for a
	// write job.
	UsedBufferSize int

	// Offset is the position in File that UsedBufferSize bytes of
	// Buffer correspond to.
	Offset int64
}

// New allocates a Job with a fixed buffer of the given size.
func New(bufferSize int) *Job {
	return &Job{Buffer: make([]byte, bufferSize)}
}

// Reset clears the accounting fields of a job before it is returned to
// the pool's available set. The backing buffer is kept and reused.
func (j *Job) Reset() {
	j.UsedBufferSize = 0
	j.Offset = 0
}
