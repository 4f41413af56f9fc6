// Package sparsewrite implements punching holes in output files instead
// of writing runs of zero bytes: long zero runs are skipped with a
// Seek instead of a Write, so the filesystem can represent them as
// unallocated blocks.
//
// The scan is word-wise (8 bytes at a time) over fixed 32 KiB segments,
// carries a running "stored skip" count across buffer boundaries (a
// zero run can straddle two write calls), walks a carried skip of 1 GiB
// or more off in 1 GiB seeks before scanning the next buffer (the seek
// that flushes a pending skip before data, and the one in End, are not
// split), and needs an explicit End call once the whole stream has been
// written: if the file ends in a zero run, nothing was ever written
// there, so the file would be truncated short without one final byte
// to fix its length.
package sparsewrite

import (
	"encoding/binary"
	"io"
	"os"

	"zstream/pkg/helper/errors"
)

const (
	// segmentSize is the granularity at which the scanner decides
	// whether to skip or write: large enough to amortize the Seek
	// syscall, small enough that a segment straddling a zero/non-zero
	// boundary doesn't waste much space.
	segmentSize = 32 * 1024

	// maxSeekSkip bounds any single carried-skip Seek to avoid handing
	// the OS an arbitrarily large offset in one call; skips larger
	// than this are walked off in maxSeekSkip-sized steps.
	maxSeekSkip = 1 << 30 // 1 GiB
)

// Write scans buf for runs of zero bytes and seeks over them instead of
// writing them, accumulating any trailing zero run into *storedSkips so
// the next call (or End) can continue the run. When testMode is set,
// the write is skipped entirely (used for throughput benchmarking
// without touching the filesystem); storedSkips still does not apply
// in that mode since no file positioning happens.
func Write(f *os.File, buf []byte, storedSkips *int64, testMode bool) error {
	if testMode {
		return nil
	}

	if err := flushCarriedSkip(f, storedSkips); err != nil {
		return err
	}

	pos := 0
	n := len(buf)
	for pos+segmentSize <= n {
		segment := buf[pos : pos+segmentSize]
		if isAllZero(segment) {
			*storedSkips += int64(segmentSize)
		} else {
			if err := flushPendingSkip(f, storedSkips, 92); err != nil {
				return err
			}
			if _, err := f.Write(segment); err != nil {
				return errors.Wrap(err, "intermediate sparse data write failed")
			}
		}
		pos += segmentSize
	}

	// Tail shorter than one segment: scanned byte-wise since it's not
	// worth the word-wise machinery for what's left.
	tail := buf[pos:]
	zeroTail := len(tail)
	for i, b := range tail {
		if b != 0 {
			zeroTail = i
			break
		}
	}
	if zeroTail == len(tail) {
		*storedSkips += int64(len(tail))
		return nil
	}

	if err := flushPendingSkip(f, storedSkips, 92); err != nil {
		return err
	}
	if _, err := f.Write(tail); err != nil {
		return errors.Wrap(err, "tail sparse data write failed")
	}
	return nil
}

// End terminates a sparse write pass: if a zero run was left pending
// when the last buffer was written, the file must still end up the
// right length, so this seeks to the last byte of the run and writes a
// single zero there.
func End(f *os.File, storedSkips *int64) error {
	if *storedSkips == 0 {
		return nil
	}
	if _, err := f.Seek(*storedSkips-1, io.SeekCurrent); err != nil {
		return errors.Wrap(err, "final sparse skip seek failed")
	}
	if _, err := f.Write([]byte{0}); err != nil {
		return errors.Wrap(err, "final sparse byte write failed")
	}
	*storedSkips = 0
	return nil
}

// flushCarriedSkip walks off any skip count large enough to risk
// overflowing a single Seek, maxSeekSkip bytes at a time.
func flushCarriedSkip(f *os.File, storedSkips *int64) error {
	for *storedSkips >= maxSeekSkip {
		if _, err := f.Seek(maxSeekSkip, io.SeekCurrent); err != nil {
			return errors.Wrap(err, "1 GiB sparse skip seek failed")
		}
		*storedSkips -= maxSeekSkip
	}
	return nil
}

// flushPendingSkip seeks over any accumulated skip before a non-zero
// segment is written, tagging the error with the given exit-code-style
// reason so callers can distinguish intermediate failure points.
func flushPendingSkip(f *os.File, storedSkips *int64, reasonCode int) error {
	if *storedSkips == 0 {
		return nil
	}
	if _, err := f.Seek(*storedSkips, io.SeekCurrent); err != nil {
		return errors.Wrap(err, "intermediate sparse skip seek failed (code %d)", reasonCode)
	}
	*storedSkips = 0
	return nil
}

// isAllZero reports whether b is entirely zero bytes, scanning 8 bytes
// (one machine word on a 64-bit platform) at a time with a byte-wise
// tail for any remainder.
func isAllZero(b []byte) bool {
	i := 0
	for ; i+8 <= len(b); i += 8 {
		if binary.LittleEndian.Uint64(b[i:i+8]) != 0 {
			return false
		}
	}
	for ; i < len(b); i++ {
		if b[i] != 0 {
			return false
		}
	}
	return true
}
