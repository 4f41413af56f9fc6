// Package progress throttles and renders progress updates for long
// running compress/decompress operations. It uses a
// golang.org/x/time/rate limiter to bound how often a byte-counter gets
// printed, plus golang.org/x/term to decide whether the writer it
// prints to is a terminal, where a carriage return redraws the line in
// place.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/term"
	"golang.org/x/time/rate"
)

// Reporter throttles progress callbacks to at most once per tick, no
// matter how often Add is called from the I/O pool's hot path.
type Reporter struct {
	limiter *rate.Limiter
	total   atomic.Int64
	done    atomic.Int64
	out     io.Writer
	label   string
	isTTY   bool
}

// New creates a Reporter that prints at most once every tick to out.
// total may be 0 if the final size isn't known in advance (e.g.
// decompressing a stream whose uncompressed size isn't recorded).
func New(out io.Writer, label string, total int64, tick time.Duration) *Reporter {
	if tick <= 0 {
		tick = 100 * time.Millisecond
	}
	r := &Reporter{
		limiter: rate.NewLimiter(rate.Every(tick), 1),
		out:     out,
		label:   label,
	}
	r.total.Store(total)
	if f, ok := out.(*os.File); ok {
		r.isTTY = term.IsTerminal(int(f.Fd()))
	}
	return r
}

// Add records n additional bytes processed and, if the rate limiter
// allows it, renders an updated progress line.
func (r *Reporter) Add(n int64) {
	done := r.done.Add(n)
	if !r.limiter.Allow() {
		return
	}
	r.render(done)
}

// Done renders a final, unconditional progress line.
func (r *Reporter) Done() {
	r.render(r.done.Load())
	if r.out != nil {
		fmt.Fprintln(r.out)
	}
}

func (r *Reporter) render(done int64) {
	if r.out == nil {
		return
	}
	total := r.total.Load()
	sep := "\n"
	if r.isTTY {
		sep = "\r"
	}
	if total > 0 {
		pct := float64(done) / float64(total) * 100
		fmt.Fprintf(r.out, "%s%s: %s / %s (%.1f%%)", sep, r.label, humanBytes(done), humanBytes(total), pct)
	} else {
		fmt.Fprintf(r.out, "%s%s: %s", sep, r.label, humanBytes(done))
	}
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
