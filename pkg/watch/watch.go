// Package watch implements zstream's long-running "watch a directory"
// mode: poll a directory for new input files and compress each one as
// it appears, instead of exiting after a single file like the compress
// subcommand does.
//
// Concurrency is bounded two ways, grounded on this codebase's existing
// concurrency helpers: golang.org/x/sync's errgroup+semaphore (via
// pkg/helper/util.LimitedErrGroup) caps how many files are compressed
// at once, and pkg/helper/throttle.RateLimiter caps how many new files
// are admitted per minute, so a directory suddenly filling with
// thousands of files doesn't start them all in the same instant.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"zstream/pkg/engine"
	"zstream/pkg/helper/errors"
	"zstream/pkg/helper/log"
	"zstream/pkg/helper/throttle"
	"zstream/pkg/helper/util"
)

// Options configures a Watcher.
type Options struct {
	Dir             string
	OutSuffix       string // appended to the input filename for its output, e.g. ".zst"
	PollInterval    time.Duration
	MaxConcurrent   int
	AdmitPerMinute  int
	NewEngine       func() *engine.Engine
	Logger          log.Logger
}

// Watcher polls Options.Dir and compresses any file that doesn't
// already have a matching OutSuffix sibling.
type Watcher struct {
	opts Options
	seen map[string]struct{}
}

// New builds a Watcher ready to Run.
func New(opts Options) *Watcher {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}
	if opts.OutSuffix == "" {
		opts.OutSuffix = ".zst"
	}
	return &Watcher{opts: opts, seen: make(map[string]struct{})}
}

// Run polls until ctx is canceled, compressing each newly discovered
// file and blocking (subject to the concurrency/rate bounds above)
// until its pass completes.
func (w *Watcher) Run(ctx context.Context) error {
	limiter := throttle.NewRateLimiter(maxInt(w.opts.AdmitPerMinute, 1), time.Minute)
	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.scanOnce(ctx, limiter); err != nil {
				return err
			}
		}
	}
}

func (w *Watcher) scanOnce(ctx context.Context, limiter *throttle.RateLimiter) error {
	entries, err := os.ReadDir(w.opts.Dir)
	if err != nil {
		return errors.Wrap(err, "failed to scan watch directory")
	}

	var toProcess []string
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), w.opts.OutSuffix) {
			continue
		}
		if _, ok := w.seen[e.Name()]; ok {
			continue
		}
		if _, err := os.Stat(filepath.Join(w.opts.Dir, e.Name()+w.opts.OutSuffix)); err == nil {
			w.seen[e.Name()] = struct{}{}
			continue
		}
		toProcess = append(toProcess, e.Name())
	}

	results := util.NewResults()
	group := util.NewLimitedErrGroup(ctx, w.opts.MaxConcurrent)
	for _, name := range toProcess {
		name := name
		w.seen[name] = struct{}{}
		if err := limiter.Acquire(ctx); err != nil {
			return err
		}
		group.Go(func() error {
			src := filepath.Join(w.opts.Dir, name)
			dst := src + w.opts.OutSuffix
			eng := w.opts.NewEngine()
			res, err := eng.Compress(ctx, src, dst)
			if err != nil {
				w.opts.Logger.Error("watch: compress failed", errors.Wrap(err, name))
				return nil
			}
			results.Add(name)
			results.AddMetric("bytes_in", res.BytesIn)
			results.AddMetric("bytes_out", res.BytesOut)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}
	if processed := results.GetItems(); len(processed) > 0 {
		w.opts.Logger.WithFields(map[string]interface{}{
			"files":     len(processed),
			"bytes_in":  results.GetMetric("bytes_in"),
			"bytes_out": results.GetMetric("bytes_out"),
		}).Info("watch: scan complete")
	}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
