// Package update runs the rewrite pipeline on Python files:
// read, parse, wrap literals, ensure the marker import, print, write back
// and optionally format.
package update

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/minios-linux/gettextify/pyast"
	"github.com/minios-linux/gettextify/transform"
)

// DefaultConcurrency is the number of files processed at once.
const DefaultConcurrency = 5

// ErrSourceNotFound is returned for a source file that does not exist.
// Batch callers skip such files.
var ErrSourceNotFound = errors.New("source file not found")

// Formatter formats a file after it has been written.
type Formatter interface {
	Format(ctx context.Context, path string) error
}

// Options controls a pipeline run.
type Options struct {
	// Formatter, when set, runs on every file that changed.
	Formatter Formatter
	// DryRun computes results without writing files.
	DryRun bool
	// Concurrency bounds Files; DefaultConcurrency when zero.
	Concurrency int
	Logger      zerolog.Logger
}

// Result describes one processed file.
type Result struct {
	Path    string
	Stats   transform.Stats
	Written bool
	Skipped bool
	Output  string
	Err     error
}

// File rewrites the file at path.
func File(ctx context.Context, path string, opts Options) (Result, error) {
	res := Result{Path: path}

	src, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return res, fmt.Errorf("%s: %w", path, ErrSourceNotFound)
		}
		return res, fmt.Errorf("reading %s: %w", path, err)
	}

	m, err := pyast.Parse(ctx, src)
	if err != nil {
		return res, fmt.Errorf("parsing %s: %w", path, err)
	}

	res.Stats = transform.Apply(m)
	res.Output = pyast.Print(m)
	if opts.DryRun || res.Output == string(src) {
		return res, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return res, fmt.Errorf("stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(res.Output), info.Mode().Perm()); err != nil {
		return res, fmt.Errorf("writing %s: %w", path, err)
	}
	res.Written = true

	if opts.Formatter != nil {
		if err := opts.Formatter.Format(ctx, path); err != nil {
			return res, fmt.Errorf("formatting %s: %w", path, err)
		}
	}
	return res, nil
}

// Report collects the per-file results of a batch.
type Report struct {
	Results []Result
	errs    *multierror.Error
}

// Err returns every file failure, or nil.
func (r *Report) Err() error { return r.errs.ErrorOrNil() }

// Written counts the files that were changed on disk.
func (r *Report) Written() int {
	n := 0
	for _, res := range r.Results {
		if res.Written {
			n++
		}
	}
	return n
}

// Files rewrites every path with a bounded pool. A failing file never stops
// the others; missing files are marked skipped and are not errors.
func Files(ctx context.Context, paths []string, opts Options) *Report {
	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	log := opts.Logger.With().Str("sys", "update").Logger()

	rep := &Report{Results: make([]Result, len(paths))}
	var g errgroup.Group
	g.SetLimit(limit)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			res, err := File(ctx, path, opts)
			res.Err = err
			switch {
			case errors.Is(err, ErrSourceNotFound):
				res.Skipped = true
				res.Err = nil
				log.Warn().Str("file", path).Msg("source file not found, skipping")
			case err != nil:
				log.Error().Err(err).Str("file", path).Msg("update failed")
			case res.Written:
				log.Debug().Str("file", path).Int("wrapped", res.Stats.Wrapped).Msg("updated")
			}
			rep.Results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	for _, res := range rep.Results {
		if res.Err != nil {
			rep.errs = multierror.Append(rep.errs, res.Err)
		}
	}
	return rep
}
