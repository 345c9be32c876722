package driver

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"thetac/internal/project"
)

// CompileMany checks several independent entry points. Each runs in its own
// Compiler (own link cache, own errors); only the capsule index is shared.
// Results come back in input order. Compile errors stay in each Result;
// the returned error is the first structural failure (unreadable entry,
// failed discovery, cancellation).
func CompileMany(ctx context.Context, entries []string, opts Options) ([]*Result, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	if opts.Index == nil {
		root := opts.Root
		if root == "" {
			root = filepath.Dir(entries[0])
		}
		ext := opts.Extension
		if ext == "" {
			ext = project.DefaultExtension
		}
		idx, err := project.DiscoverCapsules(root, ext, project.DiscoverOptions{Logger: opts.Logger})
		if err != nil {
			return nil, err
		}
		opts.Index = idx
	}
	// общие writer'ы не потокобезопасны
	opts.EmitTokens = false
	opts.EmitAST = false

	results := make([]*Result, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(runtime.GOMAXPROCS(0), len(entries)))

	for i, entry := range entries {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			res, err := NewCompiler(opts).Compile(gctx, entry, "")
			results[i] = res
			if err != nil && !errors.Is(err, ErrCompilationFailed) {
				return fmt.Errorf("%s: %w", entry, err)
			}
			return nil
		})
	}
	err := g.Wait()
	return results, err
}
