package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/islishude/arcfind"
	"github.com/islishude/arcfind/internal/cli"
	"github.com/islishude/arcfind/internal/locator"
	s3store "github.com/islishude/arcfind/internal/storage/s3"
)

const (
	ExitSuccess = 0
	ExitWarning = 1
	ExitFatal   = 2
)

type Runner struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	s3     *s3store.Store
}

type RunResult struct {
	ExitCode int
	Err      error
}

func New(stdin io.Reader, stdout, stderr io.Writer) *Runner {
	return &Runner{stdin: stdin, stdout: stdout, stderr: stderr}
}

func (r *Runner) Run(ctx context.Context, opts cli.Options) RunResult {
	query := buildQuery(opts, r.stderr)

	if opts.ExtractTo != "" {
		sink, err := r.resolveSink(ctx, opts.ExtractTo)
		if err != nil {
			return RunResult{ExitCode: ExitFatal, Err: err}
		}
		query.Extract = sink
	}

	res, err := r.search(ctx, opts.Archive, query)
	if err != nil {
		return RunResult{ExitCode: ExitFatal, Err: err}
	}

	r.printResults(opts, query, res)

	if len(res.ExtractErrors) > 0 {
		for _, eerr := range res.ExtractErrors {
			_, _ = fmt.Fprintf(r.stderr, "arcfind: warning: %v\n", eerr)
		}
		return RunResult{ExitCode: ExitWarning}
	}
	return RunResult{ExitCode: ExitSuccess}
}

func (r *Runner) search(ctx context.Context, archive string, query arcfind.Query) (*arcfind.Results, error) {
	src, err := locator.ParseSource(archive)
	if err != nil {
		return nil, err
	}
	switch src.Kind {
	case locator.KindLocal:
		return arcfind.SearchFile(ctx, src.Path, query)
	case locator.KindStdio:
		data, err := io.ReadAll(r.stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return arcfind.Search(ctx, data, query)
	case locator.KindS3:
		store, err := r.s3Store(ctx)
		if err != nil {
			return nil, err
		}
		data, _, err := store.Fetch(ctx, src)
		if err != nil {
			return nil, err
		}
		return arcfind.Search(ctx, data, query)
	default:
		return nil, fmt.Errorf("unsupported archive source %q", archive)
	}
}

func (r *Runner) resolveSink(ctx context.Context, target string) (arcfind.Sink, error) {
	ref, err := locator.ParseTarget(target)
	if err != nil {
		return nil, err
	}
	if ref.Kind == locator.KindS3 {
		store, err := r.s3Store(ctx)
		if err != nil {
			return nil, err
		}
		sink, err := store.NewExtractSink(ref)
		if err != nil {
			return nil, err
		}
		return sink, nil
	}
	return arcfind.NewDirSink(ref.Path), nil
}

func (r *Runner) s3Store(ctx context.Context) (*s3store.Store, error) {
	if r.s3 != nil {
		return r.s3, nil
	}
	store, err := s3store.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init s3: %w", err)
	}
	r.s3 = store
	return store, nil
}

func buildQuery(opts cli.Options, stderr io.Writer) arcfind.Query {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	query := arcfind.Query{
		Names:        opts.Names,
		IgnoreCase:   opts.IgnoreCase,
		FirstOnly:    opts.FirstOnly,
		IncludeEmpty: opts.IncludeEmpty,
		Recursive:    opts.Recursive,
		MaxDepth:     opts.MaxDepth,
		Exclude:      opts.Exclude,
		Logger:       slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})),
	}
	for _, text := range opts.Contains {
		needle := []byte(text)
		query.Predicates = append(query.Predicates, arcfind.Predicate{
			Key: "contains:" + text,
			Match: func(data []byte) (any, bool) {
				if i := bytes.Index(data, needle); i >= 0 {
					return i, true
				}
				return nil, false
			},
		})
	}
	return query
}

// printResults writes one line per hit, grouped by requested suffix and
// then by predicate, in query order rather than map order.
func (r *Runner) printResults(opts cli.Options, query arcfind.Query, res *arcfind.Results) {
	for _, name := range query.Names {
		recs, ok := res.Names[name]
		if !ok {
			continue
		}
		if len(recs) == 0 {
			_, _ = fmt.Fprintf(r.stdout, "%s\t-\n", name)
			continue
		}
		for _, rec := range recs {
			r.printRecord(opts, name, rec)
		}
	}
	for _, p := range query.Predicates {
		pr, ok := res.Predicates[p.Key]
		if !ok {
			continue
		}
		for _, rec := range pr.Records {
			r.printRecord(opts, p.Key, rec)
		}
	}
}

func (r *Runner) printRecord(opts cli.Options, key string, rec arcfind.MatchRecord) {
	if opts.Long {
		_, _ = fmt.Fprintf(r.stdout, "%s\t%d\t%s\t%s\n",
			key, rec.Size, rec.ModTime.UTC().Format(time.RFC3339), rec.Name)
		return
	}
	_, _ = fmt.Fprintf(r.stdout, "%s\t%s\n", key, rec.Name)
}
