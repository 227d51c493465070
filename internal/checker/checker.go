// Package checker runs a full stub check: discover and parse stubs, load
// runtime reflection data, apply muted problems and compare.
package checker

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mvp-joe/stubcheck/internal/config"
	"github.com/mvp-joe/stubcheck/internal/files"
	"github.com/mvp-joe/stubcheck/internal/model"
	"github.com/mvp-joe/stubcheck/internal/reconcile"
	"github.com/mvp-joe/stubcheck/internal/reflection"
	"github.com/mvp-joe/stubcheck/internal/stubs"
	"github.com/mvp-joe/stubcheck/internal/suppress"
)

// DumpSource produces reflection data. *reflection.Runner implements it.
type DumpSource interface {
	Dump(ctx context.Context) (*reflection.Dump, error)
}

// FileError is a stub file that could not be parsed.
type FileError struct {
	Path string
	Err  error
}

// Result is the outcome of one check.
type Result struct {
	Report     *reconcile.Report
	StubFiles  int
	FileErrors []FileError
	PHPVersion string
	StartedAt  time.Time
	Duration   time.Duration
}

// OK reports whether the check found nothing to fix.
func (r *Result) OK() bool {
	return len(r.FileErrors) == 0 && r.Report.OK()
}

// Checker wires the pipeline together.
type Checker struct {
	cfg      *config.Config
	source   DumpSource
	parsers  model.DocParsers
	logger   *slog.Logger
	progress ProgressReporter
}

// Option configures a Checker.
type Option func(*Checker)

// WithDumpSource replaces the default PHP runner used when no dump file is configured.
func WithDumpSource(s DumpSource) Option {
	return func(c *Checker) { c.source = s }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Checker) { c.logger = l }
}

// WithProgress sets the progress reporter.
func WithProgress(p ProgressReporter) Option {
	return func(c *Checker) { c.progress = p }
}

// New creates a Checker for cfg.
func New(cfg *config.Config, opts ...Option) *Checker {
	c := &Checker{
		cfg:      cfg,
		parsers:  model.DefaultDocParsers(),
		logger:   slog.New(slog.DiscardHandler),
		progress: NoOpProgressReporter{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.source == nil {
		c.source = reflection.NewRunner(cfg.Reflection.PHPBinary)
	}
	return c
}

// Run executes the check. Errors are returned only for problems with the
// inputs themselves; stub and reflection defects end up in the Result.
func (c *Checker) Run(ctx context.Context) (*Result, error) {
	result := &Result{StartedAt: time.Now(), FileErrors: []FileError{}}

	paths, err := c.discover()
	if err != nil {
		return nil, err
	}
	result.StubFiles = len(paths)
	c.progress.OnDiscoveryComplete(len(paths))
	c.logger.Info("discovered stubs", "root", c.cfg.Stubs.Root, "files", len(paths))

	stubModels, fileErrs, err := c.parseStubs(ctx, paths)
	if err != nil {
		return nil, err
	}
	result.FileErrors = fileErrs

	dump, err := c.loadDump(ctx)
	if err != nil {
		return nil, err
	}
	provider := reflection.NewProvider(dump)
	result.PHPVersion = provider.PHPVersion()
	reflected := provider.Functions()
	c.progress.OnReflectionLoaded(len(reflected))
	c.logger.Info("loaded reflection data", "functions", len(reflected), "php_version", result.PHPVersion)

	records, err := suppress.LoadFiles(c.cfg.Suppress.Files)
	if err != nil {
		return nil, err
	}
	suppress.Apply(reflected, records)
	c.logger.Debug("applied muted problems", "records", len(records))

	result.Report = reconcile.NewEngine(c.logger).Compare(reflected, stubModels)
	result.Duration = time.Since(result.StartedAt)
	c.progress.OnComplete(result)
	return result, nil
}

func (c *Checker) discover() ([]string, error) {
	d, err := files.NewDiscovery(c.cfg.Stubs.Root, c.cfg.Stubs.Include, c.cfg.Stubs.Ignore)
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery: %w", err)
	}
	return d.Discover()
}

// parseStubs parses files concurrently. Models keep discovery order so
// that the first declaration of a name still wins.
func (c *Checker) parseStubs(ctx context.Context, paths []string) ([]*model.Function, []FileError, error) {
	parser := stubs.NewParser()
	perFile := make([][]*model.Function, len(paths))
	errs := make([]error, len(paths))

	var progressMu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			file, err := parser.ParseFile(gctx, path)

			progressMu.Lock()
			c.progress.OnFileParsed(path)
			progressMu.Unlock()

			if err != nil {
				errs[i] = err
				return nil
			}
			fns := make([]*model.Function, 0, len(file.Functions))
			for _, node := range file.Functions {
				fns = append(fns, model.FromSyntaxNode(node, c.parsers))
			}
			perFile[i] = fns
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	fns := []*model.Function{}
	fileErrs := []FileError{}
	for i, path := range paths {
		if errs[i] != nil {
			c.logger.Warn("failed to parse stub file", "path", path, "error", errs[i])
			fileErrs = append(fileErrs, FileError{Path: path, Err: errs[i]})
			continue
		}
		fns = append(fns, perFile[i]...)
	}
	return fns, fileErrs, nil
}

func (c *Checker) loadDump(ctx context.Context) (*reflection.Dump, error) {
	if c.cfg.Reflection.Dump != "" {
		return reflection.LoadDump(c.cfg.Reflection.Dump)
	}
	c.logger.Debug("running reflection dumper")
	return c.source.Dump(ctx)
}
