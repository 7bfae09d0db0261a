package build

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/cannon-dev/cannon/internal/artifacts"
	"github.com/cannon-dev/cannon/internal/config"
	"github.com/cannon-dev/cannon/internal/errors"
	"github.com/cannon-dev/cannon/internal/metrics"
	"github.com/cannon-dev/cannon/internal/output"
	"github.com/cannon-dev/cannon/pkg/router"
)

const tracerName = "github.com/cannon-dev/cannon/internal/build"

// Target is a named output destination.
type Target struct {
	// Name labels the target in logs and metrics ("file", "s3").
	Name string

	Writer output.Writer
}

// Options configures the builder.
type Options struct {
	// Concurrency bounds parallel generation. Zero means one worker per CPU.
	Concurrency int

	// Compile runs forge build in ProjectDir before generating.
	Compile bool

	// ProjectDir is the working directory of the compile step.
	ProjectDir string

	// Forge is the forge executable (default: "forge").
	Forge string

	// Logger receives debug output (default: slog.Default()).
	Logger *slog.Logger

	// Metrics records generation metrics when set.
	Metrics *metrics.Metrics

	// Tracer overrides the global tracer.
	Tracer trace.Tracer

	// OnProgress is called with progress updates.
	OnProgress func(step string)
}

// Result contains the batch output.
type Result struct {
	// Duration is how long the batch took, compile step included.
	Duration time.Duration

	// Routers are in request order.
	Routers []RouterResult
}

// RouterResult is one generated and delivered router.
type RouterResult struct {
	Document *router.Document

	// Outputs are in target order.
	Outputs []output.Result

	// Elapsed is the generation time.
	Elapsed time.Duration
}

// RouterError reports the failure of one router of a batch.
type RouterError struct {
	Router string
	Err    error
}

func (e *RouterError) Error() string {
	return fmt.Sprintf("router %s: %v", e.Router, e.Err)
}

func (e *RouterError) Unwrap() error {
	return e.Err
}

// Builder generates batches of routers.
type Builder struct {
	generator *router.Generator
	targets   []Target
	options   Options
	logger    *slog.Logger
	tracer    trace.Tracer

	// store lists the available modules when a router names a missing one.
	store *artifacts.Store
}

// New creates a builder delivering to targets.
func New(gen *router.Generator, targets []Target, options Options) *Builder {
	if options.Forge == "" {
		options.Forge = "forge"
	}
	if options.Concurrency <= 0 {
		options.Concurrency = runtime.NumCPU()
	}

	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tracer := options.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	return &Builder{
		generator: gen,
		targets:   targets,
		options:   options,
		logger:    logger,
		tracer:    tracer,
	}
}

// NewFromConfig creates a builder for the project described by cfg. It
// reads artifacts from the configured directory and writes to the output
// directory, plus S3 when a bucket is configured. Zero option fields are
// filled from cfg.
func NewFromConfig(ctx context.Context, cfg *config.Config, options Options) (*Builder, *artifacts.Store, error) {
	dep, err := cfg.Deployment()
	if err != nil {
		return nil, nil, err
	}

	store := artifacts.NewStore(cfg.ArtifactsPath())
	gen := router.NewGenerator(store,
		router.WithVariant(cfg.Router.Variant),
		router.WithDeployment(dep),
		router.WithMaxLeafWidth(cfg.Router.MaxLeafWidth),
	)

	targets := []Target{{Name: "file", Writer: output.NewFileWriter(cfg.OutputPath())}}
	if cfg.HasS3() {
		s3cfg := cfg.Output.S3
		client, err := output.NewS3Client(ctx, output.S3Options{
			Region:    s3cfg.Region,
			Endpoint:  s3cfg.Endpoint,
			PathStyle: s3cfg.PathStyle,
		})
		if err != nil {
			return nil, nil, err
		}
		targets = append(targets, Target{Name: "s3", Writer: output.NewS3Writer(client, s3cfg.Bucket, s3cfg.Prefix)})
	}

	if options.Concurrency == 0 {
		options.Concurrency = cfg.Router.Concurrency
	}
	if !options.Compile {
		options.Compile = cfg.Router.Compile
	}
	if options.ProjectDir == "" {
		options.ProjectDir = cfg.Dir()
	}

	b := New(gen, targets, options)
	b.store = store
	return b, store, nil
}

// Build generates every request and delivers the documents.
func (b *Builder) Build(ctx context.Context, reqs []router.Request) (*Result, error) {
	start := time.Now()

	ctx, span := b.tracer.Start(ctx, "cannon.build",
		trace.WithAttributes(attribute.Int("cannon.routers", len(reqs))),
	)
	defer span.End()

	if err := checkNames(reqs); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if b.options.Compile {
		b.progress("Compiling contracts...")
		if err := b.compile(ctx); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "compile failed")
			return nil, err
		}
	}

	b.progress("Generating routers...")
	results, err := b.generateAll(ctx, reqs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	b.progress("Writing routers...")
	if err := b.writeAll(ctx, results); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &Result{Duration: time.Since(start), Routers: results}, nil
}

// Generate generates one router without delivering it.
func (b *Builder) Generate(ctx context.Context, req router.Request) (*router.Document, error) {
	res, err := b.generate(ctx, req)
	if err != nil {
		return nil, err
	}
	return res.Document, nil
}

func (b *Builder) generateAll(ctx context.Context, reqs []router.Request) ([]RouterResult, error) {
	results := make([]RouterResult, len(reqs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.options.Concurrency)

	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := b.generate(ctx, req)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (b *Builder) generate(ctx context.Context, req router.Request) (RouterResult, error) {
	_, span := b.tracer.Start(ctx, "cannon.generate",
		trace.WithAttributes(
			attribute.String("cannon.router", req.Name),
			attribute.Int("cannon.modules", len(req.Modules)),
		),
	)
	defer span.End()

	start := time.Now()
	doc, err := b.generator.Generate(req)
	elapsed := time.Since(start)

	if err != nil {
		coded := errors.FromGenerate(err)
		if coded.Code == "E100" {
			coded = b.withAvailableModules(coded)
		}
		if b.options.Metrics != nil {
			b.options.Metrics.ObserveFailure(b.variantOf(req), coded)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, coded.Code)
		b.logger.Debug("router generation failed", "router", req.Name, "code", coded.Code, "error", err)
		return RouterResult{}, &RouterError{Router: req.Name, Err: coded}
	}

	if b.options.Metrics != nil {
		b.options.Metrics.ObserveGeneration(doc, elapsed)
	}
	span.SetAttributes(
		attribute.String("cannon.variant", doc.Variant),
		attribute.Int("cannon.selectors", doc.Selectors),
		attribute.Int("cannon.depth", doc.Depth),
		attribute.String("cannon.checksum", doc.Checksum),
	)
	b.logger.Debug("router generated",
		"router", doc.Name,
		"variant", doc.Variant,
		"selectors", doc.Selectors,
		"depth", doc.Depth,
		"elapsed", elapsed,
	)

	return RouterResult{Document: doc, Elapsed: elapsed}, nil
}

func (b *Builder) writeAll(ctx context.Context, results []RouterResult) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.options.Concurrency)

	for i := range results {
		i := i
		g.Go(func() error {
			doc := results[i].Document
			outputs := make([]output.Result, 0, len(b.targets))
			for _, t := range b.targets {
				res, err := t.Writer.Write(ctx, doc)
				if err != nil {
					return &RouterError{Router: doc.Name, Err: err}
				}
				if b.options.Metrics != nil {
					b.options.Metrics.ObserveWrite(t.Name, res.Unchanged)
				}
				b.logger.Debug("router written", "router", doc.Name, "target", t.Name, "location", res.Location, "unchanged", res.Unchanged)
				outputs = append(outputs, res)
			}
			results[i].Outputs = outputs
			return nil
		})
	}

	return g.Wait()
}

// compile runs forge build in the project directory.
func (b *Builder) compile(ctx context.Context) error {
	ctx, span := b.tracer.Start(ctx, "cannon.compile")
	defer span.End()

	cmd := exec.CommandContext(ctx, b.options.Forge, "build")
	cmd.Dir = b.options.ProjectDir

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	start := time.Now()
	err := cmd.Run()
	b.logger.Debug("forge build finished", "dir", b.options.ProjectDir, "elapsed", time.Since(start), "error", err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "forge build failed")
		ce := errors.New("E140").Wrap(err)
		if detail := strings.TrimSpace(out.String()); detail != "" {
			ce = ce.WithDetail(detail)
		}
		return ce
	}
	return nil
}

// maxListedModules bounds the module list attached to E100.
const maxListedModules = 20

// withAvailableModules attaches the modules found in the artifacts
// directory to a module-not-found error.
func (b *Builder) withAvailableModules(ce *errors.CannonError) *errors.CannonError {
	if b.store == nil {
		return ce
	}
	names, err := b.store.Modules()
	if err != nil || len(names) == 0 {
		return ce
	}

	listed := names
	if len(listed) > maxListedModules {
		listed = listed[:maxListedModules]
	}
	detail := "Available modules: " + strings.Join(listed, ", ")
	if extra := len(names) - len(listed); extra > 0 {
		detail += fmt.Sprintf(" and %d more", extra)
	}
	if ce.Detail != "" {
		detail = ce.Detail + " " + detail
	}
	return ce.WithDetail(detail)
}

func (b *Builder) variantOf(req router.Request) string {
	if req.Variant != "" {
		return req.Variant
	}
	return b.generator.Variant()
}

func (b *Builder) progress(step string) {
	if b.options.OnProgress != nil {
		b.options.OnProgress(step)
	}
}

// checkNames rejects batches declaring the same router twice.
func checkNames(reqs []router.Request) error {
	seen := make(map[string]bool, len(reqs))
	for _, req := range reqs {
		name, err := router.NormalizeName(req.Name)
		if err != nil {
			// Reported by the generator with its code.
			continue
		}
		if seen[name] {
			return &RouterError{
				Router: name,
				Err:    errors.New("E105").WithDetail(name + " is declared more than once in the batch"),
			}
		}
		seen[name] = true
	}
	return nil
}
