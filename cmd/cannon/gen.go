package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cannon-dev/cannon/internal/batch"
	"github.com/cannon-dev/cannon/internal/build"
	"github.com/cannon-dev/cannon/internal/config"
	"github.com/cannon-dev/cannon/internal/errors"
	"github.com/cannon-dev/cannon/internal/metrics"
	"github.com/cannon-dev/cannon/pkg/router"
)

func genCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen <type>",
		Short: "Generate code",
		Long: `Generate Solidity sources from compiled artifacts.

Types:
  router      Generate a router contract for a set of modules

Examples:
  cannon gen router --name CoreRouter TokenModule OwnerModule
  cannon gen router --toml routers.toml`,
	}

	cmd.AddCommand(genRouterCmd(flags))

	return cmd
}

// =============================================================================
// cannon gen router
// =============================================================================

type genRouterOptions struct {
	name        string
	modules     []string
	toml        string
	variant     string
	deployer    string
	salt        string
	width       int
	output      string
	s3Bucket    string
	s3Prefix    string
	s3Region    string
	compile     bool
	concurrency int
	metricsFile string
}

func genRouterCmd(flags *globalFlags) *cobra.Command {
	opts := genRouterOptions{}

	cmd := &cobra.Command{
		Use:   "router [modules...]",
		Short: "Generate a router contract",
		Long: `Generate a router that forwards every function of the given modules.

Modules are contract names ("TokenModule") or source-qualified names
("src/modules/TokenModule.sol:TokenModule") resolved against the
artifacts directory. The router is written to
<output>/<Name>.g.sol.

Variants:
  deterministic  module addresses are CREATE2 constants (default)
  immutable      module addresses are passed to the constructor
  dynamic        module addresses are looked up from a resolver contract

Routers declared in a TOML file are generated as one batch:

  [router.CoreRouter]
  modules = ["TokenModule", "OwnerModule"]

The output is deterministic: generating twice from the same artifacts
produces identical files.

Examples:
  cannon gen router --name CoreRouter TokenModule OwnerModule
  cannon gen router --name "core router" --variant immutable TokenModule
  cannon gen router --name CoreRouter --salt 0x01 --compile TokenModule
  cannon gen router --toml routers.toml --metrics-file cannon.prom`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.modules = args
			cfg, err := loadConfig(flags.dir)
			if err != nil {
				return err
			}
			if err := applyGenOverrides(cmd, cfg, opts); err != nil {
				return err
			}
			reqs, err := genRequests(cfg, opts)
			if err != nil {
				return err
			}
			return runGenRouter(cmd.Context(), cfg, reqs, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "Router contract name")
	cmd.Flags().StringVar(&opts.toml, "toml", "", "Generate every router of a TOML definition file")
	cmd.Flags().StringVar(&opts.variant, "variant", "", "Router variant (deterministic, immutable, dynamic)")
	cmd.Flags().StringVar(&opts.deployer, "deployer", "", "CREATE2 deployer address")
	cmd.Flags().StringVar(&opts.salt, "salt", "", "CREATE2 salt as hex")
	cmd.Flags().IntVar(&opts.width, "width", 0, "Maximum selectors per switch block")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output directory (default: src/generated/routers)")
	cmd.Flags().StringVar(&opts.s3Bucket, "s3-bucket", "", "Also upload routers to this S3 bucket")
	cmd.Flags().StringVar(&opts.s3Prefix, "s3-prefix", "", "Key prefix for S3 uploads")
	cmd.Flags().StringVar(&opts.s3Region, "s3-region", "", "Region of the S3 bucket")
	cmd.Flags().BoolVar(&opts.compile, "compile", false, "Run forge build before generating")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "Routers generated in parallel (default: one per CPU)")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file")

	cmd.MarkFlagsMutuallyExclusive("toml", "name")

	return cmd
}

// applyGenOverrides applies command-line flags over cannon.json.
func applyGenOverrides(cmd *cobra.Command, cfg *config.Config, opts genRouterOptions) error {
	if opts.variant != "" {
		cfg.Router.Variant = opts.variant
	}
	if opts.deployer != "" {
		cfg.Router.Deployer = opts.deployer
	}
	if opts.salt != "" {
		cfg.Router.Salt = opts.salt
	}
	if cmd.Flags().Changed("width") {
		cfg.Router.MaxLeafWidth = opts.width
	}
	if opts.output != "" {
		cfg.Paths.Output = absPath(opts.output)
	}
	if opts.s3Bucket != "" {
		cfg.Output.S3.Bucket = opts.s3Bucket
	}
	if opts.s3Prefix != "" {
		cfg.Output.S3.Prefix = opts.s3Prefix
	}
	if opts.s3Region != "" {
		cfg.Output.S3.Region = opts.s3Region
	}
	if opts.compile {
		cfg.Router.Compile = true
	}
	if opts.concurrency > 0 {
		cfg.Router.Concurrency = opts.concurrency
	}
	return cfg.Validate()
}

// genRequests builds the batch from either the TOML file or the name and
// positional modules.
func genRequests(cfg *config.Config, opts genRouterOptions) ([]router.Request, error) {
	if opts.toml != "" {
		if len(opts.modules) > 0 {
			return nil, errors.New("E161").
				WithDetail("--toml cannot be combined with positional modules").
				WithExample("cannon gen router --toml routers.toml")
		}
		defs, err := batch.Load(projectPath(cfg, opts.toml))
		if err != nil {
			return nil, err
		}
		reqs := make([]router.Request, len(defs))
		for i, def := range defs {
			reqs[i] = def.Request()
		}
		return reqs, nil
	}

	if opts.name == "" {
		return nil, errors.New("E161").
			WithDetail("a router name is required").
			WithExample("cannon gen router --name CoreRouter TokenModule OwnerModule")
	}
	if len(opts.modules) == 0 {
		return nil, errors.New("E161").
			WithDetail("at least one module is required").
			WithExample("cannon gen router --name " + opts.name + " TokenModule OwnerModule")
	}

	return []router.Request{{Name: opts.name, Modules: opts.modules}}, nil
}

func runGenRouter(ctx context.Context, cfg *config.Config, reqs []router.Request, opts genRouterOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	builder, _, err := build.NewFromConfig(ctx, cfg, build.Options{
		Logger:     slog.Default(),
		Metrics:    m,
		OnProgress: func(step string) { info("%s", step) },
	})
	if err != nil {
		return err
	}

	result, buildErr := builder.Build(ctx, reqs)

	if opts.metricsFile != "" {
		if err := m.WriteTextfile(absPath(opts.metricsFile)); err != nil {
			warn("Could not write metrics: %v", err)
		}
	}
	if buildErr != nil {
		return buildErr
	}

	for _, r := range result.Routers {
		for i, out := range r.Outputs {
			switch {
			case i > 0:
				info("Uploaded %s to %s", r.Document.Name, out.Location)
			case out.Unchanged:
				info("Router file unchanged: %s", out.Location)
			default:
				success("Generated router file: %s", out.Location)
			}
		}
		info("%s: %d selectors, %d modules, depth %d", r.Document.Name, r.Document.Selectors, len(r.Document.Modules), r.Document.Depth)
	}

	return nil
}

// projectPath resolves a relative path against the project directory.
func projectPath(cfg *config.Config, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(cfg.Dir(), path)
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
