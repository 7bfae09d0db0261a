package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cannon-dev/cannon/internal/build"
	"github.com/cannon-dev/cannon/internal/config"
	"github.com/cannon-dev/cannon/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalFlags are shared by every command.
type globalFlags struct {
	dir     string
	verbose bool
	noColor bool
	json    bool
}

// jsonErrors makes printError emit one JSON object per error.
var jsonErrors bool

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "cannon",
		Short: "Generate Solidity routers for modular contracts",
		Long: `Cannon generates router contracts that forward calls to module
contracts by function selector.

A router merges the ABIs of its modules, sorts every selector and
dispatches through a balanced binary search of switch blocks, so the
lookup cost stays logarithmic in the number of functions.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if flags.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			if flags.noColor {
				errors.DisableColors()
			}
			jsonErrors = flags.json
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.dir, "dir", "C", "", "Project directory (default: current directory)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "Disable colored error output")
	rootCmd.PersistentFlags().BoolVar(&flags.json, "json", false, "Print errors as JSON on stderr")

	rootCmd.AddCommand(
		genCmd(flags),
		devCmd(flags),
		initCmd(flags),
		explainCmd(),
		versionCmd(),
	)

	return rootCmd
}

// loadConfig loads the configuration of the project containing dir.
func loadConfig(dir string) (*config.Config, error) {
	if dir == "" {
		return config.LoadFromWorkingDir()
	}
	root, err := config.FindProjectRoot(dir)
	if err != nil {
		return nil, err
	}
	return config.Load(root)
}

// printError prints err, naming the failed router of a batch.
func printError(err error) {
	if jsonErrors {
		fmt.Fprintln(os.Stderr, errorJSON(err))
		return
	}

	var rerr *build.RouterError
	if stderrors.As(err, &rerr) {
		errorMsg("Router %s failed", rerr.Router)
	}
	errors.PrintError(err)
}

type jsonFailure struct {
	Router string          `json:"router,omitempty"`
	Error  json.RawMessage `json:"error"`
}

// errorJSON renders err as a single line JSON object. Errors without a
// code are reported as invalid arguments, which is what cobra returns.
func errorJSON(err error) string {
	out := jsonFailure{Error: json.RawMessage(errors.FromError(err, "E161").FormatJSON())}

	var rerr *build.RouterError
	if stderrors.As(err, &rerr) {
		out.Router = rerr.Router
	}

	data, merr := json.Marshal(out)
	if merr != nil {
		return string(out.Error)
	}
	return string(data)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}
