package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cannon-dev/cannon/internal/batch"
	"github.com/cannon-dev/cannon/internal/config"
	"github.com/cannon-dev/cannon/internal/errors"
)

func initCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create cannon.json and an example routers.toml",
		Long: `Create the default cannon.json and an example routers.toml in the
project directory. Existing files are never overwritten.

Examples:
  cannon init
  cannon init --dir ./contracts`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := flags.dir
			if dir == "" {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				dir = wd
			}
			return runInit(dir)
		},
	}

	return cmd
}

// exampleRouters is written to a new routers.toml.
var exampleRouters = []batch.Definition{
	{Name: "CoreRouter", Modules: []string{"OwnerModule", "UpgradeModule"}},
}

func runInit(dir string) error {
	configPath := filepath.Join(dir, config.ConfigFileName)
	defsPath := filepath.Join(dir, config.DefaultDefinitions)

	for _, path := range []string{configPath, defsPath} {
		if _, err := os.Stat(path); err == nil {
			return errors.New("E160").
				WithDetail(path + " already exists").
				WithSuggestion("Remove or rename it first")
		}
	}

	if !config.IsProjectRoot(dir) {
		warn("No foundry.toml in %s", dir)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.New("E150").Wrap(err)
	}

	cfg := config.New()
	if err := cfg.SaveTo(configPath); err != nil {
		return err
	}
	success("Created %s", configPath)

	data, err := batch.Marshal(exampleRouters)
	if err != nil {
		return err
	}
	if err := os.WriteFile(defsPath, data, 0644); err != nil {
		return errors.New("E150").Wrap(err).WithDetail(defsPath)
	}
	success("Created %s", defsPath)

	info("Next: list your modules in routers.toml and run 'cannon gen router --toml routers.toml'")
	return nil
}
