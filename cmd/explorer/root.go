package main

import (
	"fmt"
	"os"

	"github.com/brettbedarf/explorerfs"
	"github.com/brettbedarf/explorerfs/backend"
	"github.com/brettbedarf/explorerfs/config"
	"github.com/brettbedarf/explorerfs/internal/util"
	"github.com/brettbedarf/explorerfs/model"
	"github.com/brettbedarf/explorerfs/requests"
	"github.com/spf13/cobra"
)

// app holds the global flags and the explorer built from them
type app struct {
	configPath  string
	backendPath string
	root        string
	sortOrder   string
	osProfile   string
	verbose     int
	nest        bool

	explorer *model.Explorer
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "explorer",
		Short: "Browse a directory tree like a file explorer",
		Long: `explorer lists directories of a local folder or of a backend definition
(memory or http) through an in-memory explorer tree. Children are listed
lazily, sorted with the configured order and grouped by file nesting rules.

Configuration is read from --config, then EXPLORER_* environment variables
(optionally from a .env file), then command line flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "Path to a YAML or JSON config file")
	flags.StringVarP(&a.backendPath, "backend", "b", "", "Path to a YAML or JSON backend definition")
	flags.StringVarP(&a.root, "root", "r", ".", "Local directory to browse when no --backend is given")
	flags.StringVarP(&a.sortOrder, "sort", "s", "", "Sort order: default, mixed, filesFirst, type, modified, modifiedAsc, size, sizeAsc, foldersNestsFiles")
	flags.StringVar(&a.osProfile, "os", "", "Path rules to apply: linux, darwin or windows (Default current platform)")
	flags.IntVarP(&a.verbose, "verbose", "v", config.InfoVerbose, "Log verbosity level between 1 (error) and 5 (trace)")
	flags.BoolVar(&a.nest, "nest", false, "Enable file nesting")

	cmd.AddCommand(newLsCmd(a), newTreeCmd(a), newFindCmd(a), newValidateCmd(a))
	return cmd
}

// loadConfig layers the config file, the environment and changed flags
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}

	cfg := config.NewDefaultConfig()
	if a.configPath != "" {
		var err error
		if cfg, err = config.NewConfigFromFile(a.configPath); err != nil {
			return nil, err
		}
	}

	env, err := config.EnvOverride(os.LookupEnv)
	if err != nil {
		return nil, err
	}
	cfg.Merge(env)

	override := &config.ConfigOverride{}
	flags := cmd.Flags()
	if flags.Changed("verbose") {
		override.LogLvl = &a.verbose
	}
	if flags.Changed("sort") {
		override.SortOrder = &a.sortOrder
	}
	if flags.Changed("os") {
		override.OSProfile = &a.osProfile
	}
	if flags.Changed("nest") {
		override.FileNesting = &config.FileNestingOverride{Enabled: &a.nest}
	}
	cfg.Merge(override)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a *app) openBackend() (explorerfs.ListingBackend, error) {
	if a.backendPath == "" {
		return backend.NewLocal(a.root)
	}
	data, err := os.ReadFile(a.backendPath)
	if err != nil {
		return nil, err
	}
	raw, err := requests.DefinitionToJSON(data, a.backendPath)
	if err != nil {
		return nil, err
	}
	backend.RegisterBuiltins(nil)
	b, err := backend.Default().FromDefinition(raw)
	if err != nil {
		return nil, fmt.Errorf("backend %s: %w", a.backendPath, err)
	}
	return b, nil
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	util.InitializeLoggerWithWriter(cfg.LogLvl, cmd.ErrOrStderr())
	logger := util.GetLogger("main")

	b, err := a.openBackend()
	if err != nil {
		return err
	}
	a.explorer = model.New("/", b, config.NewStore(cfg))

	logger.Debug().
		Str("profile", cfg.Profile().Name).
		Str("sort", string(cfg.SortOrder)).
		Bool("nesting", cfg.FileNesting.Enabled).
		Msg("Explorer initialized")
	return nil
}
