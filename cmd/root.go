// Package cmd provides the command-line interface for stencil.
//
// Configuration precedence, highest first:
//  1. Command-line flags (--templates, --log-level, ...)
//  2. STENCIL_-prefixed environment variables (STENCIL_TEMPLATES_ROOT, ...)
//  3. The project file .stencil.yml (or --config)
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/stencilkit/stencil/internal/config"
	"github.com/stencilkit/stencil/internal/logging"
	"github.com/stencilkit/stencil/internal/renderer"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stencil",
	Short: "A template scaffolding engine with inheritance and provenance",
	Long: `Stencil scaffolds code and documents from multi-tier template hierarchies.
It resolves template inheritance chains, classifies which variables a caller
must supply, renders the composed template, and stamps every artifact with a
machine-parsable provenance header.

Quick Start:
  stencil init                    Initialize a template root with starter tiers
  stencil list                    List discovered templates
  stencil inspect dto_python.py.j2   Show a template's variable contract
  stencil generate dto_python.py.j2 -o out/order.py --var event_name=order_created
  stencil check out/              Validate provenance headers of generated files

Command Aliases (for faster typing):
  generate (g), list (l), inspect (i), check (c)`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .stencil.yml)")
	rootCmd.PersistentFlags().String("templates", "", "template root directory")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text, json)")

	mustBind("templates.root", rootCmd.PersistentFlags().Lookup("templates"))
	mustBind("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	mustBind("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func mustBind(key string, flag *pflag.Flag) {
	cobra.CheckErr(viper.BindPFlag(key, flag))
}

func initConfig() {
	cobra.CheckErr(config.Init(cfgFile))
}

// loadConfig is the common entry point of every subcommand.
func loadConfig() (*config.Config, logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger := logging.NewLogger(&logging.Config{
		Level:  logging.ParseLevel(cfg.Logging.Level),
		Format: cfg.Logging.Format,
	})

	return cfg, logger, nil
}

// newEngine builds the rendering engine over the configured template root.
func newEngine(cfg *config.Config, logger logging.Logger) (*renderer.Engine, error) {
	return renderer.New(cfg.Templates.Root, renderer.WithLogger(logger))
}
