// Package main provides the clipwin command-line tool: differential
// enrichment testing over sliding genomic windows and extraction of
// the resulting binding regions.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	verbose bool
	logger  *zap.Logger
)

func main() {
	// Config must be loaded before commands register their flags, so
	// file-configured values can serve as flag defaults.
	initConfig()

	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "clipwin",
		Short: "Differential enrichment testing over sliding genomic windows",
		Long: `clipwin tests CLIP-seq sliding windows for enrichment against a
control, corrects each window's p-value for the windows overlapping it,
applies a global FDR, and merges significant windows into binding regions.`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initLogger()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				logger.Sync()
			}
		},
	}

	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")

	root.AddCommand(newTestCmd())
	root.AddCommand(newRegionsCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newConfigCmd())

	return root
}

// initConfig wires viper to ~/.clipwin.yaml and CLIPWIN_* environment
// variables. A missing config file is fine; a malformed one is not.
func initConfig() {
	viper.SetConfigName(".clipwin")
	viper.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("clipwin")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			fmt.Fprintf(os.Stderr, "Warning: could not read config: %v\n", err)
		}
	}
}

func initLogger() error {
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.DisableStacktrace = true
		logger, err = cfg.Build()
	}
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	return nil
}
