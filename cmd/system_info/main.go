// Package main provides the system_info CLI, which reports the hardware
// inventory of this machine as a single JSON document.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jonathan/system-info/internal/config"
	"github.com/jonathan/system-info/internal/observability"
	"github.com/jonathan/system-info/internal/probe"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	configPath string
	verbose    bool

	// Resolved before every command runs
	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "system_info",
	Short: "Report hardware inventory as JSON",
	Long: `Runs the hardware probe (lshw -json by default), embeds the image manifest
as "manifest_file" when it is readable, and prints the merged document as
indented JSON on stdout.

Run without arguments to print the document.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		resolved, err := resolveConfig()
		if err != nil {
			return err
		}
		cfg = resolved

		if logger == nil {
			logger, err = observability.NewLogger(cfg.Verbose)
			if err != nil {
				return err
			}
		}
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runCollect,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to JSON config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging and a summary on stderr")
}

// resolveConfig layers flags over environment over config file over defaults.
func resolveConfig() (config.Config, error) {
	flags := config.Config{
		Probe:      probeName,
		ProbeArgs:  probeArgs,
		Manifest:   manifestPath,
		NoManifest: noManifest,
		Timeout:    probeTimeout,
		Schema:     schemaPath,
		Output:     outputPath,
		URL:        sendURL,
		Token:      sendToken,
		DeviceID:   sendDeviceID,
		Verbose:    verbose,
	}

	merged := flags.MergeWithDefaults(config.FromEnv())

	if configPath != "" {
		fileCfg, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, err
		}
		merged = merged.MergeWithDefaults(*fileCfg)
	}

	merged = merged.MergeWithDefaults(config.Defaults())

	if err := merged.Validate(); err != nil {
		return config.Config{}, err
	}
	return merged, nil
}

// commandContext returns the command's context, or Background when the
// command was not started through Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode returns the probe's exit status when the probe failed, 1 otherwise.
func exitCode(err error) int {
	var probeErr *probe.Error
	if errors.As(err, &probeErr) && probeErr.ExitCode > 0 {
		return probeErr.ExitCode
	}
	return 1
}
