package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jonathan/system-info/internal/collect"
	"github.com/jonathan/system-info/internal/observability"
	"github.com/jonathan/system-info/internal/schemas"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	probeName    string
	probeArgs    []string
	manifestPath string
	noManifest   bool
	probeTimeout string
	schemaPath   string
	outputPath   string
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&probeName, "probe", "", "Probe executable (default \"lshw\")")
	flags.StringArrayVar(&probeArgs, "probe-arg", nil, "Argument passed to the probe, repeatable (default [-json] with lshw)")
	flags.StringVarP(&manifestPath, "manifest", "m", "", "Manifest file embedded as manifest_file (default \"/etc/manifest.xml\")")
	flags.BoolVar(&noManifest, "no-manifest", false, "Do not embed a manifest")
	flags.StringVar(&probeTimeout, "timeout", "", "Probe timeout, e.g. 30s (default none)")
	flags.StringVar(&schemaPath, "schema", "", "JSON Schema the document must satisfy")
	rootCmd.Flags().StringVarP(&outputPath, "out", "o", "", "Write the document to a file instead of stdout")
}

func runCollect(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := collectReport(ctx)
	if err != nil {
		return err
	}

	if cfg.Output != "" {
		// Ensure output directory exists
		if err := os.MkdirAll(filepath.Dir(cfg.Output), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.WriteFile(cfg.Output, report.Output, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		logger.Info("system info written", zap.String("path", cfg.Output))
	} else if _, err := cmd.OutOrStdout().Write(report.Output); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	if cfg.Verbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintReport(report)
	}
	return nil
}

// collectReport runs the collector for the resolved config and applies the
// optional schema check.
func collectReport(ctx context.Context) (*collect.Report, error) {
	probeCmd, err := cfg.ProbeCommand()
	if err != nil {
		return nil, err
	}

	report, err := collect.New(probeCmd, cfg.ManifestPath(), logger).Collect(ctx)
	if err != nil {
		return nil, err
	}

	if cfg.Schema != "" {
		if err := schemas.ValidateDocument(cfg.Schema, report.Output); err != nil {
			var schemaLoadErr *schemas.SchemaLoadError
			if errors.As(err, &schemaLoadErr) {
				return nil, fmt.Errorf("could not load schema: %w", err)
			}
			return nil, fmt.Errorf("document does not validate against schema: %w", err)
		}
		logger.Debug("document matches schema", zap.String("schema", cfg.Schema))
	}

	return report, nil
}
