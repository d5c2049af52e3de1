// Package collect runs the probe and reads the manifest, then assembles the
// system info document.
package collect

import (
	"context"
	"fmt"

	"github.com/jonathan/system-info/internal/assembly"
	"github.com/jonathan/system-info/internal/manifest"
	"github.com/jonathan/system-info/internal/probe"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Collector gathers the probe output and the optional manifest.
type Collector struct {
	Probe        probe.Command
	ManifestPath string // empty disables the manifest
	Logger       *zap.Logger
}

// Report is the outcome of one collection.
type Report struct {
	Command          string
	Output           []byte
	Document         *assembly.Document
	ManifestIncluded bool
	Probe            *probe.Result
}

// New creates a Collector. A nil logger discards log output.
func New(p probe.Command, manifestPath string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{Probe: p, ManifestPath: manifestPath, Logger: logger}
}

// Collect runs the probe and the manifest read concurrently and merges the results.
func (c *Collector) Collect(ctx context.Context) (*Report, error) {
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		probeResult  *probe.Result
		manifestText *string
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Debug("running probe", zap.String("command", c.Probe.String()))
		result, err := probe.Run(gctx, c.Probe)
		if err != nil {
			return fmt.Errorf("failed to run probe: %w", err)
		}
		if len(result.Stderr) > 0 {
			logger.Warn("probe wrote to stderr", zap.ByteString("stderr", result.Stderr))
		}
		logger.Debug("probe finished",
			zap.Int("bytes", len(result.Stdout)),
			zap.Duration("duration", result.Duration))
		probeResult = result
		return nil
	})

	g.Go(func() error {
		if c.ManifestPath == "" {
			logger.Debug("manifest disabled")
			return nil
		}
		text, err := manifest.Load(c.ManifestPath)
		if err != nil {
			logger.Debug("manifest absent", zap.Error(err))
			return nil
		}
		logger.Debug("manifest loaded",
			zap.String("path", c.ManifestPath),
			zap.Int("bytes", len(text)))
		manifestText = &text
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	doc, err := assembly.Build(probeResult.Stdout, manifestText)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble document: %w", err)
	}

	output, err := doc.Pretty()
	if err != nil {
		return nil, fmt.Errorf("failed to render document: %w", err)
	}

	logger.Debug("document assembled",
		zap.Int("keys", doc.Len()),
		zap.Bool("manifest", manifestText != nil))

	return &Report{
		Command:          c.Probe.String(),
		Output:           output,
		Document:         doc,
		ManifestIncluded: manifestText != nil,
		Probe:            probeResult,
	}, nil
}
