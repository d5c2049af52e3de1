package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/jonathan/system-info/internal/observability"
	"github.com/jonathan/system-info/internal/upload"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Collect system info and upload it to the server",
	Long:  "Collects the same document the root command prints and PUTs it to --url, authenticating with --token and tagging it with --device-id.",
	Args:  cobra.NoArgs,
	RunE:  runSend,
}

var (
	sendURL      string
	sendToken    string
	sendDeviceID string
)

func init() {
	sendCmd.Flags().StringVar(&sendURL, "url", "", "Endpoint the document is PUT to (or SYSTEM_INFO_URL)")
	sendCmd.Flags().StringVar(&sendToken, "token", "", "Bearer token (or SYSTEM_INFO_TOKEN)")
	sendCmd.Flags().StringVar(&sendDeviceID, "device-id", "", "Device UUID (or SYSTEM_INFO_DEVICE_ID)")

	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, _ []string) error {
	if cfg.URL == "" {
		return fmt.Errorf("upload URL is required (set --url or SYSTEM_INFO_URL)")
	}

	var deviceID uuid.UUID
	if cfg.DeviceID != "" {
		parsed, err := uuid.Parse(cfg.DeviceID)
		if err != nil {
			return fmt.Errorf("invalid device-id: %w", err)
		}
		deviceID = parsed
	}

	// upload.Send checks the token again; checking here fails before the probe runs
	if err := upload.CheckToken(cfg.Token); err != nil {
		return fmt.Errorf("invalid token: %w", err)
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := collectReport(ctx)
	if err != nil {
		return err
	}

	result, err := upload.Send(ctx, report.Output, &upload.Options{
		URL:      cfg.URL,
		Token:    cfg.Token,
		DeviceID: deviceID,
	})
	if err != nil {
		return fmt.Errorf("failed to send system info: %w", err)
	}

	logger.Info("system info sent",
		zap.String("url", cfg.URL),
		zap.Int("status", result.StatusCode),
		zap.Int("bytes", len(report.Output)))

	if cfg.Verbose {
		printer := observability.NewPrinter(cmd.ErrOrStderr())
		printer.PrintReport(report)
		printer.PrintUpload(cfg.URL, result)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Successfully sent system info (status %d)\n", result.StatusCode)
	return nil
}
