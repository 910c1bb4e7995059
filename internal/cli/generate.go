package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cloudlog-io/cloudlog/internal/config"
	"github.com/cloudlog-io/cloudlog/internal/generate"
	"github.com/cloudlog-io/cloudlog/internal/provision"
)

var (
	generateBucket  string
	generatePrefix  string
	generateRegion  string
	generateFiles   int
	generateEntries int
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Upload synthetic application logs to the bucket",
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateBucket, "bucket", "", "S3 bucket to upload logs to (required)")
	generateCmd.Flags().StringVar(&generatePrefix, "prefix", config.DefaultSetup().LogPrefix, "Key prefix for log objects")
	generateCmd.Flags().StringVar(&generateRegion, "region", config.DefaultRegion, "AWS region")
	generateCmd.Flags().IntVar(&generateFiles, "files", 3, "Number of log files to generate")
	generateCmd.Flags().IntVar(&generateEntries, "entries", 150, "Entries per log file")
	generateCmd.MarkFlagRequired("bucket")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	clients, err := provision.NewClients(ctx, generateRegion)
	if err != nil {
		return err
	}

	gen := generate.New(clients.S3, generateBucket, generatePrefix, os.Stdout)
	if _, err := gen.Run(ctx, generateFiles, generateEntries); err != nil {
		return fmt.Errorf("generate logs: %w", err)
	}
	return nil
}
