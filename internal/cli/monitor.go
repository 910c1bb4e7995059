package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cloudlog-io/cloudlog/internal/config"
	"github.com/cloudlog-io/cloudlog/internal/monitor"
	"github.com/cloudlog-io/cloudlog/internal/provision"
)

var (
	monitorBucket string
	monitorPrefix string
	monitorGroup  string
	monitorRegion string
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Analyze recent logs and CPU, then adjust capacity",
	Long: `Runs one monitoring cycle: scans the most recent log files in the
bucket, reads the group's CPU utilization from CloudWatch, and nudges
the desired capacity up or down within the group's limits.`,
	RunE: runMonitor,
}

func init() {
	monitorCmd.Flags().StringVar(&monitorBucket, "bucket", "", "S3 bucket holding the logs (required)")
	monitorCmd.Flags().StringVar(&monitorPrefix, "prefix", config.DefaultSetup().LogPrefix, "Key prefix for log objects")
	monitorCmd.Flags().StringVar(&monitorGroup, "group", "", "Auto Scaling Group to manage (required)")
	monitorCmd.Flags().StringVar(&monitorRegion, "region", config.DefaultRegion, "AWS region")
	monitorCmd.MarkFlagRequired("bucket")
	monitorCmd.MarkFlagRequired("group")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	clients, err := provision.NewClients(ctx, monitorRegion)
	if err != nil {
		return err
	}

	m := &monitor.Monitor{
		S3:         clients.S3,
		CW:         clients.CW,
		ASG:        clients.ASG,
		Bucket:     monitorBucket,
		Prefix:     monitorPrefix,
		Group:      monitorGroup,
		Thresholds: config.DefaultThresholds(),
		Out:        os.Stdout,
	}
	if _, err := m.Run(ctx); err != nil {
		return fmt.Errorf("monitor cycle: %w", err)
	}
	return nil
}
