// Package cli wires the cloudlog commands: interactive infrastructure
// setup, sample log generation, and the monitoring cycle.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/cloudlog-io/cloudlog/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "cloudlog",
	Short: "Bootstrap and monitor a log-shipping fleet on AWS",
	Long: `Cloudlog provisions the AWS footprint for a self-monitoring
application fleet and exercises it end to end:

  setup     create the log bucket, instance identity, launch template,
            Auto Scaling Group and monitoring policy
  generate  upload synthetic application logs to the bucket
  monitor   analyze recent logs and CPU, then adjust capacity`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.InitFromEnv()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(versionCmd)
}
