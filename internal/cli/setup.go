package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cloudlog-io/cloudlog/internal/config"
	"github.com/cloudlog-io/cloudlog/internal/prompt"
	"github.com/cloudlog-io/cloudlog/internal/provision"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Provision the log bucket, identity, launch template and scaling group",
	Long: `Collects the resource names interactively, prints the plan, and on
confirmation provisions the full footprint. Resources that already
exist are tolerated; the run never rolls anything back.`,
	RunE: runSetup,
}

// runnerFactory builds a Runner bound to live AWS clients. Split out
// so the command flow is testable without credentials.
type runnerFactory func(ctx context.Context, region string) (*provision.Runner, error)

func newLiveRunner(ctx context.Context, region string) (*provision.Runner, error) {
	clients, err := provision.NewClients(ctx, region)
	if err != nil {
		return nil, err
	}
	return &provision.Runner{
		S3:     clients.S3,
		IAM:    clients.IAM,
		EC2:    clients.EC2,
		ASG:    clients.ASG,
		Config: config.DefaultSetup(),
		Out:    os.Stdout,
		Retry:  provision.DefaultRetryPolicy(),
	}, nil
}

func runSetup(cmd *cobra.Command, args []string) error {
	return setupFlow(cmd.Context(), os.Stdin, os.Stdout, newLiveRunner)
}

func collectInputs(p *prompt.Prompter) (provision.Inputs, error) {
	var in provision.Inputs
	var err error

	if in.Bucket, err = p.String("S3 bucket name for logs"); err != nil {
		return in, err
	}
	if in.Region, err = p.StringDefault("AWS region", config.DefaultRegion); err != nil {
		return in, err
	}
	if in.GroupName, err = p.String("Auto Scaling Group name"); err != nil {
		return in, err
	}
	if in.TemplateName, err = p.String("Launch template name"); err != nil {
		return in, err
	}
	if in.KeyPair, err = p.String("EC2 key pair name"); err != nil {
		return in, err
	}
	if in.SecurityGroup, err = p.String("Security group ID"); err != nil {
		return in, err
	}
	return in, nil
}

func printPlan(out io.Writer, in provision.Inputs, cfg config.Setup) {
	fmt.Fprintln(out, "\nAbout to provision:")
	fmt.Fprintf(out, "  S3 bucket:          %s (versioned, prefix %s)\n", in.Bucket, cfg.LogPrefix)
	fmt.Fprintf(out, "  Region:             %s\n", in.Region)
	fmt.Fprintf(out, "  IAM role/profile:   %s / %s\n", cfg.RoleName, cfg.InstanceProfileName)
	fmt.Fprintf(out, "  Launch template:    %s (%s)\n", in.TemplateName, cfg.InstanceType)
	fmt.Fprintf(out, "  Auto Scaling Group: %s (min %d, max %d, desired %d)\n",
		in.GroupName, cfg.MinSize, cfg.MaxSize, cfg.DesiredCapacity)
	fmt.Fprintf(out, "  Monitoring policy:  %s\n", cfg.MonitorPolicyName)
}

func setupFlow(ctx context.Context, stdin io.Reader, stdout io.Writer, newRunner runnerFactory) error {
	p := prompt.New(stdin, stdout)

	in, err := collectInputs(p)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	printPlan(stdout, in, config.DefaultSetup())

	ok, err := p.Confirm("\nProceed with setup?")
	if err != nil {
		return fmt.Errorf("read confirmation: %w", err)
	}
	if !ok {
		return errors.New("setup cancelled")
	}

	runner, err := newRunner(ctx, in.Region)
	if err != nil {
		return err
	}
	runner.Out = stdout

	if _, err := runner.Run(ctx, in); err != nil {
		return fmt.Errorf("setup failed: %w", err)
	}
	return nil
}
