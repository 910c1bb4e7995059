package provision

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudlog-io/cloudlog/internal/config"
	"github.com/cloudlog-io/cloudlog/internal/logging"
)

// Inputs are the operator-supplied names collected before the run.
type Inputs struct {
	Bucket        string
	Region        string
	GroupName     string
	TemplateName  string
	KeyPair       string
	SecurityGroup string
}

// Summary is what the pipeline hands back for the next-steps block.
type Summary struct {
	Bucket       string
	GroupName    string
	ImageID      string
	SubnetIDs    []string
	PolicyARN    string
	PolicyStatus Status
}

// Runner executes the six provisioning stages in order. Creation
// failures degrade to warnings (the run always reaches the next
// stage); only the value-producing lookups (image, subnets, policy
// ARN) are fatal, because later stages cannot proceed without them.
// Nothing is ever rolled back.
type Runner struct {
	S3  S3API
	IAM IAMAPI
	EC2 EC2API
	ASG AutoScalingAPI

	Config config.Setup
	Out    io.Writer
	Retry  *RetryPolicy
}

func (r *Runner) call(ctx context.Context, fn func() error) error {
	return RetryTransient(ctx, r.Retry, fn)
}

// report prints the one-line outcome that forms the run transcript.
func (r *Runner) report(what string, o Outcome) {
	switch o.Status {
	case Created:
		fmt.Fprintf(r.Out, "  %s: done\n", what)
	case AlreadyExists:
		fmt.Fprintf(r.Out, "  %s: may already exist, continuing\n", what)
		logging.Warn("resource may already exist", "step", what, "error", o.Err)
	default:
		fmt.Fprintf(r.Out, "  %s: failed, continuing (%v)\n", what, o.Err)
		logging.Warn("step failed", "step", what, "error", o.Err)
	}
}

// Run executes the full bootstrap pipeline and prints the next-steps
// hand-off. The returned Summary mirrors what was printed.
func (r *Runner) Run(ctx context.Context, in Inputs) (*Summary, error) {
	sum := &Summary{Bucket: in.Bucket, GroupName: in.GroupName}

	// Stage 1: storage.
	fmt.Fprintf(r.Out, "==> Provisioning log bucket %s\n", in.Bucket)
	bucket := r.EnsureBucket(ctx, in.Bucket, in.Region)
	r.report("create bucket", bucket)
	if bucket.Ok() {
		r.report("enable versioning", r.EnableVersioning(ctx, in.Bucket))
		r.report("write "+r.Config.LogPrefix+" placeholder", r.PutLogPrefixPlaceholder(ctx, in.Bucket, r.Config.LogPrefix))
	} else {
		fmt.Fprintln(r.Out, "  skipping versioning and placeholder")
	}

	// Stage 2: identity.
	fmt.Fprintf(r.Out, "==> Provisioning instance identity %s\n", r.Config.RoleName)
	r.report("create role", r.EnsureRole(ctx, r.Config.RoleName, TrustPolicyDocument()))
	r.report("attach inline policy", r.AttachInlinePolicy(ctx, r.Config.RoleName, r.Config.InlinePolicyName, InstancePolicyDocument()))
	r.report("create instance profile", r.EnsureInstanceProfile(ctx, r.Config.InstanceProfileName))
	r.report("link role to profile", r.LinkRoleToProfile(ctx, r.Config.InstanceProfileName, r.Config.RoleName))

	// Stage 3: launch template.
	fmt.Fprintf(r.Out, "==> Provisioning launch template %s\n", in.TemplateName)
	imageID, err := r.ResolveLatestImage(ctx, r.Config.ImageOwner, r.Config.ImageNameFilter)
	if err != nil {
		return nil, fmt.Errorf("resolve machine image: %w", err)
	}
	sum.ImageID = imageID
	fmt.Fprintf(r.Out, "  resolved image: %s\n", imageID)

	userData := EncodeUserData(BuildBootstrapScript())
	r.report("create launch template", r.CreateLaunchTemplate(ctx,
		in.TemplateName, imageID, in.KeyPair, in.SecurityGroup,
		r.Config.InstanceProfileName, userData))

	// Stage 4: scaling group.
	fmt.Fprintf(r.Out, "==> Provisioning Auto Scaling Group %s\n", in.GroupName)
	subnets, err := r.ResolveSubnets(ctx, r.Config.SubnetCount)
	if err != nil {
		return nil, fmt.Errorf("resolve subnets: %w", err)
	}
	sum.SubnetIDs = subnets
	fmt.Fprintf(r.Out, "  using subnets: %v\n", subnets)
	r.report("create scaling group", r.CreateScalingGroup(ctx, in.GroupName, in.TemplateName, subnets))

	// Stage 5: monitoring policy.
	fmt.Fprintf(r.Out, "==> Publishing monitoring policy %s\n", r.Config.MonitorPolicyName)
	arn, policy := r.EnsurePolicy(ctx, r.Config.MonitorPolicyName, MonitorPolicyDocument())
	if !policy.Ok() {
		return nil, fmt.Errorf("ensure monitoring policy: %w", policy.Err)
	}
	sum.PolicyARN = arn
	sum.PolicyStatus = policy.Status
	r.report("create or look up policy", policy)
	fmt.Fprintf(r.Out, "  policy ARN: %s\n", arn)

	r.printNextSteps(sum, in)
	return sum, nil
}

func (r *Runner) printNextSteps(sum *Summary, in Inputs) {
	fmt.Fprintf(r.Out, "\nSetup complete!\n\nNext steps:\n")
	fmt.Fprintf(r.Out, "  1. Attach the monitoring policy to your IAM user:\n")
	fmt.Fprintf(r.Out, "       aws iam attach-user-policy --user-name <your-user> --policy-arn %s\n", sum.PolicyARN)
	fmt.Fprintf(r.Out, "  2. Generate sample logs:\n")
	fmt.Fprintf(r.Out, "       cloudlog generate --bucket %s\n", in.Bucket)
	fmt.Fprintf(r.Out, "  3. Run a monitoring cycle:\n")
	fmt.Fprintf(r.Out, "       cloudlog monitor --bucket %s --group %s\n", in.Bucket, in.GroupName)
}
