package provision

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	astypes "github.com/aws/aws-sdk-go-v2/service/autoscaling/types"
)

// CreateScalingGroup creates the Auto Scaling Group from the launch
// template, with the capacity band and health-check policy from
// config.
func (r *Runner) CreateScalingGroup(ctx context.Context, name, templateName string, subnetIDs []string) Outcome {
	err := r.call(ctx, func() error {
		_, err := r.ASG.CreateAutoScalingGroup(ctx, &autoscaling.CreateAutoScalingGroupInput{
			AutoScalingGroupName: aws.String(name),
			MinSize:              aws.Int32(r.Config.MinSize),
			MaxSize:              aws.Int32(r.Config.MaxSize),
			DesiredCapacity:      aws.Int32(r.Config.DesiredCapacity),
			HealthCheckType:      aws.String(r.Config.HealthCheckType),
			HealthCheckGracePeriod: aws.Int32(r.Config.HealthCheckGracePeriod),
			VPCZoneIdentifier:    aws.String(strings.Join(subnetIDs, ",")),
			LaunchTemplate: &astypes.LaunchTemplateSpecification{
				LaunchTemplateName: aws.String(templateName),
				Version:            aws.String("$Latest"),
			},
		})
		return err
	})
	return classify(err, "AlreadyExists")
}
