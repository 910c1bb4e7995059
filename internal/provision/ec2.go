package provision

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// bootstrapScript is the user data baked into the launch template:
// refresh packages, install the monitoring agent and the runtime the
// pipeline tools need, and leave a marker line for verification.
const bootstrapScript = `#!/bin/bash
yum update -y
yum install -y amazon-cloudwatch-agent python3
echo "cloudlog instance bootstrapped at $(date)" >> /var/log/cloudlog-bootstrap.log
`

// BuildBootstrapScript returns the instance bootstrap script.
func BuildBootstrapScript() string {
	return bootstrapScript
}

// EncodeUserData base64-encodes a script for the launch template's
// user-data field (standard encoding, no line breaks).
func EncodeUserData(script string) string {
	return base64.StdEncoding.EncodeToString([]byte(script))
}

// ResolveLatestImage returns the id of the most recent available image
// owned by owner whose name matches nameFilter. The result is resolved
// fresh on every run, never cached.
func (r *Runner) ResolveLatestImage(ctx context.Context, owner, nameFilter string) (string, error) {
	var resp *ec2.DescribeImagesOutput
	err := r.call(ctx, func() error {
		var err error
		resp, err = r.EC2.DescribeImages(ctx, &ec2.DescribeImagesInput{
			Owners: []string{owner},
			Filters: []ec2types.Filter{
				{Name: aws.String("name"), Values: []string{nameFilter}},
				{Name: aws.String("state"), Values: []string{"available"}},
			},
		})
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to describe images: %w", err)
	}
	if len(resp.Images) == 0 {
		return "", fmt.Errorf("no image found matching %q", nameFilter)
	}

	// Creation dates are RFC3339, so lexical comparison orders them.
	latest := resp.Images[0]
	for _, img := range resp.Images[1:] {
		if aws.ToString(img.CreationDate) > aws.ToString(latest.CreationDate) {
			latest = img
		}
	}
	return aws.ToString(latest.ImageId), nil
}

// CreateLaunchTemplate submits the launch template definition with the
// fixed instance type from config.
func (r *Runner) CreateLaunchTemplate(ctx context.Context, name, imageID, keyPair, securityGroup, instanceProfile, userData string) Outcome {
	data := &ec2types.RequestLaunchTemplateData{
		ImageId:      aws.String(imageID),
		InstanceType: ec2types.InstanceType(r.Config.InstanceType),
		UserData:     aws.String(userData),
		IamInstanceProfile: &ec2types.LaunchTemplateIamInstanceProfileSpecificationRequest{
			Name: aws.String(instanceProfile),
		},
	}
	if keyPair != "" {
		data.KeyName = aws.String(keyPair)
	}
	if securityGroup != "" {
		data.SecurityGroupIds = []string{securityGroup}
	}

	err := r.call(ctx, func() error {
		_, err := r.EC2.CreateLaunchTemplate(ctx, &ec2.CreateLaunchTemplateInput{
			LaunchTemplateName: aws.String(name),
			LaunchTemplateData: data,
		})
		return err
	})
	return classify(err, "InvalidLaunchTemplateName.AlreadyExistsException")
}

// ResolveSubnets returns the first count subnet ids the provider
// lists, with no AZ, capacity, or tag filtering.
func (r *Runner) ResolveSubnets(ctx context.Context, count int) ([]string, error) {
	var resp *ec2.DescribeSubnetsOutput
	err := r.call(ctx, func() error {
		var err error
		resp, err = r.EC2.DescribeSubnets(ctx, &ec2.DescribeSubnetsInput{})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe subnets: %w", err)
	}
	if len(resp.Subnets) == 0 {
		return nil, fmt.Errorf("no subnets available")
	}

	ids := make([]string, 0, count)
	for _, sn := range resp.Subnets {
		ids = append(ids, aws.ToString(sn.SubnetId))
		if len(ids) == count {
			break
		}
	}
	return ids, nil
}
