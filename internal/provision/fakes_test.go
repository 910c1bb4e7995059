package provision

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// recorder collects provider call names so tests can assert on the
// exact invocation order.
type recorder struct {
	calls []string
}

func (r *recorder) add(name string) {
	r.calls = append(r.calls, name)
}

type fakeS3 struct {
	rec *recorder

	createErr     error
	versioningErr error
	putErr        error
}

func (f *fakeS3) CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.rec.add("CreateBucket")
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &s3.CreateBucketOutput{}, nil
}

func (f *fakeS3) PutBucketVersioning(ctx context.Context, params *s3.PutBucketVersioningInput, optFns ...func(*s3.Options)) (*s3.PutBucketVersioningOutput, error) {
	f.rec.add("PutBucketVersioning")
	if f.versioningErr != nil {
		return nil, f.versioningErr
	}
	return &s3.PutBucketVersioningOutput{}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.rec.add("PutObject")
	if f.putErr != nil {
		return nil, f.putErr
	}
	return &s3.PutObjectOutput{}, nil
}

type fakeIAM struct {
	rec *recorder

	roleErr    error
	profileErr error
	linkErr    error
	policyErr  error
	policies   []iamtypes.Policy
	listErr    error
}

func (f *fakeIAM) CreateRole(ctx context.Context, params *iam.CreateRoleInput, optFns ...func(*iam.Options)) (*iam.CreateRoleOutput, error) {
	f.rec.add("CreateRole")
	if f.roleErr != nil {
		return nil, f.roleErr
	}
	return &iam.CreateRoleOutput{
		Role: &iamtypes.Role{
			RoleName: params.RoleName,
			Arn:      aws.String("arn:aws:iam::123456789012:role/" + aws.ToString(params.RoleName)),
		},
	}, nil
}

func (f *fakeIAM) PutRolePolicy(ctx context.Context, params *iam.PutRolePolicyInput, optFns ...func(*iam.Options)) (*iam.PutRolePolicyOutput, error) {
	f.rec.add("PutRolePolicy")
	return &iam.PutRolePolicyOutput{}, nil
}

func (f *fakeIAM) CreateInstanceProfile(ctx context.Context, params *iam.CreateInstanceProfileInput, optFns ...func(*iam.Options)) (*iam.CreateInstanceProfileOutput, error) {
	f.rec.add("CreateInstanceProfile")
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return &iam.CreateInstanceProfileOutput{}, nil
}

func (f *fakeIAM) AddRoleToInstanceProfile(ctx context.Context, params *iam.AddRoleToInstanceProfileInput, optFns ...func(*iam.Options)) (*iam.AddRoleToInstanceProfileOutput, error) {
	f.rec.add("AddRoleToInstanceProfile")
	if f.linkErr != nil {
		return nil, f.linkErr
	}
	return &iam.AddRoleToInstanceProfileOutput{}, nil
}

func (f *fakeIAM) CreatePolicy(ctx context.Context, params *iam.CreatePolicyInput, optFns ...func(*iam.Options)) (*iam.CreatePolicyOutput, error) {
	f.rec.add("CreatePolicy")
	if f.policyErr != nil {
		return nil, f.policyErr
	}
	return &iam.CreatePolicyOutput{
		Policy: &iamtypes.Policy{
			PolicyName: params.PolicyName,
			Arn:        aws.String("arn:aws:iam::123456789012:policy/" + aws.ToString(params.PolicyName)),
		},
	}, nil
}

func (f *fakeIAM) ListPolicies(ctx context.Context, params *iam.ListPoliciesInput, optFns ...func(*iam.Options)) (*iam.ListPoliciesOutput, error) {
	f.rec.add("ListPolicies")
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &iam.ListPoliciesOutput{Policies: f.policies}, nil
}

type fakeEC2 struct {
	rec *recorder

	images      []ec2types.Image
	imagesErr   error
	subnets     []ec2types.Subnet
	subnetsErr  error
	templateErr error
}

func (f *fakeEC2) DescribeImages(ctx context.Context, params *ec2.DescribeImagesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeImagesOutput, error) {
	f.rec.add("DescribeImages")
	if f.imagesErr != nil {
		return nil, f.imagesErr
	}
	return &ec2.DescribeImagesOutput{Images: f.images}, nil
}

func (f *fakeEC2) CreateLaunchTemplate(ctx context.Context, params *ec2.CreateLaunchTemplateInput, optFns ...func(*ec2.Options)) (*ec2.CreateLaunchTemplateOutput, error) {
	f.rec.add("CreateLaunchTemplate")
	if f.templateErr != nil {
		return nil, f.templateErr
	}
	return &ec2.CreateLaunchTemplateOutput{}, nil
}

func (f *fakeEC2) DescribeSubnets(ctx context.Context, params *ec2.DescribeSubnetsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSubnetsOutput, error) {
	f.rec.add("DescribeSubnets")
	if f.subnetsErr != nil {
		return nil, f.subnetsErr
	}
	return &ec2.DescribeSubnetsOutput{Subnets: f.subnets}, nil
}

type fakeASG struct {
	rec *recorder

	createErr error
}

func (f *fakeASG) CreateAutoScalingGroup(ctx context.Context, params *autoscaling.CreateAutoScalingGroupInput, optFns ...func(*autoscaling.Options)) (*autoscaling.CreateAutoScalingGroupOutput, error) {
	f.rec.add("CreateAutoScalingGroup")
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &autoscaling.CreateAutoScalingGroupOutput{}, nil
}

func amazonLinuxImages() []ec2types.Image {
	return []ec2types.Image{
		{ImageId: aws.String("ami-old"), CreationDate: aws.String("2021-01-01T00:00:00.000Z")},
		{ImageId: aws.String("ami-latest"), CreationDate: aws.String("2023-06-01T00:00:00.000Z")},
		{ImageId: aws.String("ami-mid"), CreationDate: aws.String("2022-12-01T00:00:00.000Z")},
	}
}

func twoSubnets() []ec2types.Subnet {
	return []ec2types.Subnet{
		{SubnetId: aws.String("subnet-a")},
		{SubnetId: aws.String("subnet-b")},
		{SubnetId: aws.String("subnet-c")},
	}
}
