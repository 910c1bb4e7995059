package provision

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
)

// EnsureRole creates the instance role with the given trust policy.
// IAM roles are eventually consistent; a role created moments ago may
// not be attachable immediately.
func (r *Runner) EnsureRole(ctx context.Context, name, trustDoc string) Outcome {
	err := r.call(ctx, func() error {
		_, err := r.IAM.CreateRole(ctx, &iam.CreateRoleInput{
			RoleName:                 aws.String(name),
			AssumeRolePolicyDocument: aws.String(trustDoc),
		})
		return err
	})
	return classify(err, "EntityAlreadyExists")
}

// AttachInlinePolicy puts the inline permission document on the role.
// PutRolePolicy overwrites, so repeat runs converge on the same
// document.
func (r *Runner) AttachInlinePolicy(ctx context.Context, role, policyName, doc string) Outcome {
	err := r.call(ctx, func() error {
		_, err := r.IAM.PutRolePolicy(ctx, &iam.PutRolePolicyInput{
			RoleName:       aws.String(role),
			PolicyName:     aws.String(policyName),
			PolicyDocument: aws.String(doc),
		})
		return err
	})
	return classify(err)
}

// EnsureInstanceProfile creates the instance profile the launch
// template references by name.
func (r *Runner) EnsureInstanceProfile(ctx context.Context, name string) Outcome {
	err := r.call(ctx, func() error {
		_, err := r.IAM.CreateInstanceProfile(ctx, &iam.CreateInstanceProfileInput{
			InstanceProfileName: aws.String(name),
		})
		return err
	})
	return classify(err, "EntityAlreadyExists")
}

// LinkRoleToProfile adds the role to the instance profile, tolerating
// the role already being linked (profiles hold at most one role, so a
// re-link surfaces as LimitExceeded).
func (r *Runner) LinkRoleToProfile(ctx context.Context, profile, role string) Outcome {
	err := r.call(ctx, func() error {
		_, err := r.IAM.AddRoleToInstanceProfile(ctx, &iam.AddRoleToInstanceProfileInput{
			InstanceProfileName: aws.String(profile),
			RoleName:            aws.String(role),
		})
		return err
	})
	return classify(err, "EntityAlreadyExists", "LimitExceeded")
}

// EnsurePolicy creates the standalone monitoring policy and returns
// its ARN. When creation fails the ARN is recovered by listing local
// policies and matching on name, so the caller always gets a usable
// ARN or a hard error.
func (r *Runner) EnsurePolicy(ctx context.Context, name, doc string) (string, Outcome) {
	var created *iam.CreatePolicyOutput
	err := r.call(ctx, func() error {
		var err error
		created, err = r.IAM.CreatePolicy(ctx, &iam.CreatePolicyInput{
			PolicyName:     aws.String(name),
			PolicyDocument: aws.String(doc),
		})
		return err
	})
	if err == nil {
		return aws.ToString(created.Policy.Arn), Outcome{Status: Created}
	}

	arn, lookupErr := r.lookupPolicyARN(ctx, name)
	if lookupErr != nil || arn == "" {
		return "", Outcome{Status: Failed, Err: err}
	}
	return arn, Outcome{Status: AlreadyExists, Err: err}
}

func (r *Runner) lookupPolicyARN(ctx context.Context, name string) (string, error) {
	input := &iam.ListPoliciesInput{
		Scope: iamtypes.PolicyScopeTypeLocal,
	}
	for {
		resp, err := r.IAM.ListPolicies(ctx, input)
		if err != nil {
			return "", fmt.Errorf("failed to list policies: %w", err)
		}
		for _, p := range resp.Policies {
			if aws.ToString(p.PolicyName) == name {
				return aws.ToString(p.Arn), nil
			}
		}
		if !resp.IsTruncated || resp.Marker == nil {
			return "", nil
		}
		input.Marker = resp.Marker
	}
}
