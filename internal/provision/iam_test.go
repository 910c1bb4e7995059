package provision

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureRole_Tolerant(t *testing.T) {
	rec := &recorder{}
	iamFake := &fakeIAM{rec: rec}
	r := newTestRunner(&fakeS3{rec: rec}, iamFake, &fakeEC2{rec: rec}, &fakeASG{rec: rec})

	o := r.EnsureRole(context.Background(), "CloudLogInstanceRole", TrustPolicyDocument())
	assert.Equal(t, Created, o.Status)

	iamFake.roleErr = &smithy.GenericAPIError{Code: "EntityAlreadyExists", Message: "exists"}
	o = r.EnsureRole(context.Background(), "CloudLogInstanceRole", TrustPolicyDocument())
	assert.Equal(t, AlreadyExists, o.Status)
}

func TestLinkRoleToProfile_AlreadyLinked(t *testing.T) {
	rec := &recorder{}
	iamFake := &fakeIAM{rec: rec, linkErr: &smithy.GenericAPIError{Code: "LimitExceeded", Message: "one role max"}}
	r := newTestRunner(&fakeS3{rec: rec}, iamFake, &fakeEC2{rec: rec}, &fakeASG{rec: rec})

	o := r.LinkRoleToProfile(context.Background(), "CloudLogInstanceProfile", "CloudLogInstanceRole")
	assert.Equal(t, AlreadyExists, o.Status)
	assert.True(t, o.Ok())
}

func TestEnsurePolicy_Created(t *testing.T) {
	rec := &recorder{}
	iamFake := &fakeIAM{rec: rec}
	r := newTestRunner(&fakeS3{rec: rec}, iamFake, &fakeEC2{rec: rec}, &fakeASG{rec: rec})

	arn, o := r.EnsurePolicy(context.Background(), "CloudLogMonitorPolicy", MonitorPolicyDocument())
	require.True(t, o.Ok())
	assert.Equal(t, Created, o.Status)
	assert.Equal(t, "arn:aws:iam::123456789012:policy/CloudLogMonitorPolicy", arn)
	assert.Equal(t, []string{"CreatePolicy"}, rec.calls)
}

func TestEnsurePolicy_DuplicateFallsBackToLookup(t *testing.T) {
	rec := &recorder{}
	iamFake := &fakeIAM{
		rec:       rec,
		policyErr: &smithy.GenericAPIError{Code: "EntityAlreadyExists", Message: "duplicate"},
		policies: []iamtypes.Policy{
			{PolicyName: aws.String("SomeOtherPolicy"), Arn: aws.String("arn:aws:iam::123456789012:policy/SomeOtherPolicy")},
			{PolicyName: aws.String("CloudLogMonitorPolicy"), Arn: aws.String("arn:aws:iam::123456789012:policy/CloudLogMonitorPolicy")},
		},
	}
	r := newTestRunner(&fakeS3{rec: rec}, iamFake, &fakeEC2{rec: rec}, &fakeASG{rec: rec})

	arn, o := r.EnsurePolicy(context.Background(), "CloudLogMonitorPolicy", MonitorPolicyDocument())
	require.True(t, o.Ok())
	assert.Equal(t, AlreadyExists, o.Status)
	assert.NotEmpty(t, arn)
	assert.Equal(t, "arn:aws:iam::123456789012:policy/CloudLogMonitorPolicy", arn)
	assert.Equal(t, []string{"CreatePolicy", "ListPolicies"}, rec.calls)
}

func TestEnsurePolicy_LookupMiss(t *testing.T) {
	rec := &recorder{}
	iamFake := &fakeIAM{
		rec:       rec,
		policyErr: &smithy.GenericAPIError{Code: "MalformedPolicyDocument", Message: "bad"},
	}
	r := newTestRunner(&fakeS3{rec: rec}, iamFake, &fakeEC2{rec: rec}, &fakeASG{rec: rec})

	arn, o := r.EnsurePolicy(context.Background(), "CloudLogMonitorPolicy", "{}")
	assert.Equal(t, Failed, o.Status)
	assert.Empty(t, arn)
	assert.Error(t, o.Err)
}
