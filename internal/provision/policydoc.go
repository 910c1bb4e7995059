package provision

import "encoding/json"

// policyDocument is the generic IAM policy JSON shape. Documents are
// built in memory and serialized only at the API call boundary; no
// temp files are written.
type policyDocument struct {
	Version   string            `json:"Version"`
	Statement []policyStatement `json:"Statement"`
}

type policyStatement struct {
	Effect    string            `json:"Effect"`
	Principal map[string]string `json:"Principal,omitempty"`
	Action    any               `json:"Action"`
	Resource  any               `json:"Resource,omitempty"`
}

const policyVersion = "2012-10-17"

func (d policyDocument) JSON() string {
	b, _ := json.Marshal(d)
	return string(b)
}

// TrustPolicyDocument grants EC2 permission to assume the instance
// role.
func TrustPolicyDocument() string {
	return policyDocument{
		Version: policyVersion,
		Statement: []policyStatement{
			{
				Effect:    "Allow",
				Principal: map[string]string{"Service": "ec2.amazonaws.com"},
				Action:    "sts:AssumeRole",
			},
		},
	}.JSON()
}

// InstancePolicyDocument is the inline permission document attached to
// the instance role. The wildcard resource scope mirrors the bootstrap
// procedure; least-privilege scoping is left to the operator.
func InstancePolicyDocument() string {
	return policyDocument{
		Version: policyVersion,
		Statement: []policyStatement{
			{
				Effect: "Allow",
				Action: []string{
					"s3:GetObject",
					"s3:PutObject",
					"s3:ListBucket",
					"cloudwatch:PutMetricData",
					"logs:CreateLogGroup",
					"logs:CreateLogStream",
					"logs:PutLogEvents",
				},
				Resource: "*",
			},
		},
	}.JSON()
}

// MonitorPolicyDocument is the standalone policy the operator attaches
// to their own identity so the monitor can read logs and metrics and
// adjust the group's desired capacity.
func MonitorPolicyDocument() string {
	return policyDocument{
		Version: policyVersion,
		Statement: []policyStatement{
			{
				Effect: "Allow",
				Action: []string{
					"s3:GetObject",
					"s3:ListBucket",
					"cloudwatch:GetMetricStatistics",
					"ec2:DescribeInstances",
					"autoscaling:DescribeAutoScalingGroups",
					"autoscaling:SetDesiredCapacity",
				},
				Resource: "*",
			},
		},
	}.JSON()
}
