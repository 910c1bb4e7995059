package provision

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrustPolicyDocument(t *testing.T) {
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(TrustPolicyDocument()), &doc))

	assert.Equal(t, "2012-10-17", doc["Version"])
	statements := doc["Statement"].([]any)
	require.Len(t, statements, 1)

	stmt := statements[0].(map[string]any)
	assert.Equal(t, "Allow", stmt["Effect"])
	assert.Equal(t, "sts:AssumeRole", stmt["Action"])
	principal := stmt["Principal"].(map[string]any)
	assert.Equal(t, "ec2.amazonaws.com", principal["Service"])
}

func TestInstancePolicyDocument(t *testing.T) {
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(InstancePolicyDocument()), &doc))

	statements := doc["Statement"].([]any)
	require.Len(t, statements, 1)
	stmt := statements[0].(map[string]any)
	assert.Equal(t, "*", stmt["Resource"])
	assert.Contains(t, stmt["Action"], "s3:PutObject")
	assert.Contains(t, stmt["Action"], "cloudwatch:PutMetricData")
}

func TestMonitorPolicyDocument(t *testing.T) {
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(MonitorPolicyDocument()), &doc))

	statements := doc["Statement"].([]any)
	require.Len(t, statements, 1)
	stmt := statements[0].(map[string]any)
	assert.Contains(t, stmt["Action"], "autoscaling:SetDesiredCapacity")
	assert.Contains(t, stmt["Action"], "cloudwatch:GetMetricStatistics")
}
