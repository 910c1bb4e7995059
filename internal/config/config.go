// Package config holds the declarative defaults for the cloudlog
// pipeline. Every literal that provisioning or monitoring relies on
// lives here as a named field so tests can assert on the values
// directly instead of re-deriving them.
package config

// DefaultRegion is substituted when the operator leaves the region
// prompt empty.
const DefaultRegion = "us-east-1"

// Setup carries the fixed provisioning parameters. Operator-supplied
// names (bucket, group, template, key pair, security group) are
// collected at run time and are not part of this struct.
type Setup struct {
	Region string

	// Launch template.
	InstanceType    string
	ImageOwner      string
	ImageNameFilter string

	// Auto Scaling Group.
	MinSize                int32
	MaxSize                int32
	DesiredCapacity        int32
	HealthCheckType        string
	HealthCheckGracePeriod int32
	SubnetCount            int

	// Identity.
	RoleName            string
	InstanceProfileName string
	InlinePolicyName    string
	MonitorPolicyName   string

	// Storage.
	LogPrefix string
}

// DefaultSetup returns the provisioning defaults.
func DefaultSetup() Setup {
	return Setup{
		Region: DefaultRegion,

		InstanceType:    "t2.micro",
		ImageOwner:      "amazon",
		ImageNameFilter: "amzn2-ami-hvm-*-x86_64-gp2",

		MinSize:                1,
		MaxSize:                5,
		DesiredCapacity:        2,
		HealthCheckType:        "EC2",
		HealthCheckGracePeriod: 300,
		SubnetCount:            2,

		RoleName:            "CloudLogInstanceRole",
		InstanceProfileName: "CloudLogInstanceProfile",
		InlinePolicyName:    "CloudLogInstancePolicy",
		MonitorPolicyName:   "CloudLogMonitorPolicy",

		LogPrefix: "logs/",
	}
}

// Thresholds drive the monitor's scaling decision.
type Thresholds struct {
	CPUHighPercent    float64
	CPULowPercent     float64
	ErrorRatePercent  float64
	SlowRatePercent   float64
	SlowRequestMillis float64
}

// DefaultThresholds returns the monitor defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CPUHighPercent:    70,
		CPULowPercent:     20,
		ErrorRatePercent:  5,
		SlowRatePercent:   10,
		SlowRequestMillis: 1000,
	}
}
