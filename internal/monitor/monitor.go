// Package monitor inspects recent application logs and CPU metrics
// for a scaling group and adjusts its desired capacity.
package monitor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/cloudlog-io/cloudlog/internal/config"
	"github.com/cloudlog-io/cloudlog/internal/logging"
)

// ObjectStore is the slice of the S3 client the monitor reads logs
// through.
type ObjectStore interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Metrics fetches CloudWatch statistics.
type Metrics interface {
	GetMetricStatistics(ctx context.Context, params *cloudwatch.GetMetricStatisticsInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricStatisticsOutput, error)
}

// ScalingGroups reads and adjusts Auto Scaling Groups.
type ScalingGroups interface {
	DescribeAutoScalingGroups(ctx context.Context, params *autoscaling.DescribeAutoScalingGroupsInput, optFns ...func(*autoscaling.Options)) (*autoscaling.DescribeAutoScalingGroupsOutput, error)
	SetDesiredCapacity(ctx context.Context, params *autoscaling.SetDesiredCapacityInput, optFns ...func(*autoscaling.Options)) (*autoscaling.SetDesiredCapacityOutput, error)
}

// recentObjectLimit bounds how many log files one pass analyzes.
const recentObjectLimit = 10

var (
	errorPattern        = regexp.MustCompile(`(?i)(ERROR|FATAL|Exception|Failed)`)
	responseTimePattern = regexp.MustCompile(`response_time[:\s]+(\d+\.?\d*)ms`)
	statusPattern       = regexp.MustCompile(`status[:\s]+(\d{3})`)
)

// Report aggregates what the log scan found.
type Report struct {
	FilesScanned        int
	TotalRequests       int
	ErrorCount          int
	SlowResponses       int
	TotalResponseMillis float64
}

// ErrorRate is the share of scanned requests carrying a 5xx status or
// an error marker, in percent.
func (r Report) ErrorRate() float64 {
	if r.TotalRequests == 0 {
		return 0
	}
	return float64(r.ErrorCount) / float64(r.TotalRequests) * 100
}

// SlowRate is the share of requests over the slow threshold, in
// percent.
func (r Report) SlowRate() float64 {
	if r.TotalRequests == 0 {
		return 0
	}
	return float64(r.SlowResponses) / float64(r.TotalRequests) * 100
}

// AvgResponseMillis is the mean response time over scanned requests.
func (r Report) AvgResponseMillis() float64 {
	if r.TotalRequests == 0 {
		return 0
	}
	return r.TotalResponseMillis / float64(r.TotalRequests)
}

// Action is the scaling verdict for one monitoring pass.
type Action string

const (
	ScaleUp   Action = "scale_up"
	ScaleDown Action = "scale_down"
	Maintain  Action = "maintain"
)

// Decision pairs an Action with the observations that produced it.
type Decision struct {
	Action  Action
	Reasons []string
}

// Monitor runs one observe-decide-act cycle against a scaling group.
type Monitor struct {
	S3  ObjectStore
	CW  Metrics
	ASG ScalingGroups

	Bucket     string
	Prefix     string
	Group      string
	Thresholds config.Thresholds

	Out io.Writer
	Now func() time.Time
}

// AnalyzeLogs scans the most recent log files under the bucket prefix
// and aggregates request statistics.
func (m *Monitor) AnalyzeLogs(ctx context.Context) (Report, error) {
	listed, err := m.S3.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(m.Bucket),
		Prefix: aws.String(m.Prefix),
	})
	if err != nil {
		return Report{}, fmt.Errorf("list log objects: %w", err)
	}

	objects := listed.Contents
	sort.Slice(objects, func(i, j int) bool {
		return aws.ToTime(objects[i].LastModified).After(aws.ToTime(objects[j].LastModified))
	})
	if len(objects) > recentObjectLimit {
		objects = objects[:recentObjectLimit]
	}

	var rep Report
	for _, obj := range objects {
		key := aws.ToString(obj.Key)
		got, err := m.S3.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(m.Bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			logging.Warn("skipping unreadable log object", "key", key, "error", err)
			continue
		}
		m.scan(got.Body, &rep)
		got.Body.Close()
		rep.FilesScanned++
	}
	return rep, nil
}

func (m *Monitor) scan(body io.Reader, rep *Report) {
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := scanner.Text()
		sm := statusPattern.FindStringSubmatch(line)
		if sm == nil {
			continue
		}
		rep.TotalRequests++

		if strings.HasPrefix(sm[1], "5") || errorPattern.MatchString(line) {
			rep.ErrorCount++
		}
		if rm := responseTimePattern.FindStringSubmatch(line); rm != nil {
			ms, err := strconv.ParseFloat(rm[1], 64)
			if err == nil {
				rep.TotalResponseMillis += ms
				if ms > m.Thresholds.SlowRequestMillis {
					rep.SlowResponses++
				}
			}
		}
	}
}

// GroupCPU returns the group's average CPU utilization over the last
// five minutes.
func (m *Monitor) GroupCPU(ctx context.Context) (float64, error) {
	end := m.now()
	start := end.Add(-5 * time.Minute)

	stats, err := m.CW.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String("AWS/EC2"),
		MetricName: aws.String("CPUUtilization"),
		Dimensions: []cwtypes.Dimension{
			{Name: aws.String("AutoScalingGroupName"), Value: aws.String(m.Group)},
		},
		StartTime:  aws.Time(start),
		EndTime:    aws.Time(end),
		Period:     aws.Int32(300),
		Statistics: []cwtypes.Statistic{cwtypes.StatisticAverage},
	})
	if err != nil {
		return 0, fmt.Errorf("fetch cpu metric: %w", err)
	}

	if len(stats.Datapoints) == 0 {
		return 0, nil
	}
	var sum float64
	for _, dp := range stats.Datapoints {
		sum += aws.ToFloat64(dp.Average)
	}
	return sum / float64(len(stats.Datapoints)), nil
}

// Decide maps observations to a scaling action.
func (m *Monitor) Decide(cpu float64, rep Report) Decision {
	var reasons []string
	if cpu > m.Thresholds.CPUHighPercent {
		reasons = append(reasons, fmt.Sprintf("high CPU: %.1f%%", cpu))
	}
	if rep.ErrorRate() > m.Thresholds.ErrorRatePercent {
		reasons = append(reasons, fmt.Sprintf("high error rate: %.1f%%", rep.ErrorRate()))
	}
	if rep.SlowRate() > m.Thresholds.SlowRatePercent {
		reasons = append(reasons, fmt.Sprintf("slow responses: %.1f%%", rep.SlowRate()))
	}
	if len(reasons) > 0 {
		return Decision{Action: ScaleUp, Reasons: reasons}
	}

	if cpu < m.Thresholds.CPULowPercent {
		return Decision{Action: ScaleDown, Reasons: []string{fmt.Sprintf("low CPU: %.1f%%", cpu)}}
	}
	return Decision{Action: Maintain}
}

// ApplyDecision adjusts the group's desired capacity by one step in
// the decided direction, clamped to the group's min and max. Maintain
// and already-clamped decisions touch nothing.
func (m *Monitor) ApplyDecision(ctx context.Context, d Decision) error {
	if d.Action == Maintain {
		fmt.Fprintln(m.Out, "Capacity unchanged")
		return nil
	}

	described, err := m.ASG.DescribeAutoScalingGroups(ctx, &autoscaling.DescribeAutoScalingGroupsInput{
		AutoScalingGroupNames: []string{m.Group},
	})
	if err != nil {
		return fmt.Errorf("describe scaling group: %w", err)
	}
	if len(described.AutoScalingGroups) == 0 {
		return fmt.Errorf("scaling group %q not found", m.Group)
	}

	group := described.AutoScalingGroups[0]
	current := aws.ToInt32(group.DesiredCapacity)
	minSize := aws.ToInt32(group.MinSize)
	maxSize := aws.ToInt32(group.MaxSize)

	target := current
	switch d.Action {
	case ScaleUp:
		if current < maxSize {
			target = current + 1
		}
	case ScaleDown:
		if current > minSize {
			target = current - 1
		}
	}

	if target == current {
		fmt.Fprintf(m.Out, "Capacity already at limit (%d)\n", current)
		return nil
	}

	fmt.Fprintf(m.Out, "Adjusting desired capacity %d -> %d\n", current, target)
	_, err = m.ASG.SetDesiredCapacity(ctx, &autoscaling.SetDesiredCapacityInput{
		AutoScalingGroupName: aws.String(m.Group),
		DesiredCapacity:      aws.Int32(target),
		HonorCooldown:        aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("set desired capacity: %w", err)
	}
	return nil
}

// Run performs one full monitoring pass: scan logs, read CPU, decide,
// apply.
func (m *Monitor) Run(ctx context.Context) (Decision, error) {
	fmt.Fprintf(m.Out, "Analyzing logs in s3://%s/%s\n", m.Bucket, m.Prefix)
	rep, err := m.AnalyzeLogs(ctx)
	if err != nil {
		return Decision{}, err
	}

	cpu, err := m.GroupCPU(ctx)
	if err != nil {
		return Decision{}, err
	}

	fmt.Fprintf(m.Out, "Files scanned:     %d\n", rep.FilesScanned)
	fmt.Fprintf(m.Out, "Total requests:    %d\n", rep.TotalRequests)
	fmt.Fprintf(m.Out, "Error rate:        %.1f%%\n", rep.ErrorRate())
	fmt.Fprintf(m.Out, "Slow responses:    %.1f%%\n", rep.SlowRate())
	fmt.Fprintf(m.Out, "Avg response time: %.1fms\n", rep.AvgResponseMillis())
	fmt.Fprintf(m.Out, "Group CPU:         %.1f%%\n", cpu)

	d := m.Decide(cpu, rep)
	fmt.Fprintf(m.Out, "Decision: %s\n", d.Action)
	for _, reason := range d.Reasons {
		fmt.Fprintf(m.Out, "  - %s\n", reason)
	}
	logging.Info("monitor decision", "action", string(d.Action), "reasons", strings.Join(d.Reasons, "; "))

	if err := m.ApplyDecision(ctx, d); err != nil {
		return d, err
	}
	return d, nil
}

func (m *Monitor) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}
