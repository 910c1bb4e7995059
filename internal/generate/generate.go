// Package generate produces synthetic application log files and
// uploads them to the log bucket so the monitoring pipeline has data
// to chew on.
package generate

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/cloudlog-io/cloudlog/internal/logging"
)

// Uploader is the slice of the S3 client the generator needs.
type Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var endpoints = []string{
	"/api/users", "/api/products", "/api/orders",
	"/api/search", "/api/checkout", "/api/auth/login",
}

var methods = []string{"GET", "POST", "PUT", "DELETE"}

// statusWeights is the traffic mix: mostly healthy, a sliver of client
// and server errors.
var statusWeights = []struct {
	code   int
	weight float64
}{
	{200, 0.85},
	{201, 0.05},
	{400, 0.03},
	{404, 0.02},
	{500, 0.03},
	{503, 0.02},
}

var serverErrors = []string{
	"Database connection timeout",
	"Exception in query execution",
	"Failed to process request",
	"Internal server error occurred",
}

// Generator writes synthetic log files under a bucket prefix.
type Generator struct {
	s3     Uploader
	bucket string
	prefix string

	out   io.Writer
	rng   *rand.Rand
	now   func() time.Time
	sleep func(time.Duration)
}

// New returns a Generator uploading to bucket under prefix, printing
// progress to out.
func New(client Uploader, bucket, prefix string, out io.Writer) *Generator {
	return &Generator{
		s3:     client,
		bucket: bucket,
		prefix: prefix,
		out:    out,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

func (g *Generator) pickStatus() int {
	v := g.rng.Float64()
	var cum float64
	for _, sw := range statusWeights {
		cum += sw.weight
		if v < cum {
			return sw.code
		}
	}
	return statusWeights[len(statusWeights)-1].code
}

// Entry produces one log line in the fixed transcript format.
func (g *Generator) Entry() string {
	ts := g.now().UTC().Format("2006-01-02 15:04:05.000")
	status := g.pickStatus()

	var responseTime float64
	if status < 400 {
		responseTime = 50 + g.rng.Float64()*450
	} else {
		responseTime = 500 + g.rng.Float64()*2500
	}

	var level string
	switch {
	case status >= 500:
		level = "ERROR"
	case status >= 400:
		level = "WARN"
	default:
		level = [...]string{"INFO", "DEBUG"}[g.rng.Intn(2)]
	}

	entry := fmt.Sprintf("[%s] %s - %s %s - status: %d - response_time: %.2fms",
		ts, level,
		methods[g.rng.Intn(len(methods))],
		endpoints[g.rng.Intn(len(endpoints))],
		status, responseTime)

	if status >= 500 {
		entry += " - " + serverErrors[g.rng.Intn(len(serverErrors))]
	}
	return entry
}

// File produces a complete log file of n entries.
func (g *Generator) File(n int) string {
	entries := make([]string, n)
	for i := range entries {
		entries[i] = g.Entry()
	}
	return strings.Join(entries, "\n")
}

// Upload writes one log file object and returns its key.
func (g *Generator) Upload(ctx context.Context, content string) (string, error) {
	key := fmt.Sprintf("%sapplication_%s.log", g.prefix, g.now().UTC().Format("20060102_150405"))

	fmt.Fprintf(g.out, "Uploading to s3://%s/%s\n", g.bucket, key)
	_, err := g.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(g.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(content),
		ContentType: aws.String("text/plain"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload log file: %w", err)
	}
	return key, nil
}

// Run generates and uploads files log files of entriesPerFile entries
// each, pausing briefly between uploads so the object keys stay
// distinct.
func (g *Generator) Run(ctx context.Context, files, entriesPerFile int) ([]string, error) {
	fmt.Fprintf(g.out, "Generating %d log files...\n", files)

	var keys []string
	for i := 0; i < files; i++ {
		fmt.Fprintf(g.out, "File %d/%d (%d entries)\n", i+1, files, entriesPerFile)
		key, err := g.Upload(ctx, g.File(entriesPerFile))
		if err != nil {
			logging.Warn("upload failed", "error", err)
			continue
		}
		keys = append(keys, key)

		if i < files-1 {
			g.sleep(time.Second)
		}
	}

	fmt.Fprintf(g.out, "Generated and uploaded %d log files\n", len(keys))
	return keys, nil
}
