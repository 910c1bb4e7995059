package provision

import (
	"bytes"
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/cloudlog-io/cloudlog/internal/config"
)

// EnsureBucket creates the log bucket. Bucket names are global, so an
// AlreadyExists outcome can mean either a previous run or a name
// collision with another account.
func (r *Runner) EnsureBucket(ctx context.Context, name, region string) Outcome {
	input := &s3.CreateBucketInput{
		Bucket: aws.String(name),
	}
	// us-east-1 rejects an explicit location constraint.
	if region != config.DefaultRegion {
		input.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(region),
		}
	}

	err := r.call(ctx, func() error {
		_, err := r.S3.CreateBucket(ctx, input)
		return err
	})
	return classify(err, "BucketAlreadyOwnedByYou", "BucketAlreadyExists")
}

// EnableVersioning turns on bucket versioning. Re-enabling on an
// existing bucket is a no-op for the provider.
func (r *Runner) EnableVersioning(ctx context.Context, name string) Outcome {
	err := r.call(ctx, func() error {
		_, err := r.S3.PutBucketVersioning(ctx, &s3.PutBucketVersioningInput{
			Bucket: aws.String(name),
			VersioningConfiguration: &s3types.VersioningConfiguration{
				Status: s3types.BucketVersioningStatusEnabled,
			},
		})
		return err
	})
	return classify(err)
}

// PutLogPrefixPlaceholder writes an empty object establishing the
// logical log prefix inside the bucket.
func (r *Runner) PutLogPrefixPlaceholder(ctx context.Context, bucket, prefix string) Outcome {
	err := r.call(ctx, func() error {
		_, err := r.S3.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(prefix),
			Body:   bytes.NewReader(nil),
		})
		return err
	})
	return classify(err)
}
