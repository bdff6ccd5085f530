package publish

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Sink uploads the document to an S3 bucket so runs from many hosts can be
// collected in one place.
type S3Sink struct {
	Bucket   string
	Key      string
	uploader *manager.Uploader
}

func NewS3Sink(ctx context.Context, bucket, key string) (*S3Sink, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config failed: %w", err)
	}
	return &S3Sink{
		Bucket:   bucket,
		Key:      key,
		uploader: manager.NewUploader(s3.NewFromConfig(cfg)),
	}, nil
}

func (s *S3Sink) Name() string { return fmt.Sprintf("s3://%s/%s", s.Bucket, s.Key) }

func (s *S3Sink) Publish(ctx context.Context, doc []byte) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(s.Key),
		Body:        bytes.NewReader(doc),
		ContentType: aws.String("application/json"),
	})
	return err
}
