package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Service stores listing images in Amazon S3 (or compatible APIs).
type S3Service struct {
	client   *s3.Client
	uploader *manager.Uploader
	region   string
	endpoint string
}

func NewS3Service(client *s3.Client, region, endpoint string) *S3Service {
	return &S3Service{
		client:   client,
		uploader: manager.NewUploader(client),
		region:   region,
		endpoint: strings.TrimSuffix(endpoint, "/"),
	}
}

func (s *S3Service) Upload(ctx context.Context, input UploadInput) error {
	if input.Bucket == "" {
		return fmt.Errorf("storage bucket is required")
	}
	if input.Key == "" {
		return fmt.Errorf("storage key is required")
	}

	put := &s3.PutObjectInput{
		Bucket: aws.String(input.Bucket),
		Key:    aws.String(input.Key),
		Body:   input.Body,
		ACL:    types.ObjectCannedACLPublicRead,
	}
	if input.ContentType != "" {
		put.ContentType = aws.String(input.ContentType)
	}

	if _, err := s.uploader.Upload(ctx, put); err != nil {
		return fmt.Errorf("upload %s: %w", input.Key, err)
	}
	return nil
}

func (s *S3Service) Delete(ctx context.Context, bucket, key string) error {
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// PublicURL builds a path-style URL when a custom endpoint is configured
// and the standard virtual-hosted URL otherwise.
func (s *S3Service) PublicURL(bucket, key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, s.region, key)
}
