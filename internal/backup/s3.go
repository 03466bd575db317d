// ABOUTME: Uploads workout history CSV exports to an S3-compatible bucket.
// ABOUTME: Credentials come from the default AWS chain unless given explicitly.
package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DefaultRegion is used when none is configured.
const DefaultRegion = "us-east-1"

// CSVContentType is the content type of uploaded history exports.
const CSVContentType = "text/csv; charset=utf-8"

// ErrNoBucket is returned when the uploader is built without a bucket.
var ErrNoBucket = errors.New("s3 bucket required")

// Config holds the bucket settings. Endpoint and PathStyle target
// S3-compatible services such as MinIO.
type Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	PathStyle       bool
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
}

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader writes exports under Prefix in a single bucket.
type Uploader struct {
	client objectPutter
	bucket string
	prefix string
	now    func() time.Time
}

// New creates an Uploader. Extra client options are applied last.
func New(ctx context.Context, cfg Config, optFns ...func(*s3.Options)) (*Uploader, error) {
	if cfg.Bucket == "" {
		return nil, ErrNoBucket
	}
	region := cfg.Region
	if region == "" {
		region = DefaultRegion
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	base := func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}
	client := s3.NewFromConfig(awsCfg, append([]func(*s3.Options){base}, optFns...)...)
	return newUploader(client, cfg.Bucket, cfg.Prefix), nil
}

func newUploader(client objectPutter, bucket, prefix string) *Uploader {
	return &Uploader{client: client, bucket: bucket, prefix: prefix, now: time.Now}
}

// Bucket returns the target bucket name.
func (u *Uploader) Bucket() string { return u.bucket }

// HistoryKey is the object key for a user's history export taken at t.
func (u *Uploader) HistoryKey(userID int64, t time.Time) string {
	name := fmt.Sprintf("workout_history_%d_%s.csv", userID, t.UTC().Format("20060102T150405Z"))
	return path.Join(u.prefix, fmt.Sprintf("user-%d", userID), name)
}

// UploadHistory stores a CSV export and returns its object key.
func (u *Uploader) UploadHistory(ctx context.Context, userID int64, csv []byte) (string, error) {
	key := u.HistoryKey(userID, u.now())
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(csv),
		ContentLength: aws.Int64(int64(len(csv))),
		ContentType:   aws.String(CSVContentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return key, nil
}
