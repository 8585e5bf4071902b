// Package archive implements the optional snapshot archiver (C14): a
// best-effort upload of a persisted snapshot's CSV and metadata JSON to S3,
// grounded on the AWS SDK v2 config/credentials loading pattern in
// writer/s3_writer.go (rahjooh-CryptoTrade), simplified from that repo's
// S3 Tables Iceberg client down to a plain object-store PutObject client
// since a flat-file snapshot has no table schema to manage.
package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vikasavnish/marketaggregator/internal/logging"
)

// Archiver uploads persisted snapshot files to S3 under a fixed prefix.
// A nil *Archiver is never constructed; callers that don't set AWS_S3_BUCKET
// simply never call New and pass a nil options.Archiver instead.
type Archiver struct {
	client *s3.Client
	bucket string
	prefix string
	log    *logging.Logger
}

// New loads AWS configuration the same way the pack's S3 writer does:
// region plus optional static credentials, falling back to the default
// provider chain (environment, shared config, instance role) when the
// access key is unset.
func New(ctx context.Context, bucket, region, accessKeyID, secretAccessKey, prefix string, log *logging.Logger) (*Archiver, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if accessKeyID != "" && secretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws configuration: %w", err)
	}

	return &Archiver{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		prefix: prefix,
		log:    log,
	}, nil
}

// Upload puts both files under prefix/<basename>, run after the local
// atomic write has already succeeded. A failure here never invalidates the
// snapshot: the filesystem copy remains authoritative.
func (a *Archiver) Upload(ctx context.Context, csvPath, jsonPath string) error {
	if err := a.uploadOne(ctx, csvPath, "text/csv"); err != nil {
		return err
	}
	return a.uploadOne(ctx, jsonPath, "application/json")
}

func (a *Archiver) uploadOne(ctx context.Context, path, contentType string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s for archival: %w", path, err)
	}
	defer f.Close()

	key := filepath.Join(a.prefix, filepath.Base(path))
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	a.log.WithField("key", key).Debug("archive: snapshot object uploaded")
	return nil
}
