package upload

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	apperrors "github.com/lojinha/backoffice/internal/errors"
	"github.com/lojinha/backoffice/pkg/config"
)

// S3Uploader stores files in an S3 bucket and hands back the object URL.
type S3Uploader struct {
	uploader *manager.Uploader
	bucket   string
	logger   *slog.Logger
}

// NewS3Uploader builds an uploader for the configured bucket. A non-empty
// endpoint switches the client to an S3-compatible store such as MinIO.
func NewS3Uploader(ctx context.Context, cfg config.S3Config, logger *slog.Logger) (*S3Uploader, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})

	return &S3Uploader{
		uploader: manager.NewUploader(client),
		bucket:   cfg.Bucket,
		logger:   logger.With("component", "s3_uploader"),
	}, nil
}

// Upload writes the file under "<folder>/<millis>-<name>" with a public-read
// ACL. The timestamp prefix keeps repeated uploads of the same file name from
// overwriting each other.
func (u *S3Uploader) Upload(ctx context.Context, data []byte, name, contentType, folder string) (string, error) {
	key := fmt.Sprintf("%s/%d-%s", folder, time.Now().UnixMilli(), name)

	result, err := u.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		u.logger.ErrorContext(ctx, "S3 upload failed", "bucket", u.bucket, "key", key, "error", err)
		return "", fmt.Errorf("%w: %v", apperrors.ErrUploadFailed, err)
	}

	u.logger.InfoContext(ctx, "Uploaded file", "bucket", u.bucket, "key", key)
	return result.Location, nil
}
