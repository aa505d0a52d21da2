// Package storage uploads user images to an S3-compatible bucket.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// MaxUploadBytes caps a single upload.
const MaxUploadBytes = 5 << 20

var (
	ErrTooLarge       = errors.New("file exceeds 5MB limit")
	ErrNotImage       = errors.New("only JPEG, PNG, GIF and WebP images are allowed")
	ErrNotConfigured  = errors.New("storage not configured")
	allowedImageTypes = map[string]string{
		"image/jpeg": ".jpg",
		"image/png":  ".png",
		"image/gif":  ".gif",
		"image/webp": ".webp",
	}
)

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Config describes the bucket.
type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	PublicURL string
	AccessKey string
	SecretKey string
}

// Uploader writes objects and returns their public URLs.
type Uploader struct {
	client    putObjectAPI
	bucket    string
	publicURL string
	logger    *logrus.Logger
}

// NewUploader builds an S3 client for cfg. Static credentials are used when
// both keys are set, otherwise the default AWS credential chain applies.
func NewUploader(ctx context.Context, cfg Config, logger *logrus.Logger) (*Uploader, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newUploader(client, cfg.Bucket, cfg.PublicURL, logger), nil
}

func newUploader(client putObjectAPI, bucket, publicURL string, logger *logrus.Logger) *Uploader {
	return &Uploader{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger,
	}
}

// DetectImageType sniffs head and returns the image MIME type or ErrNotImage.
func DetectImageType(head []byte) (string, error) {
	ct := http.DetectContentType(head)
	if _, ok := allowedImageTypes[ct]; !ok {
		return "", ErrNotImage
	}
	return ct, nil
}

// UploadImage validates r as an image of at most MaxUploadBytes and stores it
// under {folder}/{uuid}{ext}.
func (u *Uploader) UploadImage(ctx context.Context, folder string, r io.Reader) (string, error) {
	if u == nil {
		return "", ErrNotConfigured
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return "", ErrTooLarge
	}

	contentType, err := DetectImageType(data)
	if err != nil {
		return "", err
	}

	key := path.Join(folder, uuid.NewString()+allowedImageTypes[contentType])
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
		CacheControl:  aws.String("public, max-age=31536000"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	u.logger.WithFields(logrus.Fields{"key": key, "bytes": len(data)}).Info("Uploaded image")
	return u.publicURL + "/" + key, nil
}
