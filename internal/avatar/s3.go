// Package avatar stores profile images in an S3-compatible bucket.
package avatar

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/MrEthical07/coursehub"
)

const (
	keyPrefix = "avatars/"
	// MaxBytes bounds a decoded image.
	MaxBytes = 2 << 20
)

var imageTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Config addresses the bucket. PublicURL is the prefix used to build
// object URLs; it defaults to Endpoint/Bucket.
type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	PublicURL string
}

// S3Store implements coursehub.AvatarStore. Data URIs are decoded and
// uploaded under avatars/; plain http(s) URLs are kept as given with no
// object behind them.
type S3Store struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

var _ coursehub.AvatarStore = (*S3Store)(nil)

func New(ctx context.Context, cfg Config, optFns ...func(*s3.Options)) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("avatar: bucket is required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("avatar: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		for _, fn := range optFns {
			fn(o)
		}
	})

	public := strings.TrimRight(cfg.PublicURL, "/")
	if public == "" {
		public = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	return &S3Store{client: client, bucket: cfg.Bucket, publicURL: public}, nil
}

func (s *S3Store) Upload(ctx context.Context, source string) (coursehub.Avatar, error) {
	source = strings.TrimSpace(source)
	if isRemoteURL(source) {
		return coursehub.Avatar{URL: source}, nil
	}

	contentType, data, err := decodeDataURI(source)
	if err != nil {
		return coursehub.Avatar{}, err
	}

	key := keyPrefix + uuid.NewString() + imageTypes[contentType]
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return coursehub.Avatar{}, fmt.Errorf("avatar: put object: %w", err)
	}
	return coursehub.Avatar{PublicID: key, URL: s.publicURL + "/" + key}, nil
}

// Destroy deletes an uploaded object. Empty ids and ids outside avatars/
// are ignored.
func (s *S3Store) Destroy(ctx context.Context, publicID string) error {
	if !strings.HasPrefix(publicID, keyPrefix) {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return fmt.Errorf("avatar: delete object: %w", err)
	}
	return nil
}

func isRemoteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// decodeDataURI parses data:<image type>;base64,<payload>.
func decodeDataURI(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, fmt.Errorf("%w: avatar must be a data URI or http(s) URL", coursehub.ErrInvalidInput)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: malformed data URI", coursehub.ErrInvalidInput)
	}
	contentType, encoding, _ := strings.Cut(meta, ";")
	contentType = strings.ToLower(contentType)
	if _, ok := imageTypes[contentType]; !ok {
		return "", nil, fmt.Errorf("%w: unsupported image type %q", coursehub.ErrInvalidInput, contentType)
	}
	if encoding != "base64" {
		return "", nil, fmt.Errorf("%w: data URI must be base64", coursehub.ErrInvalidInput)
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxBytes+3 {
		return "", nil, fmt.Errorf("%w: image exceeds %d bytes", coursehub.ErrInvalidInput, MaxBytes)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: invalid base64 payload", coursehub.ErrInvalidInput)
	}
	if len(data) == 0 || len(data) > MaxBytes {
		return "", nil, fmt.Errorf("%w: image must be 1..%d bytes", coursehub.ErrInvalidInput, MaxBytes)
	}
	return contentType, data, nil
}
