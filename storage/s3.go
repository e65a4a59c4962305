package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config configures the S3 store.
type S3Config struct {
	Bucket   string
	Region   string
	// Endpoint overrides the AWS endpoint, for S3-compatible stores.
	Endpoint string
	// PathStyle forces path-style addressing (needed by most
	// S3-compatible stores).
	PathStyle bool
	// AccessKey and SecretKey override the default credential chain
	// when both are set.
	AccessKey string
	SecretKey string
}

// S3Store reads objects from an S3 bucket.
type S3Store struct {
	client *s3.Client
	bucket string
}

// NewS3Store builds an S3 store from the default AWS config chain plus
// the overrides in cfg.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})
	return &S3Store{client: client, bucket: cfg.Bucket}, nil
}

// Get implements Store.
func (s *S3Store) Get(ctx context.Context, key string, rangeHeader string) (*Object, error) {
	in := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	if rangeHeader != "" {
		in.Range = aws.String(rangeHeader)
	}
	out, err := s.client.GetObject(ctx, in)
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("s3 get %q: %w", key, err)
	}

	obj := &Object{
		Size:         aws.ToInt64(out.ContentLength),
		ContentType:  aws.ToString(out.ContentType),
		ETag:         aws.ToString(out.ETag),
		LastModified: aws.ToTime(out.LastModified),
		Body:         out.Body,
	}
	if cr := aws.ToString(out.ContentRange); cr != "" {
		partial, total, err := parseContentRange(cr)
		if err != nil {
			out.Body.Close()
			return nil, fmt.Errorf("s3 get %q: %w", key, err)
		}
		obj.Partial = partial
		obj.Size = total
	}
	return obj, nil
}

// Stat implements Store.
func (s *S3Store) Stat(ctx context.Context, key string) (*Object, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("s3 head %q: %w", key, err)
	}
	return &Object{
		Size:         aws.ToInt64(out.ContentLength),
		ContentType:  aws.ToString(out.ContentType),
		ETag:         aws.ToString(out.ETag),
		LastModified: aws.ToTime(out.LastModified),
	}, nil
}

// parseContentRange parses `bytes <start>-<end>/<total>` as reported by
// the store for a partial response.
func parseContentRange(cr string) (*PartialRange, int64, error) {
	spec, ok := strings.CutPrefix(cr, "bytes ")
	if !ok {
		return nil, 0, fmt.Errorf("unexpected content range %q", cr)
	}
	rangePart, totalPart, ok := strings.Cut(spec, "/")
	if !ok {
		return nil, 0, fmt.Errorf("unexpected content range %q", cr)
	}
	startPart, endPart, ok := strings.Cut(rangePart, "-")
	if !ok {
		return nil, 0, fmt.Errorf("unexpected content range %q", cr)
	}
	start, err := strconv.ParseInt(startPart, 10, 64)
	if err != nil {
		return nil, 0, fmt.Errorf("unexpected content range %q: %w", cr, err)
	}
	end, err := strconv.ParseInt(endPart, 10, 64)
	if err != nil {
		return nil, 0, fmt.Errorf("unexpected content range %q: %w", cr, err)
	}
	total, err := strconv.ParseInt(totalPart, 10, 64)
	if err != nil {
		return nil, 0, fmt.Errorf("unexpected content range %q: %w", cr, err)
	}
	return &PartialRange{Start: start, End: end}, total, nil
}
