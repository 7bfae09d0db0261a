package output

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/cannon-dev/cannon/internal/errors"
	"github.com/cannon-dev/cannon/pkg/router"
)

// PutObjectAPI is the subset of the S3 client used by S3Writer.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Options configures the S3 client built by NewS3Client.
type S3Options struct {
	Region    string
	Endpoint  string
	PathStyle bool
}

// NewS3Client builds an S3 client from the default AWS configuration chain
// (environment, shared config and credentials files, SSO, instance roles).
// A non-empty Region overrides the configured one.
func NewS3Client(ctx context.Context, opts S3Options) (*s3.Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.New("E152").Wrap(err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.PathStyle
	}), nil
}

// S3Writer uploads documents to a bucket.
//
// Example usage:
//
//	client, err := output.NewS3Client(ctx, output.S3Options{Region: "us-east-1"})
//	w := output.NewS3Writer(client, "my-bucket", "routers/")
type S3Writer struct {
	client PutObjectAPI
	bucket string
	prefix string
}

// NewS3Writer creates a writer uploading below prefix in bucket.
func NewS3Writer(client PutObjectAPI, bucket, prefix string) *S3Writer {
	return &S3Writer{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// Key returns the object key of doc.
func (w *S3Writer) Key(doc *router.Document) string {
	if w.prefix == "" {
		return doc.FileName()
	}
	return path.Join(w.prefix, doc.FileName())
}

// Write implements Writer.
func (w *S3Writer) Write(ctx context.Context, doc *router.Document) (Result, error) {
	key := w.Key(doc)

	_, err := w.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(w.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(doc.Source),
		ContentType: aws.String("text/plain; charset=utf-8"),
		Metadata: map[string]string{
			"router":   doc.Name,
			"variant":  doc.Variant,
			"checksum": doc.Checksum,
		},
	})
	if err != nil {
		return Result{}, errors.New("E151").
			Wrap(err).
			WithDetail(fmt.Sprintf("s3://%s/%s", w.bucket, key))
	}

	return Result{Location: fmt.Sprintf("s3://%s/%s", w.bucket, key)}, nil
}
