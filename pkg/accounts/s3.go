package accounts

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// GetObjectAPI is the slice of the S3 client S3Source needs.
// *s3.Client satisfies it.
type GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads the account list from an S3 object. This lets several
// app shells share one account registry.
//
// Example usage:
//
//	client := s3.New(s3.Options{Region: "eu-west-1", Credentials: creds})
//	src := &accounts.S3Source{Client: client, Bucket: "links", Key: "accounts.yaml"}
type S3Source struct {
	Client GetObjectAPI
	Bucket string
	Key    string

	// Format overrides the format derived from the object key.
	Format Format

	// MaxSize caps the object size read (0 = 1 MiB).
	MaxSize int64
}

const defaultS3MaxSize = 1 << 20

// ErrObjectTooLarge is returned when the account object exceeds MaxSize.
var ErrObjectTooLarge = errors.New("account object too large")

// Accounts implements Source.
func (s *S3Source) Accounts(ctx context.Context) ([]Account, error) {
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("fetching s3://%s/%s: %w", s.Bucket, s.Key, err)
	}
	defer out.Body.Close()

	limit := s.MaxSize
	if limit <= 0 {
		limit = defaultS3MaxSize
	}
	data, err := io.ReadAll(io.LimitReader(out.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("reading s3://%s/%s: %w", s.Bucket, s.Key, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("s3://%s/%s: %w (limit %d bytes)", s.Bucket, s.Key, ErrObjectTooLarge, limit)
	}

	format := s.Format
	if format == "" {
		format = FormatFromPath(s.Key)
	}
	list, err := Decode(format, data)
	if err != nil {
		return nil, fmt.Errorf("s3://%s/%s: %w", s.Bucket, s.Key, err)
	}
	return list, nil
}
