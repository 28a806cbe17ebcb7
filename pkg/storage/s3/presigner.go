package s3

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ErrNotFound reports that the bucket has no object under the key.
var ErrNotFound = errors.New("s3 object not found")

// presignAPI is satisfied by *s3.PresignClient.
type presignAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// headAPI is satisfied by *s3.Client.
type headAPI interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// Presigner issues time-limited GET URLs for private bucket objects.
type Presigner struct {
	client presignAPI
	head   headAPI
	bucket string
	expiry time.Duration
}

// NewPresigner loads the default AWS config chain for region.
func NewPresigner(ctx context.Context, bucket, region string, expiry time.Duration) (*Presigner, error) {
	if bucket == "" {
		return nil, errors.New("s3 bucket name is required")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	return newPresigner(s3.NewPresignClient(client), client, bucket, expiry), nil
}

func newPresigner(client presignAPI, head headAPI, bucket string, expiry time.Duration) *Presigner {
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &Presigner{client: client, head: head, bucket: bucket, expiry: expiry}
}

// ResolveURL presigns a GET request for key once the object is known to exist.
func (p *Presigner) ResolveURL(ctx context.Context, key string) (string, error) {
	if p.head != nil {
		_, err := p.head.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(p.bucket),
			Key:    aws.String(key),
		})
		if isNotFound(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		if err != nil {
			return "", fmt.Errorf("head %s: %w", key, err)
		}
	}

	req, err := p.client.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(p.expiry))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return req.URL, nil
}

// HeadObject has no body to carry NoSuchKey, so a bare 404 counts as missing.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var respErr *awshttp.ResponseError
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound
}
