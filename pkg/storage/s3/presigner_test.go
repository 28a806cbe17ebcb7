package s3

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type stubPresignAPI struct {
	gotBucket string
	gotKey    string
	gotExpiry time.Duration
	calls     int
	err       error
}

func (s *stubPresignAPI) PresignGetObject(_ context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	opts := s3.PresignOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	s.gotBucket = aws.ToString(params.Bucket)
	s.gotKey = aws.ToString(params.Key)
	s.gotExpiry = opts.Expires
	return &v4.PresignedHTTPRequest{
		URL:    "https://" + s.gotBucket + ".s3.amazonaws.com/" + s.gotKey + "?X-Amz-Signature=abc",
		Method: http.MethodGet,
	}, nil
}

type stubHeadAPI struct {
	missing map[string]bool
	err     error
}

func (s *stubHeadAPI) HeadObject(_ context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.missing[aws.ToString(params.Key)] {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func TestPresignerResolveURL(t *testing.T) {
	api := &stubPresignAPI{}
	p := newPresigner(api, &stubHeadAPI{}, "gig-media", 15*time.Minute)

	got, err := p.ResolveURL(context.Background(), "gigs/1.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://gig-media.s3.amazonaws.com/gigs/1.png?X-Amz-Signature=abc" {
		t.Fatalf("unexpected url %q", got)
	}
	if api.gotBucket != "gig-media" || api.gotKey != "gigs/1.png" {
		t.Fatalf("unexpected request bucket=%q key=%q", api.gotBucket, api.gotKey)
	}
	if api.gotExpiry != 15*time.Minute {
		t.Fatalf("expected expiry 15m, got %v", api.gotExpiry)
	}
}

func TestPresignerMissingObject(t *testing.T) {
	api := &stubPresignAPI{}
	p := newPresigner(api, &stubHeadAPI{missing: map[string]bool{"gigs/gone.png": true}}, "gig-media", time.Minute)

	_, err := p.ResolveURL(context.Background(), "gigs/gone.png")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if api.calls != 0 {
		t.Fatal("missing objects must not be presigned")
	}
}

func TestPresignerHeadFailureIsNotMissing(t *testing.T) {
	p := newPresigner(&stubPresignAPI{}, &stubHeadAPI{err: errors.New("access denied")}, "gig-media", time.Minute)

	_, err := p.ResolveURL(context.Background(), "gigs/1.png")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected a plain head error, got %v", err)
	}
}

func TestPresignerDefaultsExpiryAndWrapsErrors(t *testing.T) {
	api := &stubPresignAPI{err: errors.New("no creds")}
	p := newPresigner(api, nil, "b", 0)
	if p.expiry != time.Hour {
		t.Fatalf("expected default expiry 1h, got %v", p.expiry)
	}
	if _, err := p.ResolveURL(context.Background(), "k"); err == nil {
		t.Fatal("expected presign error")
	}
}
