package gcs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const defaultBaseURL = "https://storage.googleapis.com"

// ErrNotFound reports that the public URL answered 404.
var ErrNotFound = errors.New("gcs object not found")

// httpDoer is satisfied by *http.Client.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// PublicResolver builds public object URLs for a bucket served through
// storage.googleapis.com or a CDN in front of it.
type PublicResolver struct {
	base    string
	checker httpDoer
}

// Option customizes a PublicResolver.
type Option func(*PublicResolver)

// WithObjectCheck makes ResolveURL issue a HEAD request for every key and
// report ErrNotFound when the object is absent.
func WithObjectCheck(client httpDoer) Option {
	return func(r *PublicResolver) {
		if client == nil {
			client = http.DefaultClient
		}
		r.checker = client
	}
}

// NewPublicResolver returns a resolver for bucket. When publicBaseURL is set
// it replaces the default host and bucket prefix.
func NewPublicResolver(bucket, publicBaseURL string, opts ...Option) (*PublicResolver, error) {
	base := strings.TrimRight(strings.TrimSpace(publicBaseURL), "/")
	if base == "" {
		bucket = strings.TrimSpace(bucket)
		if bucket == "" {
			return nil, errors.New("gcs bucket name is required")
		}
		base = defaultBaseURL + "/" + url.PathEscape(bucket)
	}
	r := &PublicResolver{base: base}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// ResolveURL returns the public URL of key.
func (r *PublicResolver) ResolveURL(ctx context.Context, key string) (string, error) {
	segments := strings.Split(strings.TrimLeft(key, "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	target := r.base + "/" + strings.Join(segments, "/")
	if r.checker == nil {
		return target, nil
	}
	if err := r.exists(ctx, target); err != nil {
		return "", fmt.Errorf("resolve %s: %w", key, err)
	}
	return target, nil
}

func (r *PublicResolver) exists(ctx context.Context, target string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return err
	}
	resp, err := r.checker.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 300:
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	default:
		return nil
	}
}
