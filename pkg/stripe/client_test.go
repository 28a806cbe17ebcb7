package stripe

import (
	"context"
	"testing"

	"github.com/gigly/gigly-backend/pkg/config"
)

func TestNewClientValidatesKeys(t *testing.T) {
	ctx := context.Background()

	if _, err := NewClient(ctx, config.StripeConfig{WebhookSecret: "whsec"}, nil); err == nil {
		t.Fatal("expected missing secret key error")
	}
	if _, err := NewClient(ctx, config.StripeConfig{SecretKey: "sk_test_1"}, nil); err == nil {
		t.Fatal("expected missing webhook secret error")
	}
	if _, err := NewClient(ctx, config.StripeConfig{SecretKey: "sk_live_1", WebhookSecret: "whsec", Env: "test"}, nil); err == nil {
		t.Fatal("expected live key to be rejected in test env")
	}
	if _, err := NewClient(ctx, config.StripeConfig{SecretKey: "sk_test_1", WebhookSecret: "whsec", Env: "staging"}, nil); err == nil {
		t.Fatal("expected unknown env to be rejected")
	}

	client, err := NewClient(ctx, config.StripeConfig{SecretKey: "sk_live_1", WebhookSecret: "whsec", Env: "LIVE"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.Environment() != "live" {
		t.Fatalf("expected live env, got %q", client.Environment())
	}
	if client.SigningSecret() != "whsec" {
		t.Fatalf("unexpected signing secret %q", client.SigningSecret())
	}
}

func TestNilClientAccessors(t *testing.T) {
	var c *Client
	if c.Environment() != "" || c.SigningSecret() != "" {
		t.Fatal("nil client should return empty values")
	}
}
