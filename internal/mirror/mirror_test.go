package mirror_test

import (
	"context"
	"testing"

	"photovault/internal/config"
	"photovault/internal/logging"
	"photovault/internal/mirror"
)

func TestNewServiceDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Mirror.Enabled = false

	svc, err := mirror.NewService(&cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	if svc.Enabled() {
		t.Fatal("expected disabled service")
	}
	if err := svc.EnsureBucket(context.Background()); err != nil {
		t.Fatalf("noop EnsureBucket must not fail: %v", err)
	}
	if err := svc.Upload(context.Background(), "/nope", "photos/x.jpg"); err != nil {
		t.Fatalf("noop Upload must not fail: %v", err)
	}
}

func TestNewServiceEnabled(t *testing.T) {
	cfg := config.Default()
	cfg.Mirror.Enabled = true
	cfg.Mirror.Endpoint = "minio.example.net:9000"
	cfg.Mirror.AccessKey = "key"
	cfg.Mirror.SecretKey = "secret"
	cfg.Mirror.Bucket = "photovault"

	svc, err := mirror.NewService(&cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	if !svc.Enabled() {
		t.Fatal("expected enabled service")
	}
}

func TestContentType(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"IMG_1.jpg", "image/jpeg"},
		{"IMG_2.png", "image/png"},
		{"IMG_3.heic", "image/heic"},
		{"clip.mp4", "video/mp4"},
		{"noext", "application/octet-stream"},
	}
	for _, tc := range tests {
		if got := mirror.ContentType(tc.name); got != tc.want {
			t.Errorf("ContentType(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}
