package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"photovault/internal/config"
	"photovault/internal/logging"
)

// Service uploads finished artifacts to the configured mirror.
type Service interface {
	// Enabled reports whether uploads actually go anywhere.
	Enabled() bool
	// EnsureBucket verifies the target bucket exists before a run starts.
	EnsureBucket(ctx context.Context) error
	// Upload stores the local file under objectName (prefix applied).
	Upload(ctx context.Context, localPath, objectName string) error
}

// NewService builds a mirror service from configuration. When mirroring is
// disabled a noop implementation is returned.
func NewService(cfg *config.Config, logger *slog.Logger) (Service, error) {
	if !cfg.Mirror.Enabled {
		return noopService{}, nil
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	client, err := minio.New(cfg.Mirror.Endpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.Mirror.AccessKey, cfg.Mirror.SecretKey, ""),
		Secure:       cfg.Mirror.UseSSL,
		Transport:    transport,
		BucketLookup: minio.BucketLookupAuto,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize mirror client: %w", err)
	}

	return &minioService{
		client: client,
		bucket: cfg.Mirror.Bucket,
		prefix: cfg.Mirror.Prefix,
		logger: logging.NewComponentLogger(logger, "mirror"),
	}, nil
}

type minioService struct {
	client *minio.Client
	bucket string
	prefix string
	logger *slog.Logger
}

func (s *minioService) Enabled() bool { return true }

func (s *minioService) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check mirror bucket %q: %w", s.bucket, err)
	}
	if !exists {
		return fmt.Errorf("mirror bucket %q does not exist; create it before enabling the mirror", s.bucket)
	}
	return nil
}

func (s *minioService) Upload(ctx context.Context, localPath, objectName string) error {
	key := objectName
	if s.prefix != "" {
		key = path.Join(s.prefix, objectName)
	}

	info, err := s.client.FPutObject(ctx, s.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: ContentType(localPath),
	})
	if err != nil {
		return fmt.Errorf("upload %s to mirror: %w", objectName, err)
	}

	s.logger.Debug("mirrored artifact",
		logging.String("object", key),
		logging.Int64("size_bytes", info.Size))
	return nil
}

// ContentType guesses a MIME type from the file extension, defaulting to
// application/octet-stream.
func ContentType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return "application/octet-stream"
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	switch ext {
	case ".heic", ".heif":
		return "image/heic"
	default:
		return "application/octet-stream"
	}
}

type noopService struct{}

func (noopService) Enabled() bool { return false }

func (noopService) EnsureBucket(context.Context) error { return nil }

func (noopService) Upload(context.Context, string, string) error { return nil }
