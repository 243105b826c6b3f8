package media

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeHashFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.bin")
	if err := os.WriteFile(path, []byte("hello world"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestHashFileKnownVectors(t *testing.T) {
	path := writeHashFixture(t)

	cases := []struct {
		algorithm string
		want      string
	}{
		{"sha256", "sha256:b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"},
		{"sha1", "sha1:2aae6c35c94fcfb415dbe95f408b9ce91ee846ed"},
		{"md5", "md5:5eb63bbbe01eeed093cb22bb8f5acdc3"},
		{"sha512", "sha512:309ecc489c12d6eb4cc40f50c902f2b4d0ed77ee511a7c7a9bcd3ca86d4cd86f989dd35bc5ff499670da34255b45b0cfd830e81f605dcf7dc5542e93ae9cd76f"},
	}
	for _, tc := range cases {
		got, err := HashFile(path, tc.algorithm, 4)
		if err != nil {
			t.Fatalf("HashFile(%s) failed: %v", tc.algorithm, err)
		}
		if got != tc.want {
			t.Errorf("HashFile(%s) = %q, want %q", tc.algorithm, got, tc.want)
		}
	}
}

func TestHashFileUnknownAlgorithmFallsBackToSHA256(t *testing.T) {
	path := writeHashFixture(t)

	got, err := HashFile(path, "crc32", 0)
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}
	if !strings.HasPrefix(got, "sha256:") {
		t.Fatalf("expected sha256 fallback tag, got %q", got)
	}
}

func TestHashFileMissingFile(t *testing.T) {
	_, err := HashFile(filepath.Join(t.TempDir(), "absent"), "sha256", 0)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
