package media

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"
)

const defaultHashChunkSize = 8192

// HashFile streams the file through the named digest and returns the result
// tagged with its algorithm, e.g. "sha256:9f86d0...". Unknown algorithm
// names fall back to sha256; config validation rejects them before a run,
// so the fallback only matters for hand-built callers.
func HashFile(path, algorithm string, chunkSize int) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for hashing: %w", err)
	}
	defer file.Close()

	algorithm, digest := newDigest(algorithm)
	if chunkSize <= 0 {
		chunkSize = defaultHashChunkSize
	}

	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(digest, file, buf); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}

	return fmt.Sprintf("%s:%x", algorithm, digest.Sum(nil)), nil
}

func newDigest(algorithm string) (string, hash.Hash) {
	switch strings.ToLower(strings.TrimSpace(algorithm)) {
	case "sha512":
		return "sha512", sha512.New()
	case "sha1":
		return "sha1", sha1.New()
	case "md5":
		return "md5", md5.New()
	default:
		return "sha256", sha256.New()
	}
}
