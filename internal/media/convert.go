package media

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"photovault/internal/services"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onStdout func(string)) error
}

// Option configures the converter.
type Option func(*HEIFConverter)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *HEIFConverter) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// HEIFConverter wraps the external HEIF-to-JPEG conversion tool.
type HEIFConverter struct {
	binary  string
	quality int
	exec    Executor
}

// NewHEIFConverter constructs a converter around the given binary.
func NewHEIFConverter(binary string, quality int, opts ...Option) (*HEIFConverter, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("conversion binary required")
	}
	if quality < 1 || quality > 100 {
		return nil, fmt.Errorf("jpeg quality %d out of range", quality)
	}
	converter := &HEIFConverter{
		binary:  binary,
		quality: quality,
		exec:    commandExecutor{},
	}
	for _, opt := range opts {
		opt(converter)
	}
	return converter, nil
}

// ConvertToJPEG converts src in place: on success the JPEG sits next to the
// original (same stem, .jpg extension), the original is removed, and the new
// path is returned. On failure any partial output is removed, the original
// is kept, and the error carries the conversion marker so callers fall back
// to the untouched file.
func (c *HEIFConverter) ConvertToJPEG(ctx context.Context, src string) (string, error) {
	dst := strings.TrimSuffix(src, filepath.Ext(src)) + ".jpg"

	args := []string{"-q", strconv.Itoa(c.quality), src, dst}
	if err := c.exec.Run(ctx, c.binary, args, nil); err != nil {
		_ = os.Remove(dst)
		return "", services.Wrap(services.ErrConversion, "media", "convert", fmt.Sprintf("convert %s", src), err)
	}

	info, err := os.Stat(dst)
	if err != nil || info.Size() == 0 {
		_ = os.Remove(dst)
		return "", services.Wrap(services.ErrConversion, "media", "convert", fmt.Sprintf("converter produced no output for %s", src), err)
	}

	// The JPEG is already in place; a leftover original is only wasted space.
	_ = os.Remove(src)
	return dst, nil
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onStdout func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once

	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if onStdout != nil {
				onStdout(scanner.Text())
			}
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
		}
	}

	wg.Add(2)
	go scan(stdout)
	go scan(stderr)

	wg.Wait()
	if scanErr != nil {
		_ = cmd.Process.Kill()
		return fmt.Errorf("scan output: %w", scanErr)
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}
