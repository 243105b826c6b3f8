package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"photovault/internal/services"
)

type fakeExecutor struct {
	run    func(ctx context.Context, binary string, args []string) error
	binary string
	args   []string
	calls  int
}

func (f *fakeExecutor) Run(ctx context.Context, binary string, args []string, onStdout func(string)) error {
	f.calls++
	f.binary = binary
	f.args = args
	if f.run != nil {
		return f.run(ctx, binary, args)
	}
	return nil
}

func TestConvertToJPEGSuccess(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "live.heic")
	if err := os.WriteFile(src, []byte("heic bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	exec := &fakeExecutor{run: func(_ context.Context, _ string, args []string) error {
		// Simulate the tool writing the output file named by the last arg.
		return os.WriteFile(args[len(args)-1], []byte("jpeg bytes"), 0o644)
	}}

	converter, err := NewHEIFConverter("heif-convert", 95, WithExecutor(exec))
	if err != nil {
		t.Fatalf("NewHEIFConverter failed: %v", err)
	}

	dst, err := converter.ConvertToJPEG(context.Background(), src)
	if err != nil {
		t.Fatalf("ConvertToJPEG failed: %v", err)
	}
	if dst != filepath.Join(dir, "live.jpg") {
		t.Fatalf("unexpected output path: %q", dst)
	}
	if exec.binary != "heif-convert" {
		t.Fatalf("unexpected binary: %q", exec.binary)
	}
	wantArgs := []string{"-q", "95", src, dst}
	if len(exec.args) != len(wantArgs) {
		t.Fatalf("unexpected args: %v", exec.args)
	}
	for i, arg := range wantArgs {
		if exec.args[i] != arg {
			t.Fatalf("arg %d mismatch: got %q want %q", i, exec.args[i], arg)
		}
	}
	if _, err := os.Stat(src); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected source removed after conversion, stat returned %v", err)
	}
}

func TestConvertToJPEGFailureKeepsSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "live.heic")
	if err := os.WriteFile(src, []byte("heic bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	exec := &fakeExecutor{run: func(_ context.Context, _ string, args []string) error {
		// Partial output then failure.
		_ = os.WriteFile(args[len(args)-1], []byte("torn"), 0o644)
		return errors.New("exit status 1")
	}}

	converter, err := NewHEIFConverter("heif-convert", 95, WithExecutor(exec))
	if err != nil {
		t.Fatalf("NewHEIFConverter failed: %v", err)
	}

	_, err = converter.ConvertToJPEG(context.Background(), src)
	if err == nil {
		t.Fatal("expected conversion error")
	}
	if !errors.Is(err, services.ErrConversion) {
		t.Fatalf("expected conversion marker, got %v", err)
	}
	if _, statErr := os.Stat(src); statErr != nil {
		t.Fatalf("expected source kept after failure: %v", statErr)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "live.jpg")); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("expected partial output removed, stat returned %v", statErr)
	}
}

func TestConvertToJPEGEmptyOutputIsFailure(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "live.heic")
	if err := os.WriteFile(src, []byte("heic bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	exec := &fakeExecutor{run: func(_ context.Context, _ string, args []string) error {
		return os.WriteFile(args[len(args)-1], nil, 0o644)
	}}

	converter, err := NewHEIFConverter("heif-convert", 95, WithExecutor(exec))
	if err != nil {
		t.Fatalf("NewHEIFConverter failed: %v", err)
	}

	if _, err := converter.ConvertToJPEG(context.Background(), src); !errors.Is(err, services.ErrConversion) {
		t.Fatalf("expected conversion marker for empty output, got %v", err)
	}
}

func TestNewHEIFConverterValidation(t *testing.T) {
	if _, err := NewHEIFConverter("", 95); err == nil {
		t.Error("expected error for empty binary")
	}
	if _, err := NewHEIFConverter("heif-convert", 0); err == nil {
		t.Error("expected error for zero quality")
	}
	if _, err := NewHEIFConverter("heif-convert", 101); err == nil {
		t.Error("expected error for quality above 100")
	}
}
