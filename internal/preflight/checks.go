package preflight

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"
)

// CheckBackupRoot verifies the backup root is usable. An existing root must
// be a writable directory; a missing one passes when its parent can receive
// it (EnsureDirectories creates the tree at run start). Failures here are
// fatal: nothing can be backed up without a destination.
func CheckBackupRoot(path string) Result {
	const name = "Backup root"

	path = strings.TrimSpace(path)
	if path == "" {
		return Result{Name: name, Fatal: true, Detail: "backup root not configured"}
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return checkParentForCreation(name, path)
		}
		return Result{Name: name, Fatal: true, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Fatal: true, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Fatal: true, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}

	// Permission bits can lie on network mounts; prove writability with a
	// real file.
	probe := filepath.Join(path, ".photovault_write_test")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return Result{Name: name, Fatal: true, Detail: fmt.Sprintf("%s (error: write probe failed: %v)", path, err)}
	}
	_ = os.Remove(probe)

	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

func checkParentForCreation(name, path string) Result {
	parent := filepath.Dir(path)
	info, err := os.Stat(parent)
	if err != nil {
		return Result{Name: name, Fatal: true, Detail: fmt.Sprintf("%s (error: parent %s does not exist)", path, parent)}
	}
	if !info.IsDir() {
		return Result{Name: name, Fatal: true, Detail: fmt.Sprintf("%s (error: parent %s is not a directory)", path, parent)}
	}
	if err := unix.Access(parent, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Fatal: true, Detail: fmt.Sprintf("%s (error: parent %s not writable: %v)", path, parent, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

// CheckDiskSpace verifies the volume holding path has at least minFreeGB
// gigabytes available. Below the threshold is a warning, not a stop: the
// run may still fit, and partial backups are preserved either way. A
// threshold of zero disables the check.
func CheckDiskSpace(path string, minFreeGB int) Result {
	const name = "Disk space"

	if minFreeGB <= 0 {
		return Result{Name: name, Passed: true, Detail: "check disabled"}
	}

	free, err := FreeSpace(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}

	required := uint64(minFreeGB) * 1024 * 1024 * 1024
	if free < required {
		return Result{Name: name, Detail: fmt.Sprintf("%s free, %dGB required", humanize.IBytes(free), minFreeGB)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s free", humanize.IBytes(free))}
}

// FreeSpace returns the available bytes on the volume holding path. When
// path does not exist yet the nearest existing parent is measured instead.
func FreeSpace(path string) (uint64, error) {
	probe := path
	for {
		if _, err := os.Stat(probe); err == nil {
			break
		}
		parent := filepath.Dir(probe)
		if parent == probe {
			break
		}
		probe = parent
	}

	var stat unix.Statfs_t
	if err := unix.Statfs(probe, &stat); err != nil {
		return 0, err
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}

// CheckCredentialsFile verifies the OAuth credentials file is readable.
// A missing file is not fatal here; authentication reports it with an
// actionable error when the run actually starts.
func CheckCredentialsFile(path string) Result {
	const name = "API credentials"

	path = strings.TrimSpace(path)
	if path == "" {
		return Result{Name: name, Detail: "credentials file not configured"}
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (not found; download it from the Google Cloud console)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckConverterTool verifies the HEIC conversion binary resolves on PATH.
// Missing is advisory only; conversion failures fall back to the original
// file, so a run without the tool still completes.
func CheckConverterTool(binary string) Result {
	const name = "HEIC converter"

	binary = strings.TrimSpace(binary)
	if binary == "" {
		return Result{Name: name, Detail: "converter binary not configured"}
	}
	resolved, err := exec.LookPath(binary)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s not found on PATH (HEIC files will be kept unconverted)", binary)}
	}
	return Result{Name: name, Passed: true, Detail: resolved}
}
