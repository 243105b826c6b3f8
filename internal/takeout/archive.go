package takeout

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"photovault/internal/fileutil"
	"photovault/internal/logging"
	"photovault/internal/media"
	"photovault/internal/services"
)

// processArchive extracts one archive into a staging directory under the
// temp root and imports every media file it finds. The staging directory
// is removed afterwards regardless of outcome.
func (i *Importer) processArchive(ctx context.Context, archive string, stats *Stats, seen map[string]struct{}) error {
	logger := i.logger.With(logging.String("archive", filepath.Base(archive)))
	logger.Info("processing archive")

	staging, err := os.MkdirTemp(i.cfg.TempDir(), "takeout_")
	if err != nil {
		return fmt.Errorf("create staging directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(staging); err != nil {
			logger.Warn("staging directory not removed", logging.Error(err))
		}
	}()

	if err := extractArchive(archive, staging); err != nil {
		return err
	}

	files, err := collectMedia(staging)
	if err != nil {
		return fmt.Errorf("scan staging directory: %w", err)
	}
	stats.TotalFiles += len(files)
	logger.Debug("archive extracted", logging.Int("media_files", len(files)))

	for _, file := range files {
		if ctx.Err() != nil {
			return nil
		}
		if err := i.processFile(ctx, file, stats, seen); err != nil {
			stats.Errors++
			logging.ErrorWithContext(logger, "file not imported", "file_failed",
				logging.String("file", filepath.Base(file)),
				logging.Error(err),
				logging.String(logging.FieldImpact, "file skipped; import continues"))
		}
	}
	return nil
}

// extractArchive unpacks a zip archive into dir, refusing entries whose
// paths would land outside it.
func extractArchive(archive, dir string) error {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer zr.Close()

	root := filepath.Clean(dir) + string(os.PathSeparator)
	for _, entry := range zr.File {
		target := filepath.Join(dir, filepath.FromSlash(entry.Name))
		if !strings.HasPrefix(target, root) {
			return services.Wrap(services.ErrValidation, "takeout", "extract",
				fmt.Sprintf("archive entry %q escapes the staging directory", entry.Name), nil)
		}
		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create archive directory: %w", err)
			}
			continue
		}
		if err := extractEntry(entry, target); err != nil {
			return fmt.Errorf("extract %s: %w", entry.Name, err)
		}
	}
	return nil
}

func extractEntry(entry *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	rc, err := entry.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// collectMedia walks the staging tree and returns every image and video
// file in sorted order.
func collectMedia(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if media.Classify(d.Name()) == media.KindOther {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// processFile imports one extracted media file: content-hash dedup,
// capture-date naming from the Takeout sidecar, copy into photos/ or
// videos/, optional HEIC conversion, and a rewritten metadata sidecar.
func (i *Importer) processFile(ctx context.Context, file string, stats *Stats, seen map[string]struct{}) error {
	digest, err := media.HashFile(file, i.cfg.Dedup.HashAlgorithm, i.cfg.Backup.ChunkSize)
	if err != nil {
		return fmt.Errorf("hash file: %w", err)
	}
	if _, dup := seen[digest]; dup {
		stats.Duplicates++
		i.logger.Debug("duplicate payload skipped", logging.String("file", filepath.Base(file)))
		return nil
	}

	sidecar, hasSidecar := loadSidecar(file)
	taken := i.takenTime(file, sidecar)
	finalName := taken.UTC().Format("20060102_150405") + "_" + media.SanitizeFileName(filepath.Base(file))

	destDir := i.cfg.PhotosDir()
	if media.Classify(finalName) == media.KindVideo {
		destDir = i.cfg.VideosDir()
	}
	destPath := filepath.Join(destDir, finalName)
	if err := fileutil.CopyFileVerified(file, destPath); err != nil {
		return fmt.Errorf("copy into backup root: %w", err)
	}

	converted := false
	if i.converter != nil && media.NeedsConversion(finalName) {
		jpegPath, err := i.converter.ConvertToJPEG(ctx, destPath)
		if err != nil {
			logging.WarnWithContext(i.logger, "conversion failed, keeping original", "conversion_failed",
				logging.String("file", finalName),
				logging.Error(err),
				logging.String(logging.FieldImpact, "file kept in original format"))
		} else {
			destPath = jpegPath
			finalName = filepath.Base(jpegPath)
			converted = true
		}
	}

	if hasSidecar {
		if err := i.writeMetadata(finalName, sidecar); err != nil {
			i.logger.Warn("metadata sidecar not written",
				logging.String("file", finalName), logging.Error(err))
		}
	}

	seen[digest] = struct{}{}
	stats.Processed++
	if converted {
		stats.Converted++
	}
	i.logger.Debug("file imported",
		logging.String("file", finalName),
		logging.Bool("converted", converted))
	return nil
}

// writeMetadata stores the Takeout sidecar JSON next to the other
// artifact metadata, named after the final artifact stem.
func (i *Importer) writeMetadata(finalName string, sidecar map[string]any) error {
	stem := strings.TrimSuffix(finalName, filepath.Ext(finalName))
	data, err := json.MarshalIndent(sidecar, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	data = append(data, '\n')
	target := filepath.Join(i.cfg.MetadataDir(), stem+".json")
	return fileutil.WriteFileAtomic(target, data, 0o644)
}
