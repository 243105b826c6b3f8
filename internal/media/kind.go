package media

import (
	"path/filepath"
	"strings"
)

// Kind is the coarse classification of a library item.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
	KindOther Kind = "other"
)

var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".heic": {},
	".heif": {},
	".webp": {},
	".tiff": {},
	".bmp":  {},
}

var videoExtensions = map[string]struct{}{
	".mp4": {},
	".mov": {},
	".avi": {},
	".m4v": {},
	".mkv": {},
}

// Classify reports whether the named file is an image, a video, or
// something else, judged by extension alone.
func Classify(name string) Kind {
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := imageExtensions[ext]; ok {
		return KindImage
	}
	if _, ok := videoExtensions[ext]; ok {
		return KindVideo
	}
	return KindOther
}

// NeedsConversion reports whether the named file is a HEIF container that
// the conversion step turns into a JPEG. Whether conversion actually runs
// is the caller's decision.
func NeedsConversion(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".heic" || ext == ".heif"
}
