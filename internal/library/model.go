package library

import "strings"

// Album is one album descriptor as returned by the albums listing.
type Album struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	ProductURL        string `json:"productUrl"`
	MediaItemsCount   string `json:"mediaItemsCount"`
	CoverPhotoBaseURL string `json:"coverPhotoBaseUrl"`
}

// PhotoMetadata carries the camera fields present on photo items.
type PhotoMetadata struct {
	CameraMake      string  `json:"cameraMake"`
	CameraModel     string  `json:"cameraModel"`
	FocalLength     float64 `json:"focalLength"`
	ApertureFNumber float64 `json:"apertureFNumber"`
	ISOEquivalent   int     `json:"isoEquivalent"`
	ExposureTime    string  `json:"exposureTime"`
}

// VideoMetadata carries the camera fields present on video items.
type VideoMetadata struct {
	CameraMake  string  `json:"cameraMake"`
	CameraModel string  `json:"cameraModel"`
	FPS         float64 `json:"fps"`
	Status      string  `json:"status"`
}

// MediaMetadata is the per-item metadata submessage. Width and height are
// decimal strings on the wire and are preserved as such.
type MediaMetadata struct {
	CreationTime string         `json:"creationTime"`
	Width        string         `json:"width"`
	Height       string         `json:"height"`
	Photo        *PhotoMetadata `json:"photo,omitempty"`
	Video        *VideoMetadata `json:"video,omitempty"`
}

// MediaItem is one library item descriptor.
type MediaItem struct {
	ID            string        `json:"id"`
	Description   string        `json:"description"`
	ProductURL    string        `json:"productUrl"`
	BaseURL       string        `json:"baseUrl"`
	MimeType      string        `json:"mimeType"`
	MediaMetadata MediaMetadata `json:"mediaMetadata"`
	Filename      string        `json:"filename"`
}

// IsVideo reports whether the item carries a video MIME type.
func (m *MediaItem) IsVideo() bool {
	return strings.HasPrefix(m.MimeType, "video/")
}

// DownloadLocator returns the URL that serves the original bytes and the
// filename the API reports. Videos take the =dv qualifier, everything else
// =d (the original-quality download forms).
func (m *MediaItem) DownloadLocator() (url, filename string) {
	filename = m.Filename
	if filename == "" {
		filename = "unknown"
	}
	if m.IsVideo() {
		return m.BaseURL + "=dv", filename
	}
	return m.BaseURL + "=d", filename
}

// Metadata flattens the descriptor into the sidecar fields. Camera fields
// appear only when the photo submessage was present; absent descriptor
// fields come through as zero values.
func (m *MediaItem) Metadata() map[string]any {
	metadata := map[string]any{
		"id":            m.ID,
		"filename":      m.Filename,
		"mime_type":     m.MimeType,
		"creation_time": m.MediaMetadata.CreationTime,
		"width":         m.MediaMetadata.Width,
		"height":        m.MediaMetadata.Height,
		"description":   m.Description,
	}

	if photo := m.MediaMetadata.Photo; photo != nil {
		metadata["camera_make"] = photo.CameraMake
		metadata["camera_model"] = photo.CameraModel
		metadata["focal_length"] = photo.FocalLength
		metadata["aperture_f_number"] = photo.ApertureFNumber
		metadata["iso_equivalent"] = photo.ISOEquivalent
		metadata["exposure_time"] = photo.ExposureTime
	}

	return metadata
}
