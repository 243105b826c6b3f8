package library_test

import (
	"encoding/json"
	"testing"

	"photovault/internal/library"
)

func TestDownloadLocatorQualifiers(t *testing.T) {
	photo := &library.MediaItem{
		BaseURL:  "https://lh3.example.com/abc",
		MimeType: "image/jpeg",
		Filename: "IMG_1.jpg",
	}
	url, filename := photo.DownloadLocator()
	if url != "https://lh3.example.com/abc=d" {
		t.Errorf("photo locator = %q, want =d qualifier", url)
	}
	if filename != "IMG_1.jpg" {
		t.Errorf("filename = %q", filename)
	}

	video := &library.MediaItem{
		BaseURL:  "https://lh3.example.com/def",
		MimeType: "video/mp4",
		Filename: "VID_1.mp4",
	}
	url, _ = video.DownloadLocator()
	if url != "https://lh3.example.com/def=dv" {
		t.Errorf("video locator = %q, want =dv qualifier", url)
	}
}

func TestDownloadLocatorMissingFilename(t *testing.T) {
	item := &library.MediaItem{BaseURL: "https://lh3.example.com/x", MimeType: "image/png"}
	_, filename := item.DownloadLocator()
	if filename != "unknown" {
		t.Errorf("filename fallback = %q, want %q", filename, "unknown")
	}
}

func TestMetadataIncludesCameraFieldsWhenPhotoPresent(t *testing.T) {
	item := &library.MediaItem{
		ID:          "item-1",
		Filename:    "IMG_1.jpg",
		MimeType:    "image/jpeg",
		Description: "lake at dawn",
		MediaMetadata: library.MediaMetadata{
			CreationTime: "2023-05-01T10:00:00Z",
			Width:        "4032",
			Height:       "3024",
			Photo: &library.PhotoMetadata{
				CameraMake:      "Apple",
				CameraModel:     "iPhone 12",
				FocalLength:     4.2,
				ApertureFNumber: 1.6,
				ISOEquivalent:   100,
				ExposureTime:    "0.001s",
			},
		},
	}

	metadata := item.Metadata()
	want := map[string]any{
		"id":                "item-1",
		"filename":          "IMG_1.jpg",
		"mime_type":         "image/jpeg",
		"creation_time":     "2023-05-01T10:00:00Z",
		"width":             "4032",
		"height":            "3024",
		"description":       "lake at dawn",
		"camera_make":       "Apple",
		"camera_model":      "iPhone 12",
		"focal_length":      4.2,
		"aperture_f_number": 1.6,
		"iso_equivalent":    100,
		"exposure_time":     "0.001s",
	}
	if len(metadata) != len(want) {
		t.Fatalf("metadata has %d keys, want %d: %v", len(metadata), len(want), metadata)
	}
	for key, value := range want {
		if metadata[key] != value {
			t.Errorf("metadata[%q] = %v, want %v", key, metadata[key], value)
		}
	}
}

func TestMetadataOmitsCameraFieldsWithoutPhoto(t *testing.T) {
	item := &library.MediaItem{
		ID:       "vid-1",
		Filename: "VID_1.mp4",
		MimeType: "video/mp4",
		MediaMetadata: library.MediaMetadata{
			CreationTime: "2023-05-01T10:00:00Z",
			Width:        "1920",
			Height:       "1080",
			Video:        &library.VideoMetadata{FPS: 30, Status: "READY"},
		},
	}

	metadata := item.Metadata()
	if _, ok := metadata["camera_make"]; ok {
		t.Error("video metadata should not carry camera_make")
	}
	if metadata["width"] != "1920" {
		t.Errorf("width = %v", metadata["width"])
	}
	if metadata["description"] != "" {
		t.Errorf("missing description should be empty, got %v", metadata["description"])
	}
}

func TestMediaItemDecodesWireFormat(t *testing.T) {
	payload := `{
		"id": "ABC123",
		"productUrl": "https://photos.example.com/p/ABC123",
		"baseUrl": "https://lh3.example.com/ABC123",
		"mimeType": "image/heic",
		"filename": "IMG_4242.HEIC",
		"mediaMetadata": {
			"creationTime": "2024-01-15T08:30:00Z",
			"width": "4032",
			"height": "3024",
			"photo": {"cameraMake": "Apple"}
		}
	}`

	var item library.MediaItem
	if err := json.Unmarshal([]byte(payload), &item); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if item.ID != "ABC123" {
		t.Errorf("ID = %q", item.ID)
	}
	if item.IsVideo() {
		t.Error("image item misclassified as video")
	}
	if item.MediaMetadata.Photo == nil || item.MediaMetadata.Photo.CameraMake != "Apple" {
		t.Errorf("photo submessage not decoded: %+v", item.MediaMetadata.Photo)
	}
	if item.MediaMetadata.Video != nil {
		t.Error("video submessage should be nil")
	}
}
