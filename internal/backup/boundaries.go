package backup

import (
	"context"
	"net/http"

	"photovault/internal/history"
	"photovault/internal/library"
)

// Source yields the remote listing for a run. Production wiring adapts
// *library.Client through NewClientSource; tests use slice-backed fakes.
type Source interface {
	Authenticate(ctx context.Context) error
	Items(ctx context.Context, albumID string) Iterator
}

// Iterator walks media items one at a time, the library.ItemIterator
// contract.
type Iterator interface {
	Next() bool
	Item() *library.MediaItem
	Err() error
}

// Fetcher downloads one locator to a destination path, retrying
// internally. *transfer.Downloader satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, url, dest string) error
}

// Converter turns a HEIC/HEIF artifact into a JPEG and reports the new
// path. *media.HEIFConverter satisfies it.
type Converter interface {
	ConvertToJPEG(ctx context.Context, src string) (string, error)
}

// History receives run rows as the run progresses. *history.Store
// satisfies it; nil disables persistence. Failures here never fail a run.
type History interface {
	BeginRun(ctx context.Context, kind, albumID string) (*history.Run, error)
	RecordItem(ctx context.Context, runID, itemID, filename, outcome, errorMessage string) error
	FinishRun(ctx context.Context, runID, status string, total, downloaded, processed, skipped, errored int) error
}

// NewClientSource adapts the library client to the Source boundary.
func NewClientSource(client *library.Client) Source {
	return clientSource{client: client}
}

type clientSource struct {
	client *library.Client
}

func (s clientSource) Authenticate(ctx context.Context) error {
	return s.client.Authenticate(ctx)
}

func (s clientSource) Items(ctx context.Context, albumID string) Iterator {
	return s.client.Items(ctx, albumID)
}

// HTTPClient lets the orchestrator build its default downloader on the
// authenticated session.
func (s clientSource) HTTPClient() *http.Client {
	return s.client.HTTPClient()
}
