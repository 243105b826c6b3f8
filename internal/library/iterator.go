package library

import (
	"context"
	"fmt"
	"net/url"

	"photovault/internal/logging"
	"photovault/internal/services"
)

type itemsPage struct {
	MediaItems    []MediaItem `json:"mediaItems"`
	NextPageToken string      `json:"nextPageToken"`
}

type searchRequest struct {
	AlbumID   string `json:"albumId"`
	PageSize  int    `json:"pageSize"`
	PageToken string `json:"pageToken,omitempty"`
}

// ItemIterator walks a listing one item at a time, fetching pages on demand
// so the full library is never held in memory.
//
// Usage follows the sql.Rows shape:
//
//	it := client.Items(ctx, albumID)
//	for it.Next() {
//	    item := it.Item()
//	    ...
//	}
//	if err := it.Err(); err != nil { ... }
type ItemIterator struct {
	ctx      context.Context
	client   *Client
	albumID  string
	pageSize int

	page      []MediaItem
	idx       int
	pageToken string
	done      bool
	err       error
	retrieved int
}

// Items returns an iterator over the account's media items, scoped to an
// album when albumID is non-empty.
func (c *Client) Items(ctx context.Context, albumID string) *ItemIterator {
	pageSize := c.settings.PageSize
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return &ItemIterator{
		ctx:      ctx,
		client:   c,
		albumID:  albumID,
		pageSize: pageSize,
		idx:      -1,
	}
}

// Next advances to the next item. It returns false when the listing is
// exhausted or a page fetch failed; Err distinguishes the two.
func (it *ItemIterator) Next() bool {
	if it.err != nil {
		return false
	}

	it.idx++
	for it.idx >= len(it.page) {
		if it.done {
			return false
		}
		if err := it.fetchPage(); err != nil {
			it.err = err
			return false
		}
		it.idx = 0
		if len(it.page) == 0 {
			it.done = true
			return false
		}
	}

	it.retrieved++
	if it.retrieved%1000 == 0 {
		it.client.logger.Debug("enumeration progress", logging.Int("retrieved", it.retrieved))
	}
	return true
}

// Item returns the current item. Valid only after a true Next.
func (it *ItemIterator) Item() *MediaItem {
	if it.idx < 0 || it.idx >= len(it.page) {
		return nil
	}
	return &it.page[it.idx]
}

// Err returns the first failure encountered while paging, if any.
func (it *ItemIterator) Err() error {
	return it.err
}

// Retrieved reports how many items the iterator has yielded so far.
func (it *ItemIterator) Retrieved() int {
	return it.retrieved
}

func (it *ItemIterator) fetchPage() error {
	var page itemsPage
	var err error

	if it.albumID == "" {
		endpoint := fmt.Sprintf("%s/mediaItems?pageSize=%d", it.client.baseURL, it.pageSize)
		if it.pageToken != "" {
			endpoint += "&pageToken=" + url.QueryEscape(it.pageToken)
		}
		err = it.client.getJSON(it.ctx, endpoint, &page)
	} else {
		err = it.client.postJSON(it.ctx, it.client.baseURL+"/mediaItems:search", searchRequest{
			AlbumID:   it.albumID,
			PageSize:  it.pageSize,
			PageToken: it.pageToken,
		}, &page)
	}
	if err != nil {
		return services.Wrap(services.ErrEnumeration, "library", "items", "fetch listing page", err)
	}

	it.page = page.MediaItems
	it.pageToken = page.NextPageToken
	it.done = page.NextPageToken == ""
	return nil
}
