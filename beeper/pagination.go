package beeper

import (
	"context"
	"encoding/json"
)

// Cursor is the envelope returned by list and search endpoints
type Cursor[T any] struct {
	Items      []T         `json:"items"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination contains pagination metadata
type Pagination struct {
	Cursor    *string `json:"cursor,omitempty"`
	Limit     *int    `json:"limit,omitempty"`
	Direction *string `json:"direction,omitempty"`
	HasMore   bool    `json:"hasMore"`
}

// UnmarshalJSON accepts both hasMore and the older has_more spelling.
func (p *Pagination) UnmarshalJSON(data []byte) error {
	var wire struct {
		Cursor        *string `json:"cursor"`
		Limit         *int    `json:"limit"`
		Direction     *string `json:"direction"`
		HasMore       *bool   `json:"hasMore"`
		HasMoreLegacy *bool   `json:"has_more"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*p = Pagination{
		Cursor:    wire.Cursor,
		Limit:     wire.Limit,
		Direction: wire.Direction,
	}
	switch {
	case wire.HasMore != nil:
		p.HasMore = *wire.HasMore
	case wire.HasMoreLegacy != nil:
		p.HasMore = *wire.HasMoreLegacy
	}
	return nil
}

// Next returns the cursor to request the following page with. ok is false
// when there is nothing more to fetch, including the case where the server
// claims more results but sent no cursor to reach them.
func (c *Cursor[T]) Next() (cursor string, ok bool) {
	if c == nil || c.Pagination == nil || !c.Pagination.HasMore {
		return "", false
	}
	if c.Pagination.Cursor == nil || *c.Pagination.Cursor == "" {
		return "", false
	}
	return *c.Pagination.Cursor, true
}

// PageFetcher fetches one page starting at cursor (nil for the first page)
type PageFetcher[T any] func(ctx context.Context, cursor *string) (*Cursor[T], error)

// Pager walks a paginated endpoint by feeding each returned cursor into the
// next request. Items are returned page by page; the server guarantees
// neither deduplication nor ordering across pages.
//
// A Pager is not safe for concurrent use.
type Pager[T any] struct {
	fetch  PageFetcher[T]
	cursor *string
	done   bool
	pages  int
}

// NewPager creates a pager. start is the cursor for the first request, or
// nil to begin at the first page.
func NewPager[T any](start *string, fetch PageFetcher[T]) *Pager[T] {
	return &Pager[T]{fetch: fetch, cursor: start}
}

// Next fetches the next page. It returns nil, nil once the pages are
// exhausted. An empty, non-nil slice means the page existed but was empty.
func (p *Pager[T]) Next(ctx context.Context) ([]T, error) {
	if p.done {
		return nil, nil
	}

	page, err := p.fetch(ctx, p.cursor)
	if err != nil {
		return nil, err
	}
	p.pages++

	next, ok := page.Next()
	// A repeated cursor would request the same page forever.
	if !ok || (p.cursor != nil && *p.cursor == next) {
		p.done = true
	} else {
		p.cursor = &next
	}

	if page.Items == nil {
		return []T{}, nil
	}
	return page.Items, nil
}

// Done reports whether the last page has been fetched
func (p *Pager[T]) Done() bool {
	return p.done
}

// Pages returns the number of pages fetched so far
func (p *Pager[T]) Pages() int {
	return p.pages
}

// Collect fetches all remaining pages and returns their items concatenated
// in page order. On error the items gathered so far are returned with it.
func (p *Pager[T]) Collect(ctx context.Context) ([]T, error) {
	var all []T
	for !p.done {
		items, err := p.Next(ctx)
		if err != nil {
			return all, err
		}
		all = append(all, items...)
	}
	return all, nil
}
