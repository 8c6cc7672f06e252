package beeper

import (
	"context"
)

// Requester is the request engine every facade is built on. *Client
// implements it.
type Requester interface {
	// Do sends body as JSON (when non-nil) and decodes the response into result
	Do(ctx context.Context, method, path string, body, result any) error

	// DoQuery sends query as the URL query string with no body
	DoQuery(ctx context.Context, method, path string, query Query, result any) error
}

// ChatSearcher fetches pages of chats
type ChatSearcher interface {
	Search(ctx context.Context, params ChatSearchParams) (*Cursor[Chat], error)
	Iterate(params ChatSearchParams) *Pager[Chat]
}

// MessageSearcher fetches pages of messages
type MessageSearcher interface {
	Search(ctx context.Context, params MessageSearchParams) (*Cursor[Message], error)
	Iterate(params MessageSearchParams) *Pager[Message]
}

var (
	_ Requester       = (*Client)(nil)
	_ ChatSearcher    = (*Chats)(nil)
	_ MessageSearcher = (*Messages)(nil)
)
