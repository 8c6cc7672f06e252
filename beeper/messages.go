package beeper

import (
	"context"
	"net/http"
	"time"
)

// Messages handles message-related API operations
type Messages struct {
	client *Client
}

// MessageSearchParams represents parameters for searching messages
type MessageSearchParams struct {
	AccountIDs         []string
	ChatIDs            []string
	ChatType           *string
	Cursor             *string
	DateAfter          *time.Time
	DateBefore         *time.Time
	Direction          *string // before, after
	ExcludeLowPriority *bool
	IncludeMuted       *bool
	Limit              *int
	MediaTypes         []string
	Query              *string
	SenderIDs          []string
}

// EncodeQuery implements QueryEncoder
func (p MessageSearchParams) EncodeQuery() Query {
	return Query{}.
		List("accountIDs", p.AccountIDs).
		List("chatIDs", p.ChatIDs).
		OptString("chatType", p.ChatType).
		OptString("cursor", p.Cursor).
		OptTime("dateAfter", p.DateAfter).
		OptTime("dateBefore", p.DateBefore).
		OptString("direction", p.Direction).
		OptBool("excludeLowPriority", p.ExcludeLowPriority).
		OptBool("includeMuted", p.IncludeMuted).
		OptInt("limit", p.Limit).
		List("mediaTypes", p.MediaTypes).
		OptString("query", p.Query).
		List("senderIDs", p.SenderIDs)
}

// MessageSendParams represents parameters for sending a message
type MessageSendParams struct {
	ChatID     string  `json:"chatID"`
	Text       string  `json:"text"`
	ReplyToID  *string `json:"replyToId,omitempty"`
	Attachment *string `json:"attachment,omitempty"`
}

// MessageSendResponse represents the response from sending a message
type MessageSendResponse struct {
	MessageID string `json:"messageID"`
	Deeplink  string `json:"deeplink"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

// Search returns one page of messages from Beeper's message index
func (m *Messages) Search(ctx context.Context, params MessageSearchParams) (*Cursor[Message], error) {
	var page Cursor[Message]
	if err := m.client.DoQuery(ctx, http.MethodGet, "/v0/search-messages", params.EncodeQuery(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Iterate returns a Pager over every page of messages matching params
func (m *Messages) Iterate(params MessageSearchParams) *Pager[Message] {
	return NewPager(params.Cursor, func(ctx context.Context, cursor *string) (*Cursor[Message], error) {
		page := params
		page.Cursor = cursor
		return m.Search(ctx, page)
	})
}

// Send sends a text message to a specific chat.
//
// Sending is not idempotent: a retried request after a timeout may deliver
// the message twice. Use a client with MaxRetries 0 when that matters.
func (m *Messages) Send(ctx context.Context, params MessageSendParams) (*MessageSendResponse, error) {
	var result MessageSendResponse
	if err := m.client.Do(ctx, http.MethodPost, "/v0/send-message", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
