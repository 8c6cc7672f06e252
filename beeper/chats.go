package beeper

import (
	"context"
	"net/http"
	"time"
)

// Chats handles chat-related API operations
type Chats struct {
	client    *Client
	Reminders *Reminders
}

// ChatCreateParams represents parameters for creating a chat
type ChatCreateParams struct {
	AccountID      string   `json:"accountID"`
	ParticipantIDs []string `json:"participantIDs"`
	Type           string   `json:"type"` // single, group
	Title          *string  `json:"title,omitempty"`
}

// ChatCreateResponse represents the response from creating a chat
type ChatCreateResponse struct {
	Chat    Chat   `json:"chat"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ChatRetrieveParams identifies the chat to fetch
type ChatRetrieveParams struct {
	ChatID string `json:"chatID"`
}

// EncodeQuery implements QueryEncoder
func (p ChatRetrieveParams) EncodeQuery() Query {
	return Query{}.Add("chatID", p.ChatID)
}

// ChatArchiveParams represents parameters for archiving a chat
type ChatArchiveParams struct {
	ChatID   string `json:"chatID"`
	Archived bool   `json:"archived"`
}

// ChatSearchParams represents parameters for searching chats
type ChatSearchParams struct {
	AccountIDs   []string
	ChatType     *string // single, group
	IncludeMuted *bool
	Limit        *int
	Cursor       *string
	Direction    *string // before, after
	Scope        *string // titles, participants
	Query        *string
}

// EncodeQuery implements QueryEncoder
func (p ChatSearchParams) EncodeQuery() Query {
	return Query{}.
		List("accountIDs", p.AccountIDs).
		OptString("chatType", p.ChatType).
		OptBool("includeMuted", p.IncludeMuted).
		OptInt("limit", p.Limit).
		OptString("cursor", p.Cursor).
		OptString("direction", p.Direction).
		OptString("scope", p.Scope).
		OptString("query", p.Query)
}

// Create creates a single or group chat on a specific account
func (c *Chats) Create(ctx context.Context, params ChatCreateParams) (*ChatCreateResponse, error) {
	var result ChatCreateResponse
	if err := c.client.Do(ctx, http.MethodPost, "/v0/create-chat", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Retrieve gets chat details including metadata and participants
func (c *Chats) Retrieve(ctx context.Context, params ChatRetrieveParams) (*Chat, error) {
	var chat Chat
	if err := c.client.DoQuery(ctx, http.MethodGet, "/v0/get-chat", params.EncodeQuery(), &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

// Archive archives or unarchives a chat
func (c *Chats) Archive(ctx context.Context, params ChatArchiveParams) (*BaseResponse, error) {
	var result BaseResponse
	if err := c.client.Do(ctx, http.MethodPost, "/v0/archive-chat", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Search returns one page of chats matching params
func (c *Chats) Search(ctx context.Context, params ChatSearchParams) (*Cursor[Chat], error) {
	var page Cursor[Chat]
	if err := c.client.DoQuery(ctx, http.MethodGet, "/v0/search-chats", params.EncodeQuery(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Iterate returns a Pager over every page of chats matching params.
// params.Cursor, if set, is where the first page starts.
func (c *Chats) Iterate(params ChatSearchParams) *Pager[Chat] {
	return NewPager(params.Cursor, func(ctx context.Context, cursor *string) (*Cursor[Chat], error) {
		page := params
		page.Cursor = cursor
		return c.Search(ctx, page)
	})
}

// Reminders handles chat reminder operations
type Reminders struct {
	client *Client
}

// ReminderCreateParams represents parameters for creating a reminder
type ReminderCreateParams struct {
	ChatID    string    `json:"chatID"`
	Timestamp time.Time `json:"timestamp"`
	Message   *string   `json:"message,omitempty"`
}

// ReminderDeleteParams represents parameters for deleting a reminder
type ReminderDeleteParams struct {
	ChatID string `json:"chatID"`
}

// Create sets a reminder for a chat at a specific time
func (r *Reminders) Create(ctx context.Context, params ReminderCreateParams) (*BaseResponse, error) {
	var result BaseResponse
	if err := r.client.Do(ctx, http.MethodPost, "/v0/set-chat-reminder", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Delete clears a chat reminder
func (r *Reminders) Delete(ctx context.Context, params ReminderDeleteParams) (*BaseResponse, error) {
	var result BaseResponse
	if err := r.client.Do(ctx, http.MethodPost, "/v0/clear-chat-reminder", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
