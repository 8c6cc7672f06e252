package beeper

import (
	"context"
	"net/http"
)

// App handles operations on the desktop app itself
type App struct {
	client *Client
}

// AppDownloadAssetParams represents parameters for downloading an asset
type AppDownloadAssetParams struct {
	AssetURL string `json:"assetUrl"`
}

// AppDownloadAssetResponse represents the response from downloading an asset
type AppDownloadAssetResponse struct {
	LocalPath string `json:"localPath"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

// AppOpenParams represents parameters for opening the app
type AppOpenParams struct {
	ChatID          *string `json:"chatId,omitempty"`
	MessageID       *string `json:"messageId,omitempty"`
	DraftText       *string `json:"draftText,omitempty"`
	DraftAttachment *string `json:"draftAttachment,omitempty"`
}

// AppOpenResponse represents the response from opening the app
type AppOpenResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// AppSearchParams represents parameters for the combined search
type AppSearchParams struct {
	Query            string
	AccountIDs       []string
	ChatType         *string
	IncludeMuted     *bool
	Limit            *int
	MessageLimit     *int
	ParticipantLimit *int
}

// EncodeQuery implements QueryEncoder
func (p AppSearchParams) EncodeQuery() Query {
	return Query{}.
		Add("query", p.Query).
		List("accountIDs", p.AccountIDs).
		OptString("chatType", p.ChatType).
		OptBool("includeMuted", p.IncludeMuted).
		OptInt("limit", p.Limit).
		OptInt("messageLimit", p.MessageLimit).
		OptInt("participantLimit", p.ParticipantLimit)
}

// AppSearchResponse represents the response from searching
type AppSearchResponse struct {
	Chats    []ChatSearchResult    `json:"chats"`
	Messages []MessageSearchResult `json:"messages"`
}

// ChatSearchResult represents a chat in search results
type ChatSearchResult struct {
	Chat         Chat      `json:"chat"`
	Participants []User    `json:"participants"`
	Messages     []Message `json:"messages"`
}

// MessageSearchResult represents a message in search results
type MessageSearchResult struct {
	Message Message `json:"message"`
	Chat    Chat    `json:"chat"`
}

// DownloadAsset asks the app to download an asset and returns its local path
func (a *App) DownloadAsset(ctx context.Context, params AppDownloadAssetParams) (*AppDownloadAssetResponse, error) {
	var result AppDownloadAssetResponse
	if err := a.client.Do(ctx, http.MethodPost, "/v0/download-asset", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Open opens Beeper Desktop and optionally navigates to a specific chat
func (a *App) Open(ctx context.Context, params AppOpenParams) (*AppOpenResponse, error) {
	var result AppOpenResponse
	if err := a.client.Do(ctx, http.MethodPost, "/v0/open-app", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Search searches chats and messages in one call
func (a *App) Search(ctx context.Context, params AppSearchParams) (*AppSearchResponse, error) {
	var result AppSearchResponse
	if err := a.client.DoQuery(ctx, http.MethodGet, "/v0/search", params.EncodeQuery(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}
