package beeper

import (
	"context"
	"net/http"
	"time"
)

// Token handles token-related API operations
type Token struct {
	client *Client
}

// UserInfo describes the access token the client authenticates with
type UserInfo struct {
	Iat      int64   `json:"iat"`
	Scope    string  `json:"scope"`
	Sub      string  `json:"sub"`
	TokenUse string  `json:"token_use"`
	Aud      *string `json:"aud,omitempty"`
	ClientID *string `json:"client_id,omitempty"`
	Exp      *int64  `json:"exp,omitempty"`
}

// IssuedAt returns the issue time
func (u UserInfo) IssuedAt() time.Time {
	return time.Unix(u.Iat, 0)
}

// ExpiresAt returns the expiry time and false when the token never expires
func (u UserInfo) ExpiresAt() (time.Time, bool) {
	if u.Exp == nil {
		return time.Time{}, false
	}
	return time.Unix(*u.Exp, 0), true
}

// Info returns information about the authenticated token
func (t *Token) Info(ctx context.Context) (*UserInfo, error) {
	var info UserInfo
	if err := t.client.Do(ctx, http.MethodGet, "/oauth/userinfo", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
