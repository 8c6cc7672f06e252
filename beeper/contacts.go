package beeper

import (
	"context"
	"net/http"
)

// Contacts handles contact-related API operations
type Contacts struct {
	client *Client
}

// ContactSearchParams represents parameters for searching contacts
type ContactSearchParams struct {
	AccountID string
	Query     string
}

// EncodeQuery implements QueryEncoder
func (p ContactSearchParams) EncodeQuery() Query {
	return Query{}.Add("accountID", p.AccountID).Add("query", p.Query)
}

// ContactSearchResponse represents the response from searching contacts
type ContactSearchResponse struct {
	Items []User `json:"items"`
}

// Search looks up users reachable through one account
func (c *Contacts) Search(ctx context.Context, params ContactSearchParams) (*ContactSearchResponse, error) {
	var result ContactSearchResponse
	if err := c.client.DoQuery(ctx, http.MethodGet, "/v0/search-users", params.EncodeQuery(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}
