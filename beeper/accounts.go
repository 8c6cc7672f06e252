package beeper

import (
	"context"
	"net/http"
)

// Accounts handles account-related API operations
type Accounts struct {
	client *Client
}

// List retrieves all connected Beeper accounts available on this device
func (a *Accounts) List(ctx context.Context) ([]Account, error) {
	var accounts []Account
	if err := a.client.Do(ctx, http.MethodGet, "/v0/get-accounts", nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}
