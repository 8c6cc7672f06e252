// Package beeper provides a client for the Beeper Desktop API.
//
// Beeper Desktop serves a local JSON/HTTP API (by default on
// http://localhost:23373) that exposes the accounts, chats and messages of
// every network connected to the app. This package wraps it in typed
// operations grouped by resource area.
//
// # Architecture
//
// The package is organized into several components:
//
//   - Client: the request engine. It resolves paths, attaches headers,
//     classifies failures and retries the retryable ones
//   - Query: an ordered query-string builder used by GET operations
//   - Cursor and Pager: the cursor pagination envelope and a loop that
//     drives it
//   - Facades: Accounts, App, Chats (with Reminders), Contacts, Messages
//     and Token, each a thin set of operations on top of the Client
//
// # Usage
//
//	cfg, err := beeper.ConfigFromEnv()
//	if err != nil {
//		log.Fatal(err)
//	}
//	client, err := beeper.NewClient(cfg, zerolog.New(os.Stderr))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	ctx := context.Background()
//	accounts, err := client.Accounts.List(ctx)
//
//	// Walk every page of chat results
//	chats, err := client.Chats.Iterate(beeper.ChatSearchParams{
//		Limit: beeper.Ptr(50),
//	}).Collect(ctx)
//
// # Retries
//
// Transport failures and HTTP 408, 409, 429 and 5xx responses are retried up
// to Config.MaxRetries additional times. The default delay grows linearly,
// one second per attempt; WithBackoff swaps in another schedule such as
// ExponentialBackoff. A response that arrives with a 2xx status but cannot be
// decoded is never retried.
//
// # Error Handling
//
// Every failure is a *Error whose Kind names exactly one variant. Each kind
// has a sentinel for errors.Is:
//
//	_, err := client.Chats.Retrieve(ctx, beeper.ChatRetrieveParams{ChatID: id})
//	switch {
//	case errors.Is(err, beeper.ErrNotFound):
//		// no such chat
//	case errors.Is(err, beeper.ErrAuthentication):
//		// token rejected
//	}
//
// HTTP errors carry the server's message, and its code and details when the
// body was the usual {"error", "code", "details"} envelope.
package beeper
