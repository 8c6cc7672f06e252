// Package archive exports chats with their full message history to disk.
package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/beeperdesk/beeper"
)

const (
	DefaultConcurrency = 4
	DefaultPageSize    = 100
)

// Options controls what an Archiver writes
type Options struct {
	// Dir is the archive root. Each chat gets <Dir>/<network>/<title>_<id>/.
	Dir string

	// Formats to write, any of md, json, html and txt. Defaults to all.
	Formats []string

	// Concurrency bounds how many chats are archived at once
	Concurrency int

	// PageSize is the message page size requested from the API
	PageSize int
}

// Result describes one archived chat
type Result struct {
	Chat     beeper.Chat
	Dir      string
	Files    []string
	Messages int
}

// Summary is the outcome of ArchiveAll. Per-chat failures do not stop the
// run; they are collected in Failed keyed by chat ID.
type Summary struct {
	Archived []Result
	Failed   map[string]error
}

// Archiver fetches messages for chats and writes them out
type Archiver struct {
	messages *beeper.Messages
	opts     Options
	logger   zerolog.Logger
	now      func() time.Time
}

// New creates an Archiver. Unknown formats are rejected.
func New(messages *beeper.Messages, opts Options, logger zerolog.Logger) (*Archiver, error) {
	if opts.Dir == "" {
		return nil, errors.New("archive directory is required")
	}
	if len(opts.Formats) == 0 {
		opts.Formats = []string{"md", "json", "html", "txt"}
	}
	for _, format := range opts.Formats {
		if _, ok := renderers[format]; !ok {
			return nil, fmt.Errorf("unknown archive format: %s", format)
		}
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.PageSize < 1 {
		opts.PageSize = DefaultPageSize
	}

	return &Archiver{
		messages: messages,
		opts:     opts,
		logger:   logger.With().Str("component", "archive").Logger(),
		now:      time.Now,
	}, nil
}

// FetchMessages returns every message in chat, oldest first
func (a *Archiver) FetchMessages(ctx context.Context, chat beeper.Chat) ([]beeper.Message, error) {
	pager := a.messages.Iterate(beeper.MessageSearchParams{
		AccountIDs: []string{chat.AccountID},
		ChatIDs:    []string{chat.ID},
		Limit:      beeper.Ptr(a.opts.PageSize),
		Direction:  beeper.Ptr("before"),
	})

	messages, err := pager.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})

	a.logger.Debug().
		Str("chat", chat.ID).
		Int("messages", len(messages)).
		Int("pages", pager.Pages()).
		Msg("Fetched chat history")

	return messages, nil
}

// ArchiveChat fetches and writes one chat. An existing archive of the same
// chat is replaced.
func (a *Archiver) ArchiveChat(ctx context.Context, chat beeper.Chat) (Result, error) {
	messages, err := a.FetchMessages(ctx, chat)
	if err != nil {
		return Result{}, err
	}

	dir := filepath.Join(a.opts.Dir, chatDir(chat))
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return Result{}, fmt.Errorf("failed to create network directory: %w", err)
	}

	// Files are written to a sibling directory first and swapped in at the
	// end, so a failed run leaves the previous archive untouched.
	staging, err := os.MkdirTemp(filepath.Dir(dir), "."+filepath.Base(dir)+"-*")
	if err != nil {
		return Result{}, fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)
	if err := os.Chmod(staging, 0o755); err != nil {
		return Result{}, fmt.Errorf("failed to create staging directory: %w", err)
	}

	t := transcript{Chat: chat, Messages: messages, ArchivedAt: a.now()}
	result := Result{Chat: chat, Dir: dir, Messages: len(messages)}
	name := baseName(chat)

	for _, format := range a.opts.Formats {
		data, err := renderers[format](t)
		if err != nil {
			return Result{}, fmt.Errorf("failed to render %s archive: %w", format, err)
		}
		file := name + "." + format
		if err := os.WriteFile(filepath.Join(staging, file), data, 0o644); err != nil {
			return Result{}, fmt.Errorf("failed to write %s archive: %w", format, err)
		}
		result.Files = append(result.Files, filepath.Join(dir, file))
	}

	if err := os.RemoveAll(dir); err != nil {
		return Result{}, fmt.Errorf("failed to replace chat directory: %w", err)
	}
	if err := os.Rename(staging, dir); err != nil {
		return Result{}, fmt.Errorf("failed to replace chat directory: %w", err)
	}

	return result, nil
}

// ArchiveAll archives chats with bounded concurrency. The returned error is
// only set when ctx is done; individual chat failures land in Summary.Failed.
func (a *Archiver) ArchiveAll(ctx context.Context, chats []beeper.Chat) (*Summary, error) {
	summary := &Summary{Failed: make(map[string]error)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Concurrency)

	for _, chat := range chats {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			result, err := a.ArchiveChat(gctx, chat)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				a.logger.Warn().
					Err(err).
					Str("chat", chat.ID).
					Str("title", chat.Title).
					Msg("Failed to archive chat")
				summary.Failed[chat.ID] = err
				return nil
			}

			a.logger.Info().
				Str("chat", chat.ID).
				Str("title", chat.Title).
				Int("messages", result.Messages).
				Str("dir", result.Dir).
				Msg("Archived chat")
			summary.Archived = append(summary.Archived, result)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summary, err
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}

	// Keep the caller's order regardless of completion order
	order := make(map[string]int, len(chats))
	for i, chat := range chats {
		order[chat.ID] = i
	}
	slices.SortStableFunc(summary.Archived, func(x, y Result) int {
		return order[x.Chat.ID] - order[y.Chat.ID]
	})

	return summary, nil
}
