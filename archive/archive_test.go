package archive

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/beeperdesk/beeper"
)

func newTestArchiver(t *testing.T, opts Options) *Archiver {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v0/search-messages", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "before", q.Get("direction"))

		switch q.Get("chatIDs[0]") {
		case "!family:beeper.com":
			if q.Get("cursor") == "" {
				w.Write([]byte(`{"items":[{"id":"m2","chatID":"!family:beeper.com","senderID":"u2","senderName":"Grace","sortKey":2,"timestamp":"2025-03-01T10:05:00Z","text":"<script>alert(1)</script> see you"}],"pagination":{"cursor":"older","hasMore":true}}`))
				return
			}
			assert.Equal(t, "older", q.Get("cursor"))
			w.Write([]byte(`{"items":[{"id":"m1","chatID":"!family:beeper.com","senderID":"u1","isSender":true,"sortKey":1,"timestamp":"2025-03-01T10:00:00Z","text":"dinner at 7?","attachments":[{"type":"img","fileName":"menu.png","fileSize":2048}]}],"pagination":{"hasMore":false}}`))
		case "!empty:beeper.com":
			w.Write([]byte(`{"items":[]}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"index unavailable"}`))
		}
	}))
	t.Cleanup(server.Close)

	client, err := beeper.NewClient(beeper.Config{AccessToken: "tok", BaseURL: server.URL}, zerolog.Nop())
	require.NoError(t, err)

	if opts.Dir == "" {
		opts.Dir = t.TempDir()
	}
	a, err := New(client.Messages, opts, zerolog.Nop())
	require.NoError(t, err)
	a.now = func() time.Time { return time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC) }
	return a
}

var familyChat = beeper.Chat{
	ID:        "!family:beeper.com",
	AccountID: "whatsapp",
	Network:   "WhatsApp",
	Title:     "Family <3",
	Type:      "group",
}

func TestNewValidatesOptions(t *testing.T) {
	_, err := New(nil, Options{}, zerolog.Nop())
	assert.Error(t, err)

	_, err = New(nil, Options{Dir: "x", Formats: []string{"pdf"}}, zerolog.Nop())
	assert.ErrorContains(t, err, "unknown archive format: pdf")

	a, err := New(nil, Options{Dir: "x"}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{"md", "json", "html", "txt"}, a.opts.Formats)
	assert.Equal(t, DefaultConcurrency, a.opts.Concurrency)
	assert.Equal(t, DefaultPageSize, a.opts.PageSize)
}

func TestFetchMessagesSortsOldestFirst(t *testing.T) {
	a := newTestArchiver(t, Options{})

	messages, err := a.FetchMessages(context.Background(), familyChat)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "m1", messages[0].ID)
	assert.Equal(t, "m2", messages[1].ID)
}

func TestArchiveChat(t *testing.T) {
	a := newTestArchiver(t, Options{})

	result, err := a.ArchiveChat(context.Background(), familyChat)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Messages)
	require.Len(t, result.Files, 4)
	assert.Equal(t, filepath.Join(a.opts.Dir, "whatsapp"), filepath.Dir(result.Dir))

	read := func(ext string) string {
		t.Helper()
		for _, f := range result.Files {
			if strings.HasSuffix(f, "."+ext) {
				data, err := os.ReadFile(f)
				require.NoError(t, err)
				return string(data)
			}
		}
		t.Fatalf("no %s file written", ext)
		return ""
	}

	md := read("md")
	assert.Contains(t, md, "# Family <3")
	assert.Contains(t, md, "**You** at 10:00:00")
	assert.Contains(t, md, "`menu.png` (img) - 2.0 KB")
	assert.Less(t, strings.Index(md, "dinner at 7?"), strings.Index(md, "see you"))

	html := read("html")
	assert.Contains(t, html, "<title>Family &lt;3</title>")
	assert.Contains(t, html, "<blockquote>")
	assert.NotContains(t, html, "<script>alert(1)</script>")

	var decoded transcript
	require.NoError(t, json.Unmarshal([]byte(read("json")), &decoded))
	assert.Equal(t, familyChat.ID, decoded.Chat.ID)
	assert.Len(t, decoded.Messages, 2)

	txt := read("txt")
	assert.Contains(t, txt, "[10:05:00] Grace: <script>alert(1)</script> see you")
	assert.Contains(t, txt, "attachment: menu.png (img) - 2.0 KB")
}

func TestArchiveChatKeepsPreviousArchiveOnFailure(t *testing.T) {
	a := newTestArchiver(t, Options{Formats: []string{"md"}})
	ctx := context.Background()

	first, err := a.ArchiveChat(ctx, familyChat)
	require.NoError(t, err)
	require.Len(t, first.Files, 1)
	before, err := os.ReadFile(first.Files[0])
	require.NoError(t, err)

	saved := renderers["txt"]
	renderers["txt"] = func(transcript) ([]byte, error) { return nil, errors.New("disk full") }
	t.Cleanup(func() { renderers["txt"] = saved })

	a.opts.Formats = []string{"md", "txt"}
	_, err = a.ArchiveChat(ctx, familyChat)
	assert.ErrorContains(t, err, "disk full")

	after, err := os.ReadFile(first.Files[0])
	require.NoError(t, err)
	assert.Equal(t, before, after)

	entries, err := os.ReadDir(filepath.Dir(first.Dir))
	require.NoError(t, err)
	require.Len(t, entries, 1, "staging directory left behind")
	assert.Equal(t, filepath.Base(first.Dir), entries[0].Name())

	// A successful run replaces the archive, including stale files
	a.opts.Formats = []string{"json"}
	second, err := a.ArchiveChat(ctx, familyChat)
	require.NoError(t, err)
	assert.Equal(t, first.Dir, second.Dir)
	files, err := os.ReadDir(second.Dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.True(t, strings.HasSuffix(files[0].Name(), ".json"))
}

func TestArchiveAllCollectsFailures(t *testing.T) {
	a := newTestArchiver(t, Options{Formats: []string{"md"}, Concurrency: 2})

	chats := []beeper.Chat{
		familyChat,
		{ID: "!broken:beeper.com", Network: "Signal", Title: "Broken"},
		{ID: "!empty:beeper.com", Network: "Signal", Title: "Quiet"},
	}

	summary, err := a.ArchiveAll(context.Background(), chats)
	require.NoError(t, err)

	require.Len(t, summary.Archived, 2)
	assert.Equal(t, familyChat.ID, summary.Archived[0].Chat.ID)
	assert.Equal(t, "!empty:beeper.com", summary.Archived[1].Chat.ID)
	assert.Equal(t, 0, summary.Archived[1].Messages)

	require.Contains(t, summary.Failed, "!broken:beeper.com")
	assert.ErrorIs(t, summary.Failed["!broken:beeper.com"], beeper.ErrInternalServer)
}

func TestArchiveAllCanceled(t *testing.T) {
	a := newTestArchiver(t, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.ArchiveAll(ctx, []beeper.Chat{familyChat})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "hello-world", sanitizeFilename("Hello, World!"))
	assert.Equal(t, "chat", sanitizeFilename(""))
	assert.Equal(t, "chat", sanitizeFilename("!!!"))

	id := chatIdentifier(familyChat)
	assert.True(t, strings.HasPrefix(id, "family-beeper-co-"), id)
	assert.Len(t, id, len("family-beeper-co-")+6)
	assert.Equal(t, id, chatIdentifier(familyChat))

	assert.Equal(t, filepath.Join("whatsapp", "family-3_"+id), chatDir(familyChat))
	assert.Equal(t, "family-3_"+id+"_messages", baseName(familyChat))

	long := beeper.Chat{ID: "x", Title: strings.Repeat("a", 100)}
	assert.Len(t, chatTitleSlug(long), maxTitleLen)
}
