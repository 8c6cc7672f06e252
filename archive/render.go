package archive

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/s0up4200/beeperdesk/beeper"
)

const (
	dayFormat  = "Monday, January 2, 2006"
	timeFormat = "2006-01-02 15:04:05 MST"
)

// transcript is everything the renderers need for one chat
type transcript struct {
	Chat       beeper.Chat      `json:"chat"`
	Messages   []beeper.Message `json:"messages"`
	ArchivedAt time.Time        `json:"archivedAt"`
}

// renderer produces one export format
type renderer func(t transcript) ([]byte, error)

var renderers = map[string]renderer{
	"md":   renderMarkdown,
	"json": renderJSON,
	"html": renderHTML,
	"txt":  renderText,
}

func senderName(msg beeper.Message) string {
	if msg.SenderName != nil && *msg.SenderName != "" {
		return *msg.SenderName
	}
	if msg.IsSender != nil && *msg.IsSender {
		return "You"
	}
	return msg.SenderID
}

func messageText(msg beeper.Message) string {
	if msg.Text == nil {
		return ""
	}
	return *msg.Text
}

func formatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

func attachmentLine(att beeper.Attachment) string {
	name := "attachment"
	if att.FileName != nil && *att.FileName != "" {
		name = *att.FileName
	}
	line := fmt.Sprintf("`%s` (%s)", name, att.Type)
	if att.FileSize != nil {
		line += " - " + formatFileSize(*att.FileSize)
	}
	if att.SrcURL != nil && *att.SrcURL != "" {
		line += " - " + *att.SrcURL
	}
	return line
}

func renderMarkdown(t transcript) ([]byte, error) {
	var md strings.Builder

	fmt.Fprintf(&md, "# %s\n\n", t.Chat.Title)
	fmt.Fprintf(&md, "**Network:** %s  \n", t.Chat.Network)
	fmt.Fprintf(&md, "**Chat ID:** `%s`  \n", t.Chat.ID)
	fmt.Fprintf(&md, "**Participants:** %d  \n", max(t.Chat.Participants.Total, len(t.Chat.Participants.Items)))
	if t.Chat.LastActivity != nil {
		fmt.Fprintf(&md, "**Last Activity:** %s  \n", t.Chat.LastActivity.Format(timeFormat))
	}
	fmt.Fprintf(&md, "**Messages:** %d  \n", len(t.Messages))
	fmt.Fprintf(&md, "**Archived:** %s\n\n", t.ArchivedAt.Format(timeFormat))

	if len(t.Chat.Participants.Items) > 0 {
		md.WriteString("## Participants\n\n")
		for _, p := range t.Chat.Participants.Items {
			fmt.Fprintf(&md, "- %s (`%s`)\n", p.DisplayName(), p.ID)
		}
		md.WriteString("\n")
	}

	md.WriteString("## Messages\n")
	var day string
	for _, msg := range t.Messages {
		if d := msg.Timestamp.Format(dayFormat); d != day {
			day = d
			fmt.Fprintf(&md, "\n### %s\n", day)
		}

		fmt.Fprintf(&md, "\n**%s** at %s\n\n", senderName(msg), msg.Timestamp.Format("15:04:05"))
		if text := messageText(msg); text != "" {
			fmt.Fprintf(&md, "> %s\n\n", strings.ReplaceAll(text, "\n", "\n> "))
		}
		for _, att := range msg.Attachments {
			fmt.Fprintf(&md, "- %s\n", attachmentLine(att))
		}
		if len(msg.Reactions) > 0 {
			keys := make([]string, 0, len(msg.Reactions))
			for _, r := range msg.Reactions {
				keys = append(keys, r.ReactionKey)
			}
			fmt.Fprintf(&md, "\nReactions: %s\n", strings.Join(keys, " "))
		}
	}

	return []byte(md.String()), nil
}

func renderJSON(t transcript) ([]byte, error) {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON archive: %w", err)
	}
	return append(data, '\n'), nil
}

var (
	markdownOnce sync.Once
	markdown     goldmark.Markdown
)

func markdownConverter() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdown = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
		)
	})
	return markdown
}

const htmlStyle = `body{font-family:-apple-system,BlinkMacSystemFont,"Segoe UI",sans-serif;max-width:820px;margin:2em auto;padding:0 1em;color:#222}
blockquote{margin:.3em 0 1em;padding:.4em .8em;border-left:3px solid #5b8def;background:#f4f7fd}
code{background:#f0f0f0;padding:0 .2em}`

// renderHTML converts the markdown transcript with goldmark. Raw HTML in
// message text is not passed through.
func renderHTML(t transcript) ([]byte, error) {
	source, err := renderMarkdown(t)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	if err := markdownConverter().Convert(source, &body); err != nil {
		return nil, fmt.Errorf("failed to render HTML: %w", err)
	}

	var out bytes.Buffer
	out.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&out, "<title>%s</title>\n", html.EscapeString(t.Chat.Title))
	fmt.Fprintf(&out, "<style>\n%s\n</style>\n</head>\n<body>\n", htmlStyle)
	out.Write(body.Bytes())
	out.WriteString("</body>\n</html>\n")
	return out.Bytes(), nil
}

func renderText(t transcript) ([]byte, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "Chat: %s\n", t.Chat.Title)
	fmt.Fprintf(&b, "Network: %s\n", t.Chat.Network)
	fmt.Fprintf(&b, "Chat ID: %s\n", t.Chat.ID)
	fmt.Fprintf(&b, "Messages: %d\n", len(t.Messages))
	fmt.Fprintf(&b, "Archived: %s\n", t.ArchivedAt.Format(timeFormat))

	var day string
	for _, msg := range t.Messages {
		if d := msg.Timestamp.Format(dayFormat); d != day {
			day = d
			fmt.Fprintf(&b, "\n== %s ==\n", day)
		}
		fmt.Fprintf(&b, "[%s] %s: %s\n", msg.Timestamp.Format("15:04:05"), senderName(msg), messageText(msg))
		for _, att := range msg.Attachments {
			fmt.Fprintf(&b, "    attachment: %s\n", strings.ReplaceAll(attachmentLine(att), "`", ""))
		}
	}

	return []byte(b.String()), nil
}
