package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/s0up4200/beeperdesk/beeper"
)

const dateTimeFormat = "2006-01-02 15:04"

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer, headers ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	return tw
}

func row(tw *tabwriter.Writer, cols ...string) {
	fmt.Fprintln(tw, strings.Join(cols, "\t"))
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format(dateTimeFormat)
}

func flags(chat beeper.Chat) string {
	var out []string
	if chat.IsPinned != nil && *chat.IsPinned {
		out = append(out, "pinned")
	}
	if chat.IsMuted != nil && *chat.IsMuted {
		out = append(out, "muted")
	}
	if chat.IsArchived != nil && *chat.IsArchived {
		out = append(out, "archived")
	}
	return strings.Join(out, ",")
}

func printAccounts(w io.Writer, accounts []beeper.Account) error {
	tw := newTable(w, "ACCOUNT", "NETWORK", "USER")
	for _, a := range accounts {
		row(tw, a.AccountID, a.Network, a.User.DisplayName())
	}
	return tw.Flush()
}

func printChats(w io.Writer, chats []beeper.Chat) error {
	tw := newTable(w, "ID", "NETWORK", "TYPE", "TITLE", "UNREAD", "LAST ACTIVITY", "FLAGS")
	for _, c := range chats {
		row(tw, c.ID, c.Network, c.Type, truncate(c.Title, 40), fmt.Sprint(c.UnreadCount), formatTime(c.LastActivity), flags(c))
	}
	return tw.Flush()
}

func printChat(w io.Writer, chat beeper.Chat) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	row(tw, "ID:", chat.ID)
	row(tw, "Title:", chat.Title)
	row(tw, "Network:", chat.Network)
	row(tw, "Account:", chat.AccountID)
	row(tw, "Type:", chat.Type)
	row(tw, "Unread:", fmt.Sprint(chat.UnreadCount))
	row(tw, "Last activity:", formatTime(chat.LastActivity))
	if f := flags(chat); f != "" {
		row(tw, "Flags:", f)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(chat.Participants.Items) == 0 {
		return nil
	}
	fmt.Fprintf(w, "\nParticipants (%d):\n", max(chat.Participants.Total, len(chat.Participants.Items)))
	for _, p := range chat.Participants.Items {
		fmt.Fprintf(w, "  %s (%s)\n", p.DisplayName(), p.ID)
	}
	if chat.Participants.HasMore {
		fmt.Fprintln(w, "  ...")
	}
	return nil
}

func printMessages(w io.Writer, messages []beeper.Message) error {
	tw := newTable(w, "TIME", "CHAT", "SENDER", "TEXT")
	for _, m := range messages {
		sender := m.SenderID
		if m.SenderName != nil && *m.SenderName != "" {
			sender = *m.SenderName
		}
		text := ""
		if m.Text != nil {
			text = *m.Text
		}
		if len(m.Attachments) > 0 {
			text = strings.TrimSpace(fmt.Sprintf("%s [%d attachment(s)]", text, len(m.Attachments)))
		}
		row(tw, formatTime(&m.Timestamp), m.ChatID, truncate(sender, 24), truncate(text, 60))
	}
	return tw.Flush()
}

func printUsers(w io.Writer, users []beeper.User) error {
	tw := newTable(w, "ID", "NAME", "USERNAME", "PHONE")
	for _, u := range users {
		row(tw, u.ID, u.DisplayName(), deref(u.Username), deref(u.PhoneNumber))
	}
	return tw.Flush()
}

// printNextCursor tells the user how to fetch the following page
func printNextCursor[T any](w io.Writer, page *beeper.Cursor[T]) {
	if next, ok := page.Next(); ok {
		fmt.Fprintf(w, "\nMore results available: --cursor %s\n", next)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
