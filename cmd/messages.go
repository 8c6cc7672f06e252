package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/s0up4200/beeperdesk/beeper"
)

var messagesCmd = &cobra.Command{
	Use:   "messages",
	Short: "Search and send messages",
}

var messageSearchOpts struct {
	query              string
	accounts           []string
	chats              []string
	senders            []string
	mediaTypes         []string
	chatType           string
	after              string
	before             string
	direction          string
	cursor             string
	excludeLowPriority bool
	includeMuted       bool
	limit              int
	all                bool
}

var messagesSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search messages across chats",
	Long: `Search messages. --after and --before take an RFC 3339 timestamp, a date, or
a duration relative to now such as -168h.`,
	RunE: runMessagesSearch,
}

var messageSendOpts struct {
	replyTo    string
	attachment string
	noRetry    bool
}

var messagesSendCmd = &cobra.Command{
	Use:   "send <chat-id> <text>",
	Short: "Send a text message to a chat",
	Long: `Send a text message. Failed sends are retried like any other request;
pass --no-retry to avoid a possible duplicate when the first attempt timed out
after the server had already accepted it.`,
	Args: cobra.ExactArgs(2),
	RunE: runMessagesSend,
}

func init() {
	f := messagesSearchCmd.Flags()
	f.StringVarP(&messageSearchOpts.query, "query", "q", "", "text to search for")
	f.StringSliceVarP(&messageSearchOpts.accounts, "account", "a", nil, "limit to account IDs (repeatable)")
	f.StringSliceVarP(&messageSearchOpts.chats, "chat", "c", nil, "limit to chat IDs (repeatable)")
	f.StringSliceVar(&messageSearchOpts.senders, "sender", nil, "limit to sender IDs (repeatable)")
	f.StringSliceVar(&messageSearchOpts.mediaTypes, "media", nil, "limit to media types such as img, video, file, link")
	f.StringVar(&messageSearchOpts.chatType, "type", "", "chat type: single or group")
	f.StringVar(&messageSearchOpts.after, "after", "", "only messages after this time")
	f.StringVar(&messageSearchOpts.before, "before", "", "only messages before this time")
	f.StringVar(&messageSearchOpts.direction, "direction", "", "page direction: before or after")
	f.StringVar(&messageSearchOpts.cursor, "cursor", "", "resume from a cursor")
	f.BoolVar(&messageSearchOpts.excludeLowPriority, "exclude-low-priority", true, "skip low-priority chats")
	f.BoolVar(&messageSearchOpts.includeMuted, "include-muted", true, "include muted chats")
	f.IntVarP(&messageSearchOpts.limit, "limit", "l", 0, "page size")
	f.BoolVar(&messageSearchOpts.all, "all", false, "fetch every page")

	messagesSendCmd.Flags().StringVar(&messageSendOpts.replyTo, "reply-to", "", "message ID to reply to")
	messagesSendCmd.Flags().StringVar(&messageSendOpts.attachment, "attachment", "", "path of a file to attach")
	messagesSendCmd.Flags().BoolVar(&messageSendOpts.noRetry, "no-retry", false, "do not retry a failed send")

	messagesCmd.AddCommand(messagesSearchCmd, messagesSendCmd)
}

func messageSearchParams(cmd *cobra.Command, now time.Time) (beeper.MessageSearchParams, error) {
	o := messageSearchOpts

	after, err := optionalTime(o.after, now)
	if err != nil {
		return beeper.MessageSearchParams{}, fmt.Errorf("--after: %w", err)
	}
	before, err := optionalTime(o.before, now)
	if err != nil {
		return beeper.MessageSearchParams{}, fmt.Errorf("--before: %w", err)
	}

	return beeper.MessageSearchParams{
		AccountIDs:         o.accounts,
		ChatIDs:            o.chats,
		ChatType:           optString(cmd, "type", o.chatType),
		Cursor:             optString(cmd, "cursor", o.cursor),
		DateAfter:          after,
		DateBefore:         before,
		Direction:          optString(cmd, "direction", o.direction),
		ExcludeLowPriority: optBool(cmd, "exclude-low-priority", o.excludeLowPriority),
		IncludeMuted:       optBool(cmd, "include-muted", o.includeMuted),
		Limit:              optInt(cmd, "limit", o.limit),
		MediaTypes:         o.mediaTypes,
		Query:              optString(cmd, "query", o.query),
		SenderIDs:          o.senders,
	}, nil
}

func runMessagesSearch(cmd *cobra.Command, args []string) error {
	params, err := messageSearchParams(cmd, time.Now())
	if err != nil {
		return err
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if !messageSearchOpts.all {
		page, err := client.Messages.Search(ctx, params)
		if err != nil {
			return fmt.Errorf("failed to search messages: %w", err)
		}
		if jsonOut {
			return printJSON(out, page)
		}
		if err := printMessages(out, page.Items); err != nil {
			return err
		}
		printNextCursor(out, page)
		return nil
	}

	pager := client.Messages.Iterate(params)
	messages, err := pager.Collect(ctx)
	if err != nil {
		return fmt.Errorf("failed to search messages: %w", err)
	}
	logger.Debug().Int("messages", len(messages)).Int("pages", pager.Pages()).Msg("Fetched messages")

	if jsonOut {
		return printJSON(out, messages)
	}
	return printMessages(out, messages)
}

func runMessagesSend(cmd *cobra.Command, args []string) error {
	client, err := newClient(func(c *beeper.Config) {
		if messageSendOpts.noRetry {
			c.MaxRetries = 0
		}
	})
	if err != nil {
		return err
	}

	resp, err := client.Messages.Send(cmd.Context(), beeper.MessageSendParams{
		ChatID:     args[0],
		Text:       args[1],
		ReplyToID:  optString(cmd, "reply-to", messageSendOpts.replyTo),
		Attachment: optString(cmd, "attachment", messageSendOpts.attachment),
	})
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	if !resp.Success {
		return fmt.Errorf("failed to send message: %s", resp.Error)
	}

	if jsonOut {
		return printJSON(cmd.OutOrStdout(), resp)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Sent message %s\n", resp.MessageID)
	if resp.Deeplink != "" {
		fmt.Fprintln(cmd.OutOrStdout(), resp.Deeplink)
	}
	return nil
}
