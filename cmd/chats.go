package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/s0up4200/beeperdesk/beeper"
	"github.com/s0up4200/beeperdesk/filter"
)

var chatsCmd = &cobra.Command{
	Use:   "chats",
	Short: "Search and manage chats",
}

var chatSearchOpts struct {
	query        string
	accounts     []string
	chatType     string
	scope        string
	direction    string
	cursor       string
	includeMuted bool
	limit        int
	all          bool
	filter       string
}

var chatsSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search chats by title or participant",
	Long: `Search chats. Without --all only one page is fetched and the cursor for
the next page is printed.

--filter applies an expression locally to every result, for example:

  beeperdesk chats search --all --filter 'UnreadCount > 0 and not IsMuted'

A filter preset name from the config file may be used instead of an expression.`,
	RunE: runChatsSearch,
}

var chatsGetCmd = &cobra.Command{
	Use:   "get <chat-id>",
	Short: "Show chat details and participants",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatsGet,
}

var chatCreateOpts struct {
	account      string
	participants []string
	chatType     string
	title        string
}

var chatsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a single or group chat",
	RunE:  runChatsCreate,
}

var unarchive bool

var chatsArchiveCmd = &cobra.Command{
	Use:   "archive <chat-id>",
	Short: "Archive (or with --undo, unarchive) a chat in Beeper",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatsArchive,
}

var remindOpts struct {
	at      string
	message string
}

var chatsRemindCmd = &cobra.Command{
	Use:   "remind <chat-id>",
	Short: "Set a reminder for a chat",
	Long: `Set a reminder for a chat. --at takes an RFC 3339 timestamp, a date, or a
duration from now such as 2h or 30m.`,
	Args: cobra.ExactArgs(1),
	RunE: runChatsRemind,
}

var chatsUnremindCmd = &cobra.Command{
	Use:   "unremind <chat-id>",
	Short: "Clear the reminder on a chat",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatsUnremind,
}

func init() {
	f := chatsSearchCmd.Flags()
	f.StringVarP(&chatSearchOpts.query, "query", "q", "", "text to search for")
	f.StringSliceVarP(&chatSearchOpts.accounts, "account", "a", nil, "limit to account IDs (repeatable)")
	f.StringVar(&chatSearchOpts.chatType, "type", "", "chat type: single or group")
	f.StringVar(&chatSearchOpts.scope, "scope", "", "match against titles or participants")
	f.StringVar(&chatSearchOpts.direction, "direction", "", "page direction: before or after")
	f.StringVar(&chatSearchOpts.cursor, "cursor", "", "resume from a cursor")
	f.BoolVar(&chatSearchOpts.includeMuted, "include-muted", true, "include muted chats")
	f.IntVarP(&chatSearchOpts.limit, "limit", "l", 0, "page size")
	f.BoolVar(&chatSearchOpts.all, "all", false, "fetch every page")
	f.StringVarP(&chatSearchOpts.filter, "filter", "f", "", "filter expression or preset name")

	chatsCreateCmd.Flags().StringVarP(&chatCreateOpts.account, "account", "a", "", "account to create the chat on")
	chatsCreateCmd.Flags().StringSliceVarP(&chatCreateOpts.participants, "participant", "p", nil, "participant user IDs (repeatable)")
	chatsCreateCmd.Flags().StringVar(&chatCreateOpts.chatType, "type", "single", "chat type: single or group")
	chatsCreateCmd.Flags().StringVar(&chatCreateOpts.title, "title", "", "group title")
	_ = chatsCreateCmd.MarkFlagRequired("account")
	_ = chatsCreateCmd.MarkFlagRequired("participant")

	chatsArchiveCmd.Flags().BoolVar(&unarchive, "undo", false, "unarchive instead")

	chatsRemindCmd.Flags().StringVar(&remindOpts.at, "at", "", "when to remind")
	chatsRemindCmd.Flags().StringVarP(&remindOpts.message, "message", "m", "", "reminder note")
	_ = chatsRemindCmd.MarkFlagRequired("at")

	chatsCmd.AddCommand(chatsSearchCmd, chatsGetCmd, chatsCreateCmd, chatsArchiveCmd, chatsRemindCmd, chatsUnremindCmd)
}

func chatSearchParams(cmd *cobra.Command) beeper.ChatSearchParams {
	o := chatSearchOpts
	return beeper.ChatSearchParams{
		AccountIDs:   o.accounts,
		ChatType:     optString(cmd, "type", o.chatType),
		IncludeMuted: optBool(cmd, "include-muted", o.includeMuted),
		Limit:        optInt(cmd, "limit", o.limit),
		Cursor:       optString(cmd, "cursor", o.cursor),
		Direction:    optString(cmd, "direction", o.direction),
		Scope:        optString(cmd, "scope", o.scope),
		Query:        optString(cmd, "query", o.query),
	}
}

// compileFilter resolves a --filter argument against the configured presets.
// It returns nil when no filter applies.
func compileFilter(arg string) (*filter.Filter, error) {
	expression := cfg.Expression(arg)
	if expression == "" {
		return nil, nil
	}
	f, err := filter.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}
	return f, nil
}

// collectChats fetches every page of chats and applies f when set
func collectChats(ctx context.Context, chats *beeper.Chats, params beeper.ChatSearchParams, f *filter.Filter) ([]beeper.Chat, error) {
	pager := chats.Iterate(params)
	all, err := pager.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search chats: %w", err)
	}
	logger.Debug().Int("chats", len(all)).Int("pages", pager.Pages()).Msg("Fetched chats")

	if f == nil {
		return all, nil
	}

	matches, err := f.Apply(ctx, all)
	if err != nil {
		// Evaluation errors only drop the affected chats
		logger.Warn().Err(err).Msg("Some chats could not be evaluated")
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	logger.Info().Str("filter", f.Expression()).Int("matched", len(matches)).Int("total", len(all)).Msg("Applied filter")
	return matches, nil
}

func runChatsSearch(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	f, err := compileFilter(chatSearchOpts.filter)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	params := chatSearchParams(cmd)
	out := cmd.OutOrStdout()

	if !chatSearchOpts.all {
		page, err := client.Chats.Search(ctx, params)
		if err != nil {
			return fmt.Errorf("failed to search chats: %w", err)
		}
		items := page.Items
		if f != nil {
			items, err = f.Apply(ctx, items)
			if err != nil {
				logger.Warn().Err(err).Msg("Some chats could not be evaluated")
			}
		}
		if jsonOut {
			return printJSON(out, beeper.Cursor[beeper.Chat]{Items: items, Pagination: page.Pagination})
		}
		if err := printChats(out, items); err != nil {
			return err
		}
		printNextCursor(out, page)
		return nil
	}

	chats, err := collectChats(ctx, client.Chats, params, f)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(out, chats)
	}
	if len(chats) == 0 {
		fmt.Fprintln(out, "No chats found.")
		return nil
	}
	fmt.Fprintf(out, "Found %d chats:\n", len(chats))
	return printChats(out, chats)
}

func runChatsGet(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	chat, err := client.Chats.Retrieve(cmd.Context(), beeper.ChatRetrieveParams{ChatID: args[0]})
	if err != nil {
		return fmt.Errorf("failed to get chat %s: %w", args[0], err)
	}

	if jsonOut {
		return printJSON(cmd.OutOrStdout(), chat)
	}
	return printChat(cmd.OutOrStdout(), *chat)
}

func runChatsCreate(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	resp, err := client.Chats.Create(cmd.Context(), beeper.ChatCreateParams{
		AccountID:      chatCreateOpts.account,
		ParticipantIDs: chatCreateOpts.participants,
		Type:           chatCreateOpts.chatType,
		Title:          optString(cmd, "title", chatCreateOpts.title),
	})
	if err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}
	if !resp.Success {
		return fmt.Errorf("failed to create chat: %s", resp.Error)
	}

	if jsonOut {
		return printJSON(cmd.OutOrStdout(), resp)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created chat %s\n", resp.Chat.ID)
	return nil
}

func runChatsArchive(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	resp, err := client.Chats.Archive(cmd.Context(), beeper.ChatArchiveParams{ChatID: args[0], Archived: !unarchive})
	if err := checkBase(resp, err, "archive chat"); err != nil {
		return err
	}

	action := "Archived"
	if unarchive {
		action = "Unarchived"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s chat %s\n", action, args[0])
	return nil
}

func runChatsRemind(cmd *cobra.Command, args []string) error {
	at, err := parseTimeArg(remindOpts.at, time.Now())
	if err != nil {
		return err
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	resp, err := client.Chats.Reminders.Create(cmd.Context(), beeper.ReminderCreateParams{
		ChatID:    args[0],
		Timestamp: at,
		Message:   optString(cmd, "message", remindOpts.message),
	})
	if err := checkBase(resp, err, "set reminder"); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Reminder set for %s\n", at.Local().Format(dateTimeFormat))
	return nil
}

func runChatsUnremind(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	resp, err := client.Chats.Reminders.Delete(cmd.Context(), beeper.ReminderDeleteParams{ChatID: args[0]})
	if err := checkBase(resp, err, "clear reminder"); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Reminder cleared for %s\n", args[0])
	return nil
}

// checkBase turns a failed call or an unsuccessful BaseResponse into an error
func checkBase(resp *beeper.BaseResponse, err error, action string) error {
	if err != nil {
		return fmt.Errorf("failed to %s: %w", action, err)
	}
	if !resp.Success {
		reason := "unknown error"
		if resp.Error != nil {
			reason = *resp.Error
		}
		return fmt.Errorf("failed to %s: %s", action, reason)
	}
	return nil
}
