package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/beeperdesk/beeper"
)

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Look up people on connected accounts",
}

var contactsSearchCmd = &cobra.Command{
	Use:   "search <account-id> <query>",
	Short: "Search users reachable through an account",
	Args:  cobra.ExactArgs(2),
	RunE:  runContactsSearch,
}

var appSearchOpts struct {
	accounts         []string
	chatType         string
	includeMuted     bool
	limit            int
	messageLimit     int
	participantLimit int
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search chats and messages in one request",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

var openOpts struct {
	chat       string
	message    string
	draft      string
	attachment string
}

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Bring Beeper Desktop to the front, optionally at a chat",
	RunE:  runOpen,
}

var downloadCmd = &cobra.Command{
	Use:   "download <asset-url>",
	Short: "Have Beeper Desktop download an asset and print its local path",
	Args:  cobra.ExactArgs(1),
	RunE:  runDownload,
}

func init() {
	contactsCmd.AddCommand(contactsSearchCmd)

	f := searchCmd.Flags()
	f.StringSliceVarP(&appSearchOpts.accounts, "account", "a", nil, "limit to account IDs (repeatable)")
	f.StringVar(&appSearchOpts.chatType, "type", "", "chat type: single or group")
	f.BoolVar(&appSearchOpts.includeMuted, "include-muted", true, "include muted chats")
	f.IntVarP(&appSearchOpts.limit, "limit", "l", 0, "maximum chats")
	f.IntVar(&appSearchOpts.messageLimit, "message-limit", 0, "maximum messages")
	f.IntVar(&appSearchOpts.participantLimit, "participant-limit", 0, "maximum participants per chat")

	openCmd.Flags().StringVar(&openOpts.chat, "chat", "", "chat to open")
	openCmd.Flags().StringVar(&openOpts.message, "message", "", "message to jump to")
	openCmd.Flags().StringVar(&openOpts.draft, "draft", "", "prefill the composer with text")
	openCmd.Flags().StringVar(&openOpts.attachment, "attachment", "", "prefill the composer with a file")
}

func runContactsSearch(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	resp, err := client.Contacts.Search(cmd.Context(), beeper.ContactSearchParams{AccountID: args[0], Query: args[1]})
	if err != nil {
		return fmt.Errorf("failed to search contacts: %w", err)
	}

	if jsonOut {
		return printJSON(cmd.OutOrStdout(), resp.Items)
	}
	return printUsers(cmd.OutOrStdout(), resp.Items)
}

func runSearch(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	o := appSearchOpts
	resp, err := client.App.Search(cmd.Context(), beeper.AppSearchParams{
		Query:            args[0],
		AccountIDs:       o.accounts,
		ChatType:         optString(cmd, "type", o.chatType),
		IncludeMuted:     optBool(cmd, "include-muted", o.includeMuted),
		Limit:            optInt(cmd, "limit", o.limit),
		MessageLimit:     optInt(cmd, "message-limit", o.messageLimit),
		ParticipantLimit: optInt(cmd, "participant-limit", o.participantLimit),
	})
	if err != nil {
		return fmt.Errorf("failed to search: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return printJSON(out, resp)
	}

	chats := make([]beeper.Chat, 0, len(resp.Chats))
	for _, c := range resp.Chats {
		chats = append(chats, c.Chat)
	}
	messages := make([]beeper.Message, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		messages = append(messages, m.Message)
	}

	fmt.Fprintf(out, "Chats (%d):\n", len(chats))
	if err := printChats(out, chats); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nMessages (%d):\n", len(messages))
	return printMessages(out, messages)
}

func runOpen(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	resp, err := client.App.Open(cmd.Context(), beeper.AppOpenParams{
		ChatID:          optString(cmd, "chat", openOpts.chat),
		MessageID:       optString(cmd, "message", openOpts.message),
		DraftText:       optString(cmd, "draft", openOpts.draft),
		DraftAttachment: optString(cmd, "attachment", openOpts.attachment),
	})
	if err != nil {
		return fmt.Errorf("failed to open Beeper: %w", err)
	}
	if !resp.Success {
		return fmt.Errorf("failed to open Beeper: %s", resp.Error)
	}
	return nil
}

func runDownload(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	resp, err := client.App.DownloadAsset(cmd.Context(), beeper.AppDownloadAssetParams{AssetURL: args[0]})
	if err != nil {
		return fmt.Errorf("failed to download asset: %w", err)
	}
	if !resp.Success {
		return fmt.Errorf("failed to download asset: %s", resp.Error)
	}

	if jsonOut {
		return printJSON(cmd.OutOrStdout(), resp)
	}
	fmt.Fprintln(cmd.OutOrStdout(), resp.LocalPath)
	return nil
}
