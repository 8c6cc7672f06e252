package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/beeperdesk/archive"
	"github.com/s0up4200/beeperdesk/beeper"
)

var archiveOpts struct {
	dir          string
	formats      []string
	concurrency  int
	filter       string
	accounts     []string
	chats        []string
	includeMuted bool
}

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Export chats with their full message history to disk",
	Long: `Export chats to <dir>/<network>/<title>_<id>/ as Markdown, JSON, HTML and
plain text. Every chat is fetched unless --chat or --filter narrows the set:

  beeperdesk archive --filter 'Network == "WhatsApp" and isGroup()'
  beeperdesk archive --chat '!abc:beeper.com' --format md,html

Chats that fail are reported at the end and do not stop the others.`,
	RunE: runArchive,
}

func init() {
	f := archiveCmd.Flags()
	f.StringVarP(&archiveOpts.dir, "dir", "o", "", "output directory (default archive.dir)")
	f.StringSliceVar(&archiveOpts.formats, "format", nil, "formats to write: md, json, html, txt (default archive.formats)")
	f.IntVarP(&archiveOpts.concurrency, "concurrency", "j", 0, "chats archived in parallel (default archive.concurrency)")
	f.StringVarP(&archiveOpts.filter, "filter", "f", "", "filter expression or preset name")
	f.StringSliceVarP(&archiveOpts.accounts, "account", "a", nil, "limit to account IDs (repeatable)")
	f.StringSliceVarP(&archiveOpts.chats, "chat", "c", nil, "archive only these chat IDs (repeatable)")
	f.BoolVar(&archiveOpts.includeMuted, "include-muted", true, "include muted chats")
}

func archiveOptions() archive.Options {
	opts := archive.Options{
		Dir:         cfg.Archive.Dir,
		Formats:     cfg.Archive.Formats,
		Concurrency: cfg.Archive.Concurrency,
		PageSize:    cfg.Archive.PageSize,
	}
	if archiveOpts.dir != "" {
		opts.Dir = archiveOpts.dir
	}
	if len(archiveOpts.formats) > 0 {
		opts.Formats = archiveOpts.formats
	}
	if archiveOpts.concurrency > 0 {
		opts.Concurrency = archiveOpts.concurrency
	}
	return opts
}

func runArchive(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	archiver, err := archive.New(client.Messages, archiveOptions(), logger)
	if err != nil {
		return err
	}

	f, err := compileFilter(archiveOpts.filter)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	var chats []beeper.Chat
	if len(archiveOpts.chats) > 0 {
		for _, id := range archiveOpts.chats {
			chat, err := client.Chats.Retrieve(ctx, beeper.ChatRetrieveParams{ChatID: id})
			if err != nil {
				return fmt.Errorf("failed to get chat %s: %w", id, err)
			}
			chats = append(chats, *chat)
		}
		if f != nil {
			if chats, err = f.Apply(ctx, chats); err != nil {
				logger.Warn().Err(err).Msg("Some chats could not be evaluated")
			}
		}
	} else {
		chats, err = collectChats(ctx, client.Chats, beeper.ChatSearchParams{
			AccountIDs:   archiveOpts.accounts,
			IncludeMuted: optBool(cmd, "include-muted", archiveOpts.includeMuted),
			Limit:        beeper.Ptr(cfg.Archive.PageSize),
		}, f)
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if len(chats) == 0 {
		fmt.Fprintln(out, "No chats to archive.")
		return nil
	}

	logger.Info().Int("chats", len(chats)).Str("dir", archiveOptions().Dir).Msg("Archiving chats")

	summary, err := archiver.ArchiveAll(ctx, chats)
	if err != nil {
		return fmt.Errorf("archive interrupted: %w", err)
	}

	if jsonOut {
		failed := make(map[string]string, len(summary.Failed))
		for id, err := range summary.Failed {
			failed[id] = err.Error()
		}
		return printJSON(out, map[string]any{"archived": summary.Archived, "failed": failed})
	}

	fmt.Fprintf(out, "Archived %d of %d chats\n", len(summary.Archived), len(chats))
	for _, r := range summary.Archived {
		fmt.Fprintf(out, "  %-40s %6d messages  %s\n", truncate(r.Chat.Title, 40), r.Messages, r.Dir)
	}
	if len(summary.Failed) > 0 {
		fmt.Fprintf(out, "\n%d chats failed:\n", len(summary.Failed))
		for id, err := range summary.Failed {
			fmt.Fprintf(out, "  %s: %v\n", id, err)
		}
		return fmt.Errorf("%d of %d chats failed to archive", len(summary.Failed), len(chats))
	}
	return nil
}
