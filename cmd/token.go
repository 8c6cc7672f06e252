package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/beeperdesk/beeper"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Show information about the configured access token",
	RunE:  runToken,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check that Beeper Desktop is reachable and list connected accounts",
	RunE:  runStatus,
}

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List the chat accounts connected to Beeper",
	RunE:  runAccounts,
}

func runToken(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	info, err := client.Token.Info(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get token info: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return printJSON(out, info)
	}
	return printTokenInfo(out, info)
}

func printTokenInfo(out io.Writer, info *beeper.UserInfo) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	row(tw, "Subject:", info.Sub)
	row(tw, "Scope:", info.Scope)
	row(tw, "Token use:", info.TokenUse)
	if info.ClientID != nil {
		row(tw, "Client:", *info.ClientID)
	}
	issued := info.IssuedAt()
	row(tw, "Issued:", formatTime(&issued))
	if exp, ok := info.ExpiresAt(); ok {
		row(tw, "Expires:", formatTime(&exp))
	} else {
		row(tw, "Expires:", "never")
	}
	return tw.Flush()
}

func runAccounts(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	accounts, err := client.Accounts.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}

	if jsonOut {
		return printJSON(cmd.OutOrStdout(), accounts)
	}
	return printAccounts(cmd.OutOrStdout(), accounts)
}

// runStatus fetches the token info and the account list concurrently
func runStatus(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	var (
		info     *beeper.UserInfo
		accounts []beeper.Account
	)

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		var err error
		info, err = client.Token.Info(ctx)
		if err != nil {
			return fmt.Errorf("failed to get token info: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		accounts, err = client.Accounts.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list accounts: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return printJSON(out, map[string]any{
			"baseURL":  client.Config().BaseURL,
			"token":    info,
			"accounts": accounts,
		})
	}

	fmt.Fprintf(out, "Connected to %s\n\n", client.Config().BaseURL)
	if err := printTokenInfo(out, info); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d account(s):\n", len(accounts))
	return printAccounts(out, accounts)
}
