package repo

import (
	"fmt"

	"github.com/debugflow/revd/cmd"
	"github.com/spf13/cobra"
)

func commitCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "commit REVISION",
		Aliases: []string{"show"},
		Short:   "Show the commit a revision resolves to",
		Args:    cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			commit, err := cmd.ClientFromCommand(c).Commit(c.Context(), args[0])
			if err != nil {
				return err
			}

			if wantJSON(c) {
				return printJSON(c.OutOrStdout(), commit)
			}
			printCommit(c.OutOrStdout(), commit)
			return nil
		},
	}
}

func checkoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout REVISION",
		Short: "Check out a branch or commit in the served repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			commit, err := cmd.ClientFromCommand(c).Checkout(c.Context(), args[0])
			if err != nil {
				return err
			}

			if wantJSON(c) {
				return printJSON(c.OutOrStdout(), commit)
			}
			fmt.Fprintf(c.OutOrStdout(), "HEAD is now at %s %s\n", hashStyle.Render(shortID(commit.ID)), commit.Summary)
			return nil
		},
	}
}
