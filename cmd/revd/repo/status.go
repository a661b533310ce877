package repo

import (
	"fmt"

	"github.com/debugflow/revd/cmd"
	"github.com/spf13/cobra"
)

func statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the checked out branch and head commit",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			st, err := cmd.ClientFromCommand(c).Status(c.Context())
			if err != nil {
				return err
			}

			w := c.OutOrStdout()
			if wantJSON(c) {
				return printJSON(w, st)
			}
			if st.CurrentBranch != nil {
				fmt.Fprintf(w, "On branch %s\n", refStyle.Render(*st.CurrentBranch))
			} else {
				fmt.Fprintf(w, "HEAD detached at %s\n", hashStyle.Render(shortID(st.Head.ID)))
			}
			fmt.Fprintf(w, "%s %s %s\n", headerStyle.Render("Head:"), hashStyle.Render(shortID(st.Head.ID)), st.Head.Summary)
			return nil
		},
	}
}
