package repo

import (
	"fmt"

	"github.com/caarlos0/tablewriter"
	"github.com/debugflow/revd/cmd"
	"github.com/debugflow/revd/pkg/client"
	"github.com/debugflow/revd/pkg/proto"
	"github.com/spf13/cobra"
)

func branchCommand() *cobra.Command {
	c := &cobra.Command{
		Use:     "branch",
		Aliases: []string{"branches"},
		Short:   "Manage branches",
	}

	var filter string
	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List local branches",
		Args:    cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			branches, err := cmd.ClientFromCommand(c).Branches(c.Context(), filter)
			if err != nil {
				return err
			}

			if wantJSON(c) {
				return printJSON(c.OutOrStdout(), branches)
			}
			if len(branches) == 0 {
				fmt.Fprintln(c.OutOrStdout(), "No branches found")
				return nil
			}
			return tablewriter.Render(
				c.OutOrStdout(),
				branches,
				[]string{"Branch", "Head", "Summary", "Date"},
				func(b proto.Branch) ([]string, error) {
					return []string{
						b.Name,
						shortID(b.Head.ID),
						b.Head.Summary,
						relativeTime(b.Head.Time),
					}, nil
				},
			)
		},
	}
	listCmd.Flags().StringVarP(&filter, "filter", "f", "", "only list branches matching this text or glob pattern")

	var force bool
	createCmd := &cobra.Command{
		Use:   "create NAME [REVISION]",
		Short: "Create a local branch",
		Long:  "Create a local branch pointing at REVISION (default HEAD).",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(c *cobra.Command, args []string) error {
			opts := client.CreateOptions{Name: args[0], Revision: "HEAD", Force: force}
			if len(args) > 1 {
				opts.Revision = args[1]
			}

			branch, err := cmd.ClientFromCommand(c).CreateBranch(c.Context(), opts)
			if err != nil {
				return err
			}

			if wantJSON(c) {
				return printJSON(c.OutOrStdout(), branch)
			}
			fmt.Fprintf(c.OutOrStdout(), "Created branch %s at %s\n", refStyle.Render(branch.Name), hashStyle.Render(shortID(branch.Head.ID)))
			return nil
		},
	}
	createCmd.Flags().BoolVar(&force, "force", false, "move an existing branch")

	c.AddCommand(listCmd, createCmd)
	return c
}
