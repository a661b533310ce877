package repo

import (
	"fmt"

	"github.com/caarlos0/tablewriter"
	"github.com/debugflow/revd/cmd"
	"github.com/debugflow/revd/pkg/client"
	"github.com/debugflow/revd/pkg/proto"
	"github.com/spf13/cobra"
)

func tagCommand() *cobra.Command {
	c := &cobra.Command{
		Use:     "tag",
		Aliases: []string{"tags"},
		Short:   "Manage tags",
	}

	var filter string
	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tags",
		Args:    cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			tags, err := cmd.ClientFromCommand(c).Tags(c.Context(), filter)
			if err != nil {
				return err
			}

			if wantJSON(c) {
				return printJSON(c.OutOrStdout(), tags)
			}
			if len(tags) == 0 {
				fmt.Fprintln(c.OutOrStdout(), "No tags found")
				return nil
			}
			return tablewriter.Render(
				c.OutOrStdout(),
				tags,
				[]string{"Tag", "Commit", "Summary", "Date"},
				func(t proto.Tag) ([]string, error) {
					return []string{
						t.Name,
						shortID(t.Commit.ID),
						t.Commit.Summary,
						relativeTime(t.Commit.Time),
					}, nil
				},
			)
		},
	}
	listCmd.Flags().StringVarP(&filter, "filter", "f", "", "only list tags matching this text or glob pattern")

	var force bool
	createCmd := &cobra.Command{
		Use:   "create NAME [REVISION]",
		Short: "Create a lightweight tag",
		Long:  "Create a lightweight tag pointing at REVISION (default HEAD).",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(c *cobra.Command, args []string) error {
			opts := client.CreateOptions{Name: args[0], Revision: "HEAD", Force: force}
			if len(args) > 1 {
				opts.Revision = args[1]
			}

			tag, err := cmd.ClientFromCommand(c).CreateTag(c.Context(), opts)
			if err != nil {
				return err
			}

			if wantJSON(c) {
				return printJSON(c.OutOrStdout(), tag)
			}
			fmt.Fprintf(c.OutOrStdout(), "Created tag %s at %s\n", refStyle.Render(tag.Name), hashStyle.Render(shortID(tag.Commit.ID)))
			return nil
		},
	}
	createCmd.Flags().BoolVar(&force, "force", false, "move an existing tag")

	c.AddCommand(listCmd, createCmd)
	return c
}
