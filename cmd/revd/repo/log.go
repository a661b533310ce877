package repo

import (
	"fmt"

	"github.com/debugflow/revd/cmd"
	"github.com/debugflow/revd/pkg/client"
	"github.com/spf13/cobra"
)

func logCommand() *cobra.Command {
	var (
		opts client.RangeOptions
		long bool
	)

	c := &cobra.Command{
		Use:   "log",
		Short: "List the commits of a range, newest first",
		Long: "List the commits reachable from --head (default HEAD) that are not reachable from --base.\n" +
			"Without --base the whole history is listed.",
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			commits, err := cmd.ClientFromCommand(c).Commits(c.Context(), opts)
			if err != nil {
				return err
			}

			w := c.OutOrStdout()
			if wantJSON(c) {
				return printJSON(w, commits)
			}
			for i, commit := range commits {
				if long {
					if i > 0 {
						fmt.Fprintln(w)
					}
					printCommit(w, commit)
					continue
				}
				fmt.Fprintf(w, "%s %s %s\n",
					hashStyle.Render(shortID(commit.ID)),
					commit.Summary,
					faintStyle.Render("("+relativeTime(commit.Time)+", "+commit.Author.Name+")"),
				)
			}
			return nil
		},
	}

	c.Flags().StringVar(&opts.Base, "base", "", "exclude commits reachable from this revision")
	c.Flags().StringVar(&opts.Head, "head", "", "list commits reachable from this revision (default HEAD)")
	c.Flags().StringVarP(&opts.Filter, "filter", "f", "", "only list commits whose id or summary contains this text")
	c.Flags().BoolVarP(&long, "long", "l", false, "print full commit messages")
	return c
}
