package repo

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/debugflow/revd/cmd"
	"github.com/debugflow/revd/pkg/client"
	"github.com/debugflow/revd/pkg/proto"
	"github.com/dustin/go-humanize/english"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

func diffCommand() *cobra.Command {
	var (
		opts  client.RangeOptions
		color bool
		style string
		stat  bool
	)

	c := &cobra.Command{
		Use:   "diff",
		Short: "Show the changes between two revisions",
		Long: "Show the file changes between --base and --head (default HEAD).\n" +
			"Without --base every file of --head is shown as added.",
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			if !c.Flags().Changed("color") {
				color = termenv.NewOutput(c.OutOrStdout()).EnvColorProfile() != termenv.Ascii
			}
			diffs, err := cmd.ClientFromCommand(c).Diffs(c.Context(), opts)
			if err != nil {
				return err
			}

			w := c.OutOrStdout()
			if wantJSON(c) {
				return printJSON(w, diffs)
			}
			if stat {
				printDiffStat(w, diffs)
				return nil
			}
			for _, d := range diffs {
				patch := d.Patch
				if d.Kind == proto.DiffKindBinary {
					patch = fmt.Sprintf("Binary files %s and %s differ\n", diffPath("a", d.Old), diffPath("b", d.New))
				}
				if color {
					if err := quick.Highlight(w, patch, "diff", "terminal256", style); err != nil {
						return fmt.Errorf("highlight diff: %w", err)
					}
					continue
				}
				fmt.Fprint(w, patch)
			}
			return nil
		},
	}

	c.Flags().StringVar(&opts.Base, "base", "", "old side of the diff (default the empty tree)")
	c.Flags().StringVar(&opts.Head, "head", "", "new side of the diff (default HEAD)")
	c.Flags().BoolVar(&color, "color", false, "highlight the patches (default when writing to a terminal)")
	c.Flags().StringVar(&style, "style", "monokai", "highlight style used with --color")
	c.Flags().BoolVar(&stat, "stat", false, "only list the changed files")
	return c
}

func diffPath(prefix string, f proto.DiffFile) string {
	if f.Path == nil {
		return "/dev/null"
	}
	return prefix + "/" + *f.Path
}

// printDiffStat prints one line per changed file with its added and
// removed line counts, followed by a summary line.
func printDiffStat(w io.Writer, diffs []proto.Diff) {
	var adds, dels int
	for _, d := range diffs {
		path := d.New.Path
		if path == nil {
			path = d.Old.Path
		}
		if d.Kind == proto.DiffKindBinary {
			fmt.Fprintf(w, "%s | Bin\n", *path)
			continue
		}
		var add, del int
		for _, l := range strings.Split(d.Patch, "\n") {
			switch {
			case strings.HasPrefix(l, "+++"), strings.HasPrefix(l, "---"):
			case strings.HasPrefix(l, "+"):
				add++
			case strings.HasPrefix(l, "-"):
				del++
			}
		}
		adds += add
		dels += del
		fmt.Fprintf(w, "%s | %s -%d\n", *path, refStyle.Render(fmt.Sprintf("+%d", add)), del)
	}
	fmt.Fprintf(w, "%s changed, %s(+), %s(-)\n",
		english.Plural(len(diffs), "file", ""),
		english.Plural(adds, "insertion", ""),
		english.Plural(dels, "deletion", ""),
	)
}
