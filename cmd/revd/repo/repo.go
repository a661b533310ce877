// Package repo implements the commands that talk to a running revd server.
package repo

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/debugflow/revd/cmd"
	"github.com/debugflow/revd/pkg/proto"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/indent"
	"github.com/spf13/cobra"
)

var (
	hashStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	refStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true)
	faintStyle  = lipgloss.NewStyle().Faint(true)
)

// Commands returns the client commands.
func Commands() []*cobra.Command {
	cmds := []*cobra.Command{
		commitCommand(),
		checkoutCommand(),
		logCommand(),
		diffCommand(),
		tagCommand(),
		branchCommand(),
		statusCommand(),
	}
	for _, c := range cmds {
		c.PersistentPreRunE = cmd.InitClientContext
		c.PersistentFlags().String("url", "", "server url (defaults to the configured public url)")
		c.PersistentFlags().String("timeout", "", "request timeout (e.g. 30s, 1m)")
		c.PersistentFlags().Bool("json", false, "output as JSON")
	}
	return cmds
}

// wantJSON reports whether the command was asked for JSON output.
func wantJSON(c *cobra.Command) bool {
	v, _ := c.Flags().GetBool("json")
	return v
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func shortID(id string) string {
	if len(id) > 7 {
		return id[:7]
	}
	return id
}

func signature(s proto.Signature) string {
	return fmt.Sprintf("%s <%s>", s.Name, s.Email)
}

func relativeTime(t time.Time) string {
	return humanize.Time(t)
}

// printCommit prints c the way git show prints a commit header.
func printCommit(w io.Writer, c proto.Commit) {
	fmt.Fprintln(w, hashStyle.Render("commit "+c.ID))
	fmt.Fprintf(w, "Author: %s\n", signature(c.Author))
	if c.Committer != c.Author {
		fmt.Fprintf(w, "Commit: %s\n", signature(c.Committer))
	}
	fmt.Fprintf(w, "Date:   %s %s\n", c.Time.Format(time.RFC1123Z), faintStyle.Render("("+relativeTime(c.Time)+")"))
	fmt.Fprintln(w)
	msg := c.Summary
	if c.Body != "" {
		msg += "\n\n" + c.Body
	}
	fmt.Fprintln(w, indent.String(msg, 4))
}
