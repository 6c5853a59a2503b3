package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (s *session) historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded changes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries := s.shelf.History()
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}
			if s.flags.json {
				return writeJSON(s.out, entries)
			}
			renderHistory(s.out, s.styles(), entries)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n entries (0 = all)")
	return cmd
}

func (s *session) restoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <history-id>",
		Short: "Replace the collection with the state after a history entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			snap, ok := s.shelf.FindSnapshot(id)
			if !ok {
				return fmt.Errorf("no history entry with id %q", id)
			}
			if !s.shelf.Restore(id) {
				fmt.Fprintln(s.out, s.styles().Warning.Render("Cancelled."))
				return nil
			}
			if s.flags.json {
				return writeJSON(s.out, s.shelf.Links())
			}
			st := s.styles()
			fmt.Fprintf(s.out, "%s %d links from %s\n",
				st.Success.Render("Restored"),
				len(snap.After),
				snap.Time.Time().Local().Format(timeLayout))
			if len(snap.After) > 0 {
				fmt.Fprintln(s.out, st.Muted.Render(summarize(snap.After, 5)))
			}
			return nil
		},
	}
}
