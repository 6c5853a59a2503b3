package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/linkshelf/internal/domain"
	"github.com/MrSnakeDoc/linkshelf/internal/form"
)

func (s *session) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show every link in order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			links := s.shelf.Links()
			if s.flags.json {
				return writeJSON(s.out, links)
			}
			renderLinks(s.out, s.styles(), links)
			return nil
		},
	}
}

func (s *session) addCmd() *cobra.Command {
	var in form.LinkInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a link at the end of the collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fields, err := form.Validate(in)
			if err != nil {
				return err
			}
			rec := s.shelf.Create(fields)
			return s.printRecord("Added", rec)
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.Title, "title", "", "link title (required)")
	f.StringVar(&in.URL, "url", "", "absolute http(s) URL (required)")
	f.StringVar(&in.Description, "description", "", "optional description")
	f.StringVar(&in.Icon, "icon", "", "optional http(s) icon URL")
	return cmd
}

func (s *session) editCmd() *cobra.Command {
	var in form.LinkInput

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the fields of a link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			cur, ok := s.shelf.Find(id)
			if !ok {
				return fmt.Errorf("no link with id %q", id)
			}

			// Flags that were not given keep the current value; the result is
			// validated as a whole like a submitted edit form.
			merged := form.LinkInput{
				Title:       cur.Title,
				URL:         cur.URL,
				Description: cur.Description,
				Icon:        cur.Icon,
			}
			f := cmd.Flags()
			if f.Changed("title") {
				merged.Title = in.Title
			}
			if f.Changed("url") {
				merged.URL = in.URL
			}
			if f.Changed("description") {
				merged.Description = in.Description
			}
			if f.Changed("icon") {
				merged.Icon = in.Icon
			}

			fields, err := form.Validate(merged)
			if err != nil {
				return err
			}
			rec, ok := s.shelf.Update(id, domain.PatchFrom(fields))
			if !ok {
				return fmt.Errorf("no link with id %q", id)
			}
			return s.printRecord("Updated", rec)
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.Title, "title", "", "new title")
	f.StringVar(&in.URL, "url", "", "new URL")
	f.StringVar(&in.Description, "description", "", "new description (empty clears it)")
	f.StringVar(&in.Icon, "icon", "", "new icon URL (empty clears it)")
	return cmd
}

func (s *session) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a link",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			rec, ok := s.shelf.Find(id)
			if !ok {
				return fmt.Errorf("no link with id %q", id)
			}
			if !s.shelf.Delete(id) {
				fmt.Fprintln(s.out, s.styles().Warning.Render("Cancelled."))
				return nil
			}
			if s.flags.json {
				return writeJSON(s.out, rec)
			}
			fmt.Fprintf(s.out, "%s %s\n", s.styles().Success.Render("Deleted"), rec.Title)
			return nil
		},
	}
}

func (s *session) printRecord(verb string, rec domain.LinkRecord) error {
	if s.flags.json {
		return writeJSON(s.out, rec)
	}
	st := s.styles()
	fmt.Fprintln(s.out, st.Success.Render(verb))
	renderLink(s.out, st, rec)
	return nil
}
