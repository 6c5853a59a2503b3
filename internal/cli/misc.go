package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/linkshelf/internal/domain"
	"github.com/MrSnakeDoc/linkshelf/internal/form"
	"github.com/MrSnakeDoc/linkshelf/internal/shelf"
	"github.com/MrSnakeDoc/linkshelf/internal/sources/homepage"
	"github.com/MrSnakeDoc/linkshelf/internal/version"
)

func (s *session) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Add the links of a Homepage services.yaml or bookmarks.yaml",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := homepage.NewLoader(args[0]).Load()
			if err != nil {
				return err
			}

			st := s.styles()
			added := make([]domain.LinkRecord, 0, len(entries))
			skipped := 0
			for _, e := range entries {
				fields, err := form.Validate(form.LinkInput{
					Title:       e.Title,
					URL:         e.URL,
					Description: e.Description,
					Icon:        e.Icon,
				})
				if err != nil {
					skipped++
					fmt.Fprintf(s.errw, "%s %s/%s: %v\n", st.Warning.Render("skipped"), e.Group, e.Title, err)
					continue
				}
				added = append(added, s.shelf.Create(fields))
			}

			if s.flags.json {
				return writeJSON(s.out, added)
			}
			fmt.Fprintf(s.out, "%s %d links", st.Success.Render("Imported"), len(added))
			if skipped > 0 {
				fmt.Fprintf(s.out, ", %s", st.Warning.Render(fmt.Sprintf("%d skipped", skipped)))
			}
			fmt.Fprintln(s.out)
			return nil
		},
	}
}

func (s *session) themeCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "theme [light|dark|toggle]",
		Short:     "Show or change the display theme",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(domain.ThemeLight), string(domain.ThemeDark), "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			theme := s.shelf.Theme()
			if len(args) == 1 {
				if args[0] == "toggle" {
					theme = s.shelf.ToggleTheme()
				} else {
					theme = s.shelf.SetTheme(domain.Theme(args[0]))
				}
			}
			if s.flags.json {
				return writeJSON(s.out, map[string]domain.Theme{"theme": theme})
			}
			fmt.Fprintln(s.out, s.styles().Accent.Render(string(theme)))
			return nil
		},
	}
}

func (s *session) syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "sync",
		Short:       "Replace the local copy with the server's collection and history",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoRefresh: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			res := s.refresh(cmd.Context())
			if s.flags.json {
				out := map[string]any{"collection": res.Collection, "history": res.History}
				if res.Err != nil {
					out["error"] = res.Err.Error()
				}
				if err := writeJSON(s.out, out); err != nil {
					return err
				}
			}

			st := s.styles()
			switch {
			case errors.Is(res.Err, shelf.ErrOffline):
				return errors.New("no server configured (set SHELF_SERVER_URL or drop --offline)")
			case res.Err != nil && !res.Collection && !res.History:
				return fmt.Errorf("sync failed, local copy unchanged: %w", res.Err)
			}

			if !s.flags.json {
				fmt.Fprintf(s.out, "%s %d links, %d history entries\n",
					st.Success.Render("Synced"), len(s.shelf.Links()), len(s.shelf.History()))
				if res.Err != nil {
					fmt.Fprintln(s.out, st.Warning.Render("partial: "+res.Err.Error()))
				}
			}
			return nil
		},
	}
}

func (s *session) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print build information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoSession: "true"},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(s.out, "linkctl %s\n", version.String())
		},
	}
}
