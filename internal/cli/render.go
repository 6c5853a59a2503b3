package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/MrSnakeDoc/linkshelf/internal/domain"
	"github.com/MrSnakeDoc/linkshelf/internal/form"
)

const timeLayout = "2006-01-02 15:04:05"

// Styles is the palette for one theme.
type Styles struct {
	Title   lipgloss.Style
	URL     lipgloss.Style
	Muted   lipgloss.Style
	Accent  lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Empty   lipgloss.Style
}

// StylesFor returns the palette matching the theme preference.
func StylesFor(t domain.Theme) Styles {
	// light: dark text on a light terminal, dark: the reverse
	primary, subtle, accent := lipgloss.Color("#2B2B2B"), lipgloss.Color("#6B6B6B"), lipgloss.Color("#1D6F8C")
	if t == domain.ThemeDark {
		primary, subtle, accent = lipgloss.Color("#E4E4E4"), lipgloss.Color("#8A8A8A"), lipgloss.Color("#5FB7D4")
	}

	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(primary),
		URL:     lipgloss.NewStyle().Foreground(accent).Underline(true),
		Muted:   lipgloss.NewStyle().Foreground(subtle),
		Accent:  lipgloss.NewStyle().Foreground(accent),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("#2E9E6A")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("#C99A0E")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("#D64541")),
		Empty:   lipgloss.NewStyle().Foreground(subtle).Italic(true),
	}
}

func (s *session) styles() Styles {
	if s.shelf == nil {
		return StylesFor(domain.ThemeLight)
	}
	return StylesFor(s.shelf.Theme())
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

// iconFor returns the record icon, or a favicon derived from its URL.
func iconFor(r domain.LinkRecord) string {
	if r.Icon != "" {
		return r.Icon
	}
	return form.FaviconFrom(r.URL)
}

func renderLink(w io.Writer, st Styles, r domain.LinkRecord) {
	fmt.Fprintf(w, "%s  %s\n", st.Title.Render(r.Title), st.Muted.Render(r.ID))
	fmt.Fprintf(w, "  %s\n", st.URL.Render(r.URL))
	if r.Description != "" {
		fmt.Fprintf(w, "  %s\n", r.Description)
	}
	if icon := iconFor(r); icon != "" {
		fmt.Fprintf(w, "  %s %s\n", st.Muted.Render("icon"), st.Muted.Render(icon))
	}
}

func renderLinks(w io.Writer, st Styles, links domain.Collection) {
	if len(links) == 0 {
		fmt.Fprintln(w, st.Empty.Render("No links yet. Add one with `linkctl add`."))
		return
	}
	for i, r := range links {
		if i > 0 {
			fmt.Fprintln(w)
		}
		renderLink(w, st, r)
	}
}

func renderHistory(w io.Writer, st Styles, entries []domain.Snapshot) {
	if len(entries) == 0 {
		fmt.Fprintln(w, st.Empty.Render("No history yet."))
		return
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s  %s  %-9s %s\n",
			st.Muted.Render(e.ID),
			e.Time.Time().Local().Format(timeLayout),
			st.Accent.Render(e.Action.Label()),
			st.Muted.Render(fmt.Sprintf("%d → %d links", len(e.Before), len(e.After))))
	}
}

// summarize lists the titles of a collection on one line.
func summarize(c domain.Collection, limit int) string {
	titles := make([]string, 0, len(c))
	for i, r := range c {
		if i == limit {
			titles = append(titles, fmt.Sprintf("+%d more", len(c)-limit))
			break
		}
		titles = append(titles, r.Title)
	}
	return strings.Join(titles, ", ")
}
