package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"game-hub/models"
)

var (
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorMuted   = lipgloss.Color("#6B7280")
	colorPrimary = lipgloss.Color("#7C3AED")
	colorStar    = lipgloss.Color("#FACC15")
	colorBorder  = lipgloss.Color("#4B5563")

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	primaryStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	starStyle    = lipgloss.NewStyle().Foreground(colorStar)
	badgeStyle   = lipgloss.NewStyle().Foreground(colorPrimary).Padding(0, 1).Border(lipgloss.NormalBorder(), false, true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1).
			Width(34)
)

// Success prints a success message
func Success(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintln(w, successStyle.Render("✓ ")+fmt.Sprintf(format, args...))
}

// Warning prints a warning message
func Warning(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintln(w, warningStyle.Render("⚠ ")+fmt.Sprintf(format, args...))
}

// Error prints an error message
func Error(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintln(w, errorStyle.Render("✗ ")+fmt.Sprintf(format, args...))
}

func Muted(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf(format, args...)))
}

// Section prints a section header
func Section(w io.Writer, title string) {
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, primaryStyle.Render(title))
	_, _ = fmt.Fprintln(w, mutedStyle.Render(strings.Repeat("═", lipgloss.Width(title))))
}

// Stars renders a 0-5 rating rounded to the nearest whole star.
func Stars(rating float64) string {
	full := int(rating + 0.5)
	if full < 0 {
		full = 0
	}
	if full > 5 {
		full = 5
	}
	return starStyle.Render(strings.Repeat("★", full)) + mutedStyle.Render(strings.Repeat("☆", 5-full))
}

// Grid renders games as bordered cards, three per row.
func Grid(w io.Writer, games []models.Game) {
	const perRow = 3
	for i := 0; i < len(games); i += perRow {
		end := min(i+perRow, len(games))
		cards := make([]string, 0, perRow)
		for _, g := range games[i:end] {
			cards = append(cards, card(g))
		}
		_, _ = fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
}

func card(g models.Game) string {
	body := strings.Join([]string{
		primaryStyle.Render(truncate(g.Title, 30)),
		badgeStyle.Render(string(g.Category)),
		truncate(g.Description, 90),
		Stars(g.Rating) + "  " + mutedStyle.Render("↓ "+strconv.FormatInt(g.DownloadCount, 10)),
		mutedStyle.Render("id " + g.ID),
	}, "\n")
	return cardStyle.Render(body)
}

// List renders games one per line.
func List(w io.Writer, games []models.Game) {
	for _, g := range games {
		_, _ = fmt.Fprintf(w, "%s  %s  %s  %s  %s\n",
			mutedStyle.Render(g.ID),
			primaryStyle.Render(g.Title),
			badgeStyle.Render(string(g.Category)),
			Stars(g.Rating),
			mutedStyle.Render(fmt.Sprintf("%d downloads", g.DownloadCount)),
		)
	}
}

// Game renders a single listing in full.
func Game(w io.Writer, g *models.Game) {
	Section(w, g.Title)
	_, _ = fmt.Fprintf(w, "%s  %s  %s\n", badgeStyle.Render(string(g.Category)), Stars(g.Rating), mutedStyle.Render(fmt.Sprintf("%.1f · %d downloads", g.Rating, g.DownloadCount)))
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, g.Description)
	if g.About != "" {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, stripTags(g.About))
	}
	if req := g.Requirements.Data(); req != (models.Requirements{}) {
		_, _ = fmt.Fprintln(w)
		if req.Minimum != "" {
			_, _ = fmt.Fprintln(w, mutedStyle.Render("Minimum: ")+stripTags(req.Minimum))
		}
		if req.Recommended != "" {
			_, _ = fmt.Fprintln(w, mutedStyle.Render("Recommended: ")+stripTags(req.Recommended))
		}
	}
	if n := len(g.Screenshots); n > 0 {
		_, _ = fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%d screenshots", n)))
	}
}

// Comments renders a comment thread, newest first.
func Comments(w io.Writer, comments []models.Comment) {
	if len(comments) == 0 {
		Muted(w, "No comments yet.")
		return
	}
	for _, c := range comments {
		who := "anonymous"
		if c.Author != nil && c.Author.Username != "" {
			who = c.Author.Username
		}
		if c.Game != nil {
			who = c.Game.Title
		}
		_, _ = fmt.Fprintf(w, "%s  %s  %s\n  %s\n",
			primaryStyle.Render(who),
			Stars(float64(c.Rating)),
			mutedStyle.Render(c.CreatedAt.Format("2006-01-02")),
			c.Content,
		)
	}
}

// Progress draws an in-place upload bar.
func Progress(w io.Writer, percent float64) {
	const width = 30
	filled := int(percent / 100 * width)
	bar := successStyle.Render(strings.Repeat("█", filled)) + mutedStyle.Render(strings.Repeat("░", width-filled))
	_, _ = fmt.Fprintf(w, "\r%s %5.1f%%", bar, percent)
	if percent >= 100 {
		_, _ = fmt.Fprintln(w)
	}
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}

// stripTags drops HTML markup from store descriptions.
func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
