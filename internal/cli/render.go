package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/BuzzLyutic/tasks-client/internal/horizon"
	"github.com/BuzzLyutic/tasks-client/internal/model"
	"github.com/BuzzLyutic/tasks-client/internal/tasklist"
)

const muted = lipgloss.Color("8")

// renderList draws the header of the screen and one row per visible task.
// Colours are dropped when w is not a terminal.
func renderList(w io.Writer, c *tasklist.Controller, now time.Time) string {
	r := lipgloss.NewRenderer(w)
	accent := lipgloss.Color(horizon.Color(c.Horizon()))
	title, subtitle := c.Header(now)

	lines := []string{
		r.NewStyle().Bold(true).Foreground(accent).Render(title),
		r.NewStyle().Foreground(accent).Render(subtitle),
		"",
	}

	tasks := c.Visible(now)
	if len(tasks) == 0 {
		lines = append(lines, r.NewStyle().Italic(true).Foreground(muted).Render("Nenhuma tarefa"))
	}
	for _, t := range tasks {
		lines = append(lines, renderRow(r, t))
	}
	return strings.Join(lines, "\n") + "\n"
}

func renderRow(r *lipgloss.Renderer, t model.Task) string {
	check, desc := "[ ]", r.NewStyle().Render(t.Desc)
	if t.Done() {
		check = "[x]"
		desc = r.NewStyle().Strikethrough(true).Render(t.Desc)
	}
	date := r.NewStyle().Foreground(muted).Render(horizon.FormatDay(horizon.DisplayDate(t)))
	return fmt.Sprintf("%s #%d %s  %s", check, t.ID, desc, date)
}
