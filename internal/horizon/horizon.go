// Package horizon computes the date windows behind the Hoje/Amanhã/Semana/Mês
// screens and narrows task lists to them.
package horizon

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BuzzLyutic/tasks-client/internal/model"
)

type Horizon int

const (
	Today Horizon = iota
	Tomorrow
	Week
	Month
)

var All = []Horizon{Today, Tomorrow, Week, Month}

var ErrUnknown = errors.New("unknown horizon")

var aliases = map[string]Horizon{
	"hoje":     Today,
	"today":    Today,
	"amanha":   Tomorrow,
	"tomorrow": Tomorrow,
	"semana":   Week,
	"week":     Week,
	"mes":      Month,
	"month":    Month,
}

var foldAccents = strings.NewReplacer("ã", "a", "á", "a", "â", "a", "ê", "e", "é", "e")

// Parse accepts the screen titles and their English names, ignoring case and accents.
func Parse(s string) (Horizon, error) {
	key := foldAccents.Replace(strings.ToLower(strings.TrimSpace(s)))
	if h, ok := aliases[key]; ok {
		return h, nil
	}
	return Today, fmt.Errorf("%w: %q", ErrUnknown, s)
}

func (h Horizon) String() string {
	return Title(h)
}

// Locale carries the calendar convention used for week boundaries.
type Locale struct {
	WeekStart time.Weekday
}

// PtBR is the reference locale; its weeks start on Sunday.
var PtBR = Locale{WeekStart: time.Sunday}

// Range returns the inclusive window of h around now, in now's location.
// end is the last millisecond of the period.
func (l Locale) Range(h Horizon, now time.Time) (start, end time.Time) {
	day := startOfDay(now)
	var next time.Time

	switch h {
	case Tomorrow:
		start = day.AddDate(0, 0, 1)
		next = start.AddDate(0, 0, 1)
	case Week:
		offset := (int(day.Weekday()) - int(l.WeekStart) + 7) % 7
		start = day.AddDate(0, 0, -offset)
		next = start.AddDate(0, 0, 7)
	case Month:
		start = time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		next = start.AddDate(0, 1, 0)
	default:
		start = day
		next = start.AddDate(0, 0, 1)
	}
	return start, next.Add(-time.Millisecond)
}

// Filter returns the tasks whose estimateAt falls inside the window of h,
// both ends included. Input order is kept and tasks is never modified.
// Tasks without a usable estimateAt never match.
func (l Locale) Filter(tasks []model.Task, h Horizon, now time.Time) []model.Task {
	start, end := l.Range(h, now)

	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.EstimateAt.Valid {
			continue
		}
		if Within(t.EstimateAt.Time, start, end) {
			out = append(out, t)
		}
	}
	return out
}

func Range(h Horizon, now time.Time) (time.Time, time.Time) {
	return PtBR.Range(h, now)
}

func Filter(tasks []model.Task, h Horizon, now time.Time) []model.Task {
	return PtBR.Filter(tasks, h, now)
}

// Within is the inclusive membership test.
func Within(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
