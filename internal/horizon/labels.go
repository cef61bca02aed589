package horizon

import (
	"fmt"
	"time"

	"github.com/BuzzLyutic/tasks-client/internal/model"
)

var weekdays = [...]string{
	"domingo", "segunda-feira", "terça-feira", "quarta-feira",
	"quinta-feira", "sexta-feira", "sábado",
}

var months = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

const invalidDate = "Data inválida"

func Title(h Horizon) string {
	switch h {
	case Tomorrow:
		return "Amanhã"
	case Week:
		return "Semana"
	case Month:
		return "Mês"
	default:
		return "Hoje"
	}
}

// Color is the accent used by the screen of h.
func Color(h Horizon) string {
	switch h {
	case Tomorrow:
		return "#C9742E"
	case Week:
		return "#15721E"
	case Month:
		return "#1631BE"
	default:
		return "#B13B44"
	}
}

// Subtitle is the header line under the screen title.
func (l Locale) Subtitle(h Horizon, now time.Time) string {
	switch h {
	case Tomorrow:
		return longDay(now.AddDate(0, 0, 1))
	case Week:
		start, end := l.Range(Week, now)
		return shortDay(start) + " até " + shortDay(end)
	case Month:
		return "Mês de " + months[now.Month()-1]
	default:
		return longDay(now)
	}
}

func Subtitle(h Horizon, now time.Time) string {
	return PtBR.Subtitle(h, now)
}

// FormatDay renders ts as "segunda-feira, 19 de outubro".
func FormatDay(ts model.Timestamp) string {
	if !ts.Valid {
		return invalidDate
	}
	return longDay(ts.Time.In(time.Local))
}

// DisplayDate is the date a task row shows: completion when done, else the estimate.
func DisplayDate(t model.Task) model.Timestamp {
	if t.Done() {
		return t.DoneAt
	}
	return t.EstimateAt
}

func longDay(t time.Time) string {
	return fmt.Sprintf("%s, %s", weekdays[t.Weekday()], shortDay(t))
}

func shortDay(t time.Time) string {
	return fmt.Sprintf("%d de %s", t.Day(), months[t.Month()-1])
}
