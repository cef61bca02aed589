package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	APIURL      string
	StorePath   string
	LogLevel    string
	WeekStart   time.Weekday
	HTTPTimeout time.Duration // 0 means no timeout
	WorkerCount int
}

func Load() Config {
	return Config{
		APIURL:      getEnv("TASKS_API_URL", "http://localhost:3000"),
		StorePath:   getEnv("TASKS_STORE_PATH", defaultStorePath()),
		LogLevel:    getEnv("LOG_LEVEL", "warn"),
		WeekStart:   parseWeekday(getEnv("TASKS_WEEK_START", "sunday")),
		HTTPTimeout: parseDuration(getEnv("TASKS_HTTP_TIMEOUT", "0")),
		WorkerCount: parseInt(getEnv("TASKS_WORKERS", "3"), 3),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "tasks.db"
	}
	return filepath.Join(dir, "tasks", "tasks.db")
}

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "domingo": time.Sunday,
	"monday": time.Monday, "segunda": time.Monday,
	"tuesday": time.Tuesday, "terca": time.Tuesday,
	"wednesday": time.Wednesday, "quarta": time.Wednesday,
	"thursday": time.Thursday, "quinta": time.Thursday,
	"friday": time.Friday, "sexta": time.Friday,
	"saturday": time.Saturday, "sabado": time.Saturday,
}

func parseWeekday(s string) time.Weekday {
	if d, ok := weekdays[strings.ToLower(strings.TrimSpace(s))]; ok {
		return d
	}
	return time.Sunday
}

func parseDuration(s string) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return 0
}

func parseInt(s string, def int) int {
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return def
}
