// Package env reads typed settings from the process environment. Unset, blank
// or unparsable values yield the caller's default.
package env

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

func lookup[T any](key string, def T, parse func(string) (T, error)) T {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	out, err := parse(v)
	if err != nil {
		return def
	}
	return out
}

func String(key, def string) string {
	return lookup(key, def, func(v string) (string, error) { return v, nil })
}

// StringsCSV splits a comma-separated list, dropping empty items.
func StringsCSV(key string, def []string) []string {
	out := lookup(key, def, func(v string) ([]string, error) {
		var items []string
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				items = append(items, p)
			}
		}
		return items, nil
	})
	if len(out) == 0 {
		return def
	}
	return out
}

func Int(key string, def int) int {
	return lookup(key, def, strconv.Atoi)
}

func Duration(key string, def time.Duration) time.Duration {
	return lookup(key, def, time.ParseDuration)
}

// Level accepts debug, info, warn and error, optionally with an offset
// such as "info+2".
func Level(key string, def slog.Level) slog.Level {
	return lookup(key, def, func(v string) (slog.Level, error) {
		var lvl slog.Level
		err := lvl.UnmarshalText([]byte(v))
		return lvl, err
	})
}
