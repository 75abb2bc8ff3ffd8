package config

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"
)

// loadDotEnv sets variables from the given files. Earlier files win over later
// ones and the process environment wins over all of them. Missing files are
// ignored.
func loadDotEnv(paths ...string) error {
	for _, p := range paths {
		f, err := os.Open(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return err
		}
		vars, err := parseDotEnv(f)
		_ = f.Close()
		if err != nil {
			return err
		}
		for k, v := range vars {
			if _, set := os.LookupEnv(k); set {
				continue
			}
			if err := os.Setenv(k, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// parseDotEnv reads KEY=VALUE lines. Blank lines, comments and lines without
// "=" are skipped.
func parseDotEnv(r io.Reader) (map[string]string, error) {
	out := map[string]string{}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))

		key, raw, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" || strings.ContainsAny(key, " \t") {
			continue
		}
		out[key] = dotEnvValue(strings.TrimSpace(raw))
	}
	return out, sc.Err()
}

func dotEnvValue(v string) string {
	if len(v) >= 2 {
		switch q := v[0]; {
		case q == '\'' && v[len(v)-1] == q:
			return v[1 : len(v)-1]
		case q == '"' && v[len(v)-1] == q:
			return strings.NewReplacer(`\n`, "\n", `\"`, `"`, `\\`, `\`).Replace(v[1 : len(v)-1])
		}
	}
	// Unquoted values may carry a trailing " # comment".
	if i := strings.Index(v, " #"); i >= 0 {
		v = strings.TrimSpace(v[:i])
	}
	return v
}
