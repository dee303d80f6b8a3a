package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Each reader returns def when the variable is unset, empty or unparsable.

func envString(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func envFloat(k string, def float64) float64 {
	if f, err := strconv.ParseFloat(envString(k, ""), 64); err == nil {
		return f
	}
	return def
}

func envInt(k string, def int) int {
	if i, err := strconv.Atoi(envString(k, "")); err == nil {
		return i
	}
	return def
}

func envBool(k string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(envString(k, ""))) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	}
	return def
}

func envDuration(k string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(envString(k, "")); err == nil {
		return d
	}
	return def
}

// envList splits a comma separated value, dropping blanks.
func envList(k string) []string {
	raw := envString(k, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalizeBasePath forces a leading slash and drops a trailing one.
func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	return "/" + p
}
