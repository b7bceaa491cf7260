package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by [EnvOverride]
const (
	EnvLogLevel       = "EXPLORER_LOG_LEVEL"
	EnvOSProfile      = "EXPLORER_OS_PROFILE"
	EnvSortOrder      = "EXPLORER_SORT_ORDER"
	EnvNestingEnabled = "EXPLORER_FILE_NESTING_ENABLED"
	// EnvNestingPatterns holds "primary=dependents" pairs separated by ';'
	EnvNestingPatterns = "EXPLORER_FILE_NESTING_PATTERNS"
	EnvListTimeout     = "EXPLORER_LIST_TIMEOUT"
)

// LoadDotEnv loads the given .env files (or ./.env) into the process
// environment. Missing files are ignored; existing variables win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// EnvOverride builds a ConfigOverride from EXPLORER_* variables found through
// lookup. Pass [os.LookupEnv] for the process environment.
func EnvOverride(lookup func(string) (string, bool)) (*ConfigOverride, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	o := &ConfigOverride{}

	if v, ok := lookup(EnvLogLevel); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
		o.LogLvl = &n
	}
	if v, ok := lookup(EnvOSProfile); ok {
		o.OSProfile = &v
	}
	if v, ok := lookup(EnvSortOrder); ok {
		o.SortOrder = &v
	}
	if v, ok := lookup(EnvNestingEnabled); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvNestingEnabled, err)
		}
		o.FileNesting = &FileNestingOverride{Enabled: &b}
	}
	if v, ok := lookup(EnvNestingPatterns); ok {
		patterns, err := parsePatterns(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvNestingPatterns, err)
		}
		if o.FileNesting == nil {
			o.FileNesting = &FileNestingOverride{}
		}
		o.FileNesting.Patterns = patterns
	}
	if v, ok := lookup(EnvListTimeout); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvListTimeout, err)
		}
		o.ListTimeout = &f
	}
	return o, nil
}

func parsePatterns(s string) (map[string]string, error) {
	patterns := make(map[string]string)
	for pair := range strings.SplitSeq(s, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		primary, deps, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(primary) == "" {
			return nil, fmt.Errorf("malformed pattern %q", pair)
		}
		patterns[strings.TrimSpace(primary)] = strings.TrimSpace(deps)
	}
	return patterns, nil
}
