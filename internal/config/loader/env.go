package loader

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
)

// DefaultEnvPrefix prefixes every composer environment variable.
const DefaultEnvPrefix = "COMPOSER_"

// EnvLoader loads configuration from environment variables.
// Only mapped variables are read; the COMPOSER_ prefix is shared with
// unrelated tools.
type EnvLoader struct {
	prefix  string
	mapping map[string]string // Env var suffix -> config path
	lookup  func(string) (string, bool)
}

// NewEnvLoader creates a new environment variable loader.
// The prefix should include the trailing underscore (e.g., "COMPOSER_").
func NewEnvLoader(prefix string) *EnvLoader {
	return NewEnvLoaderWithMapping(prefix, defaultEnvMapping())
}

// NewEnvLoaderWithMapping creates a loader with custom mappings. Keys are
// variable names without the prefix.
func NewEnvLoaderWithMapping(prefix string, mapping map[string]string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: mapping,
		lookup:  os.LookupEnv,
	}
}

// defaultEnvMapping returns the default environment variable mappings.
func defaultEnvMapping() map[string]string {
	return map[string]string{
		"LOG_LEVEL":        "log.level",
		"LOG_DEVELOPMENT":  "log.development",
		"LOG_ENCODING":     "log.encoding",
		"FORMAT_BOLD":      "formats.bold",
		"FORMAT_ITALIC":    "formats.italic",
		"FORMAT_UNDERLINE": "formats.underline",
		"FORMAT_STRIKE":    "formats.strikeThrough",
		"FORMAT_CODE":      "formats.inlineCode",
		"BLOCK_TAG":        "formats.block",
		"ACTION_IDS":       "actions.idStrategy",
		"ACTION_PREFIX":    "actions.idPrefix",
		"MENTION_TRIGGERS": "actions.mentionTriggers",
		"MARKUP_ENCODING":  "bridge.markupEncoding",
		"MAX_SESSIONS":     "bridge.maxSessions",
		"LISTEN":           "bridge.listen",
	}
}

// Load reads the mapped environment variables and returns a configuration map.
// Note: Empty string values are treated as valid values, not as unset.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)
	for suffix, path := range l.mapping {
		if val, ok := l.lookup(l.prefix + suffix); ok {
			setByPath(config, path, parseValue(val))
		}
	}
	return config, nil
}

// AddMapping adds a custom environment variable mapping.
func (l *EnvLoader) AddMapping(suffix, configPath string) {
	if l.mapping == nil {
		l.mapping = make(map[string]string)
	}
	l.mapping[suffix] = configPath
}

// parseValue attempts to parse the string value into an appropriate type.
func parseValue(s string) any {
	if s == "" {
		return s
	}

	lower := strings.ToLower(s)
	if lower == "true" || lower == "yes" || lower == "on" {
		return true
	}
	if lower == "false" || lower == "no" || lower == "off" {
		return false
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}

	// Try JSON array
	if strings.HasPrefix(s, "[") {
		var v []any
		if err := json.Unmarshal([]byte(s), &v); err == nil {
			return v
		}
	}

	return s
}

// setByPath sets a value in a nested map using a dot-separated path.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data

	for _, part := range parts[:len(parts)-1] {
		if next, ok := current[part].(map[string]any); ok {
			current = next
		} else {
			next := make(map[string]any)
			current[part] = next
			current = next
		}
	}
	current[parts[len(parts)-1]] = value
}
