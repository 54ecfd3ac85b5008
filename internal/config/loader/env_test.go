package loader

import (
	"strings"
	"testing"
)

func getByPath(data map[string]any, path string) (any, bool) {
	current := data
	parts := strings.Split(path, ".")
	for i, part := range parts {
		val, ok := current[part]
		if !ok {
			return nil, false
		}
		if i == len(parts)-1 {
			return val, true
		}
		if current, ok = val.(map[string]any); !ok {
			return nil, false
		}
	}
	return nil, false
}

func TestEnvLoader_Load(t *testing.T) {
	t.Setenv("COMPOSER_LOG_LEVEL", "debug")
	t.Setenv("COMPOSER_MAX_SESSIONS", "4")
	t.Setenv("COMPOSER_LOG_DEVELOPMENT", "yes")
	t.Setenv("COMPOSER_MENTION_TRIGGERS", `["@", "#"]`)

	config, err := NewEnvLoader(DefaultEnvPrefix).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if val, ok := getByPath(config, "log.level"); !ok || val != "debug" {
		t.Errorf("log.level = %v, want debug", val)
	}
	if val, ok := getByPath(config, "bridge.maxSessions"); !ok || val != int64(4) {
		t.Errorf("bridge.maxSessions = %v (%T), want 4", val, val)
	}
	if val, ok := getByPath(config, "log.development"); !ok || val != true {
		t.Errorf("log.development = %v, want true", val)
	}
	if val, ok := getByPath(config, "actions.mentionTriggers"); !ok || len(val.([]any)) != 2 {
		t.Errorf("actions.mentionTriggers = %v, want 2 entries", val)
	}
}

func TestEnvLoader_IgnoresUnmapped(t *testing.T) {
	t.Setenv("COMPOSER_HOME", "/tmp/php")

	config, err := NewEnvLoader(DefaultEnvPrefix).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, ok := config["home"]; ok {
		t.Error("unmapped variable should be ignored")
	}
}

func TestEnvLoader_AddMapping(t *testing.T) {
	t.Setenv("TEST_X_TAG", "em")

	l := NewEnvLoaderWithMapping("TEST_X_", nil)
	l.AddMapping("TAG", "formats.italic")
	config, _ := l.Load()

	if val, ok := getByPath(config, "formats.italic"); !ok || val != "em" {
		t.Errorf("formats.italic = %v, want em", val)
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"", ""},
		{"true", true},
		{"Off", false},
		{"42", int64(42)},
		{"@", "@"},
		{"utf16le", "utf16le"},
		{"[oops", "[oops"},
	}
	for _, tt := range tests {
		if got := parseValue(tt.in); got != tt.want {
			t.Errorf("parseValue(%q) = %v (%T), want %v", tt.in, got, got, tt.want)
		}
	}
}
