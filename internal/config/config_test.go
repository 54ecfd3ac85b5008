package config

import (
	"errors"
	"io/fs"
	"slices"
	"testing"

	"github.com/dshills/composer/internal/config/loader"
	"github.com/dshills/composer/internal/engine"
	"github.com/dshills/composer/internal/engine/action"
)

type memFS map[string]string

func (m memFS) ReadFile(path string) ([]byte, error) {
	s, ok := m[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return []byte(s), nil
}

type mapLoader map[string]any

func (m mapLoader) Load() (map[string]any, error) {
	return m, nil
}

func TestDefault_Valid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoadWith_NoSources(t *testing.T) {
	cfg, err := LoadWith(memFS{}, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Formats.Bold != "b" || cfg.Actions.IDStrategy != IDStrategyUUID {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestLoadWith_MissingFile(t *testing.T) {
	cfg, err := LoadWith(memFS{}, "/etc/composer.toml", nil)
	if err != nil {
		t.Fatalf("missing file should fall back to defaults: %v", err)
	}
	if cfg.Bridge.MaxSessions != 64 {
		t.Errorf("MaxSessions = %d, want 64", cfg.Bridge.MaxSessions)
	}
}

func TestLoadWith_TOML(t *testing.T) {
	fsys := memFS{"/composer.toml": `
[formats]
bold = "strong"
italic = "em"

[actions]
idStrategy = "counter"
idPrefix = "req"
mentionTriggers = ["@", "#"]

[bridge]
maxSessions = 2
`}

	cfg, err := LoadWith(fsys, "/composer.toml", nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Formats.Bold != "strong" || cfg.Formats.Italic != "em" {
		t.Errorf("formats = %+v", cfg.Formats)
	}
	if cfg.Formats.Underline != "u" {
		t.Errorf("unset underline = %q, want default u", cfg.Formats.Underline)
	}
	if !slices.Equal(cfg.Actions.MentionTriggers, []string{"@", "#"}) {
		t.Errorf("MentionTriggers = %v", cfg.Actions.MentionTriggers)
	}
	if cfg.Bridge.MaxSessions != 2 {
		t.Errorf("MaxSessions = %d, want 2", cfg.Bridge.MaxSessions)
	}
	if got := cfg.IDGenerator().NewID(); got != "req-1" {
		t.Errorf("first id = %q, want req-1", got)
	}
}

func TestLoadWith_YAML(t *testing.T) {
	fsys := memFS{"/composer.yaml": `
log:
  level: debug
  development: true
  encoding: console
bridge:
  markupEncoding: utf16le
`}

	cfg, err := LoadWith(fsys, "/composer.yaml", nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Log.Level != "debug" || !cfg.Log.Development || cfg.Log.Encoding != "console" {
		t.Errorf("log = %+v", cfg.Log)
	}
	if cfg.Bridge.MarkupEncoding != MarkupEncodingUTF16LE {
		t.Errorf("MarkupEncoding = %q", cfg.Bridge.MarkupEncoding)
	}
}

func TestLoadWith_EnvOverridesFile(t *testing.T) {
	fsys := memFS{"/composer.toml": "[log]\nlevel = \"warn\"\n"}
	env := mapLoader{
		"log":     map[string]any{"level": "error"},
		"actions": map[string]any{"mentionTriggers": "@, #"},
	}

	cfg, err := LoadWith(fsys, "/composer.toml", env)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("Level = %q, want error", cfg.Log.Level)
	}
	if !slices.Equal(cfg.Actions.MentionTriggers, []string{"@", "#"}) {
		t.Errorf("MentionTriggers = %v, want [@ #]", cfg.Actions.MentionTriggers)
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("COMPOSER_ACTION_IDS", "counter")
	t.Setenv("COMPOSER_BLOCK_TAG", "div")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Actions.IDStrategy != IDStrategyCounter || cfg.Formats.Block != "div" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadWith_UnknownKey(t *testing.T) {
	fsys := memFS{"/composer.toml": "[formats]\nblink = \"blink\"\n"}

	_, err := LoadWith(fsys, "/composer.toml", nil)
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Code != ErrCodeUnknownSetting {
		t.Errorf("err = %v, want unknown_setting validation error", err)
	}
}

func TestLoadWith_ParseError(t *testing.T) {
	fsys := memFS{"/composer.toml": "[formats\n"}

	_, err := LoadWith(fsys, "/composer.toml", nil)
	var perr *loader.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *loader.ParseError", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
		code   ValidationErrorCode
	}{
		{"bold tag", func(c *Config) { c.Formats.Bold = "i" }, "formats.bold", ErrCodeInvalidEnum},
		{"code tag", func(c *Config) { c.Formats.InlineCode = "" }, "formats.inlineCode", ErrCodeInvalidEnum},
		{"block tag", func(c *Config) { c.Formats.Block = "b" }, "formats.block", ErrCodeInvalidEnum},
		{"id strategy", func(c *Config) { c.Actions.IDStrategy = "random" }, "actions.idStrategy", ErrCodeInvalidEnum},
		{"trigger", func(c *Config) { c.Actions.MentionTriggers = []string{"@ "} }, "actions.mentionTriggers", ErrCodeInvalidEnum},
		{"level", func(c *Config) { c.Log.Level = "loud" }, "log.level", ErrCodeInvalidEnum},
		{"encoding", func(c *Config) { c.Log.Encoding = "xml" }, "log.encoding", ErrCodeInvalidEnum},
		{"markup", func(c *Config) { c.Bridge.MarkupEncoding = "utf8" }, "bridge.markupEncoding", ErrCodeInvalidEnum},
		{"sessions", func(c *Config) { c.Bridge.MaxSessions = -1 }, "bridge.maxSessions", ErrCodeOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrValidationFailed) {
				t.Fatalf("Validate() = %v, want ErrValidationFailed", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() = %T, want *ValidationError inside", err)
			}
			if verr.Path != tt.path || verr.Code != tt.code {
				t.Errorf("got %s/%s, want %s/%s", verr.Path, verr.Code, tt.path, tt.code)
			}
		})
	}
}

func TestValidationErrorCode_String(t *testing.T) {
	if got := ErrCodeOutOfRange.String(); got != "out_of_range" {
		t.Errorf("String() = %q", got)
	}
	if got := ValidationErrorCode(42).String(); got != "unknown" {
		t.Errorf("String() = %q", got)
	}
}

func TestIDGenerator(t *testing.T) {
	cfg := Default()
	if _, ok := cfg.IDGenerator().(action.UUIDGenerator); !ok {
		t.Errorf("default generator = %T, want UUIDGenerator", cfg.IDGenerator())
	}
}

func TestEngineOptions(t *testing.T) {
	cfg := Default()
	cfg.Formats.Bold = "strong"
	cfg.Actions.IDStrategy = IDStrategyCounter
	cfg.Actions.MentionTriggers = nil

	logger, err := NewLogger(cfg.Log)
	if err != nil {
		t.Fatal(err)
	}
	c := engine.New(cfg.EngineOptions(logger)...)
	if _, err := c.ReplaceText("hi"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Select(0, 2); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Bold(); err != nil {
		t.Fatal(err)
	}
	if got := c.Markup(); got != "<strong>hi</strong>" {
		t.Errorf("Markup() = %q, want <strong>hi</strong>", got)
	}

	// Mentions are disabled with an empty trigger list.
	if _, err := c.Select(2, 2); err != nil {
		t.Fatal(err)
	}
	if _, err := c.ReplaceText(" @bob"); err != nil {
		t.Fatal(err)
	}
	if n := len(c.PendingActions()); n != 0 {
		t.Errorf("PendingActions() = %d, want 0", n)
	}
}

func TestNewLogger(t *testing.T) {
	if _, err := NewLogger(LogConfig{Level: "debug", Development: true}); err != nil {
		t.Errorf("NewLogger(dev) = %v", err)
	}
	if _, err := NewLogger(LogConfig{Level: "nope"}); err == nil {
		t.Error("expected error for bad level")
	}
}
