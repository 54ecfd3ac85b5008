package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dshills/composer/internal/config/loader"
	"github.com/dshills/composer/internal/engine"
	"github.com/dshills/composer/internal/engine/action"
	"github.com/dshills/composer/internal/engine/buffer"
)

// Action identifier strategies.
const (
	IDStrategyUUID    = "uuid"
	IDStrategyCounter = "counter"
)

// Bridge markup encodings.
const (
	MarkupEncodingString  = "string"
	MarkupEncodingUTF16LE = "utf16le"
)

// Config holds every composer setting.
type Config struct {
	Formats FormatsConfig `toml:"formats"`
	Actions ActionsConfig `toml:"actions"`
	Log     LogConfig     `toml:"log"`
	Bridge  BridgeConfig  `toml:"bridge"`
}

// FormatsConfig selects the tags written for newly applied formats.
type FormatsConfig struct {
	Bold          string `toml:"bold"`
	Italic        string `toml:"italic"`
	Underline     string `toml:"underline"`
	StrikeThrough string `toml:"strikeThrough"`
	InlineCode    string `toml:"inlineCode"`
	// Block is the tag of blocks created by Enter.
	Block string `toml:"block"`
}

// ActionsConfig controls link and mention actions.
type ActionsConfig struct {
	IDStrategy      string   `toml:"idStrategy"`
	IDPrefix        string   `toml:"idPrefix"`
	MentionTriggers []string `toml:"mentionTriggers"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
	Encoding    string `toml:"encoding"`
}

// BridgeConfig controls the host bridge.
type BridgeConfig struct {
	MarkupEncoding string `toml:"markupEncoding"`
	MaxSessions    int    `toml:"maxSessions"`
	Listen         string `toml:"listen"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Formats: FormatsConfig{
			Bold:          "b",
			Italic:        "i",
			Underline:     "u",
			StrikeThrough: "del",
			InlineCode:    "code",
			Block:         buffer.DefaultBlockTag,
		},
		Actions: ActionsConfig{
			IDStrategy:      IDStrategyUUID,
			IDPrefix:        "action",
			MentionTriggers: []string{engine.DefaultMentionTrigger},
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "json",
		},
		Bridge: BridgeConfig{
			MarkupEncoding: MarkupEncodingString,
			MaxSessions:    64,
		},
	}
}

// Load reads the file at path (if any) and the environment on top of the
// defaults. An empty path or a missing file leaves the defaults in place.
func Load(path string) (*Config, error) {
	return LoadWith(loader.DefaultFS(), path, loader.NewEnvLoader(loader.DefaultEnvPrefix))
}

// LoadWith is Load with an explicit file system and environment loader.
// A nil env skips environment overrides.
func LoadWith(fsys loader.FileSystem, path string, env loader.Loader) (*Config, error) {
	merged := make(map[string]any)

	if path != "" {
		data, err := loader.ForPath(fsys, path).Load()
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, data)
	}
	if env != nil {
		data, err := env.Load()
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, data)
	}

	cfg := Default()
	if err := cfg.apply(merged); err != nil {
		if path != "" {
			return nil, fmt.Errorf("config %s: %w", filepath.Base(path), err)
		}
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// apply decodes a merged settings map over the current values.
func (c *Config) apply(data map[string]any) error {
	if len(data) == 0 {
		return nil
	}
	normalize(data)

	raw, err := toml.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	dec := toml.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		var missing *toml.StrictMissingError
		if errors.As(err, &missing) {
			return &ValidationError{
				Path:    "settings",
				Message: "unknown setting",
				Value:   strings.TrimSpace(missing.String()),
				Code:    ErrCodeUnknownSetting,
			}
		}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			return &ValidationError{
				Path:    strings.Join(derr.Key(), "."),
				Message: derr.Error(),
				Code:    ErrCodeTypeMismatch,
			}
		}
		return &ValidationError{Path: "settings", Message: err.Error(), Code: ErrCodeTypeMismatch}
	}
	return nil
}

// normalize accepts a comma-separated string for mentionTriggers.
func normalize(data map[string]any) {
	actions, ok := data["actions"].(map[string]any)
	if !ok {
		return
	}
	if s, ok := actions["mentionTriggers"].(string); ok {
		triggers := []any{}
		for _, t := range strings.Split(s, ",") {
			if t = strings.TrimSpace(t); t != "" {
				triggers = append(triggers, t)
			}
		}
		actions["mentionTriggers"] = triggers
	}
}

// Validate checks every setting and returns all failures.
func (c *Config) Validate() error {
	var errs ValidationErrors

	tags := []struct {
		path   string
		format buffer.Format
		tag    string
	}{
		{"formats.bold", buffer.Bold, c.Formats.Bold},
		{"formats.italic", buffer.Italic, c.Formats.Italic},
		{"formats.underline", buffer.Underline, c.Formats.Underline},
		{"formats.strikeThrough", buffer.StrikeThrough, c.Formats.StrikeThrough},
		{"formats.inlineCode", buffer.InlineCode, c.Formats.InlineCode},
	}
	for _, t := range tags {
		if buffer.FormatForTag(t.tag) != t.format {
			errs = append(errs, &ValidationError{
				Path:    t.path,
				Message: "tag does not denote " + t.format.String(),
				Value:   t.tag,
				Code:    ErrCodeInvalidEnum,
			})
		}
	}
	if !buffer.IsBlockTag(c.Formats.Block) {
		errs = append(errs, &ValidationError{
			Path: "formats.block", Message: "not a block tag", Value: c.Formats.Block, Code: ErrCodeInvalidEnum,
		})
	}

	if !slices.Contains([]string{IDStrategyUUID, IDStrategyCounter}, c.Actions.IDStrategy) {
		errs = append(errs, &ValidationError{
			Path: "actions.idStrategy", Message: "must be uuid or counter", Value: c.Actions.IDStrategy, Code: ErrCodeInvalidEnum,
		})
	}
	for _, t := range c.Actions.MentionTriggers {
		if t == "" || strings.ContainsAny(t, " \t\n") {
			errs = append(errs, &ValidationError{
				Path: "actions.mentionTriggers", Message: "trigger must be non-empty without whitespace", Value: t, Code: ErrCodeInvalidEnum,
			})
		}
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, &ValidationError{
			Path: "log.level", Message: "unknown level", Value: c.Log.Level, Code: ErrCodeInvalidEnum,
		})
	}
	if c.Log.Encoding != "json" && c.Log.Encoding != "console" {
		errs = append(errs, &ValidationError{
			Path: "log.encoding", Message: "must be json or console", Value: c.Log.Encoding, Code: ErrCodeInvalidEnum,
		})
	}

	if c.Bridge.MarkupEncoding != MarkupEncodingString && c.Bridge.MarkupEncoding != MarkupEncodingUTF16LE {
		errs = append(errs, &ValidationError{
			Path: "bridge.markupEncoding", Message: "must be string or utf16le", Value: c.Bridge.MarkupEncoding, Code: ErrCodeInvalidEnum,
		})
	}
	if c.Bridge.MaxSessions < 0 {
		errs = append(errs, &ValidationError{
			Path: "bridge.maxSessions", Message: "must not be negative", Value: c.Bridge.MaxSessions, Code: ErrCodeOutOfRange,
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// IDGenerator returns the action identifier generator selected by the
// configuration.
func (c *Config) IDGenerator() action.IDGenerator {
	if c.Actions.IDStrategy == IDStrategyCounter {
		return action.NewCounterGenerator(c.Actions.IDPrefix)
	}
	return action.UUIDGenerator{}
}

// EngineOptions converts the configuration into composer options.
func (c *Config) EngineOptions(logger *zap.Logger) []engine.Option {
	return []engine.Option{
		engine.WithLogger(logger),
		engine.WithFormatTag(buffer.Bold, c.Formats.Bold),
		engine.WithFormatTag(buffer.Italic, c.Formats.Italic),
		engine.WithFormatTag(buffer.Underline, c.Formats.Underline),
		engine.WithFormatTag(buffer.StrikeThrough, c.Formats.StrikeThrough),
		engine.WithFormatTag(buffer.InlineCode, c.Formats.InlineCode),
		engine.WithBlockTag(c.Formats.Block),
		engine.WithMentionTriggers(c.Actions.MentionTriggers...),
		engine.WithIDGenerator(c.IDGenerator()),
	}
}

// NewLogger builds the process logger. Output goes to stderr so stdout
// stays free for the bridge protocol.
func NewLogger(lc LogConfig) (*zap.Logger, error) {
	var zc zap.Config
	if lc.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}

	level, err := zap.ParseAtomicLevel(lc.Level)
	if err != nil {
		return nil, err
	}
	zc.Level = level
	if lc.Encoding != "" {
		zc.Encoding = lc.Encoding
	}
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}

// DefaultPath returns the first existing config file in the user config
// directory, or "" when there is none.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	for _, name := range []string{"composer.toml", "composer.yaml", "composer.yml"} {
		path := filepath.Join(dir, "composer", name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
