// Package config loads composer settings.
//
// Settings are layered: built-in defaults, then a TOML or YAML file, then
// COMPOSER_* environment variables. Each layer is a generic map merged
// with loader.DeepMerge; the merged map is decoded strictly into Config,
// so unknown keys are reported instead of silently ignored.
//
// A loaded Config converts into engine options with EngineOptions and
// builds the process logger with NewLogger. Live reload is provided by
// the watcher subpackage; callers re-run Load when it reports a change.
package config
