// Package debug provides the process logger and category-based debug
// logging for promptly.
//
// Two orthogonal controls:
//   - Categories (WHAT to debug): controlled via PROMPTLY_DEBUG env or config
//   - Levels (HOW MUCH detail): controlled via PROMPTLY_LOG_LEVEL env or config
//
// Usage:
//
//	debug.Log("providers", "request", zap.String("model", model))
//	if debug.Enabled("providers") { /* expensive formatting */ }
//
// Categories: providers, engine, config, all.
// Levels: ERROR, WARN, INFO, DEBUG, TRACE.
package debug

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"unicode/utf8"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LevelTrace is below zapcore.DebugLevel for maximum verbosity.
// At TRACE, full untruncated request/response bodies are logged.
const LevelTrace = zapcore.DebugLevel - 1

// categories holds the set of enabled debug categories.
// Access is read-only after Init(), so no synchronization needed.
var categories map[string]bool

var logger atomic.Pointer[zap.Logger]

func init() {
	// Initialize from environment for immediate availability.
	// Can be re-initialized later via Init() with config values.
	categories = parseCategories(os.Getenv("PROMPTLY_DEBUG"))
	logger.Store(zap.NewNop())
}

// Init configures the debug system and builds the process logger. Called at
// startup with values from config. Environment overrides config. format is
// "console" (default) or "json".
func Init(configCategories, configLevel, format string) (*zap.Logger, error) {
	cats := os.Getenv("PROMPTLY_DEBUG")
	if cats == "" {
		cats = configCategories
	}
	categories = parseCategories(cats)

	level := os.Getenv("PROMPTLY_LOG_LEVEL")
	if level == "" {
		level = configLevel
	}

	l, err := newLogger(ParseLevel(level), format)
	if err != nil {
		return nil, err
	}
	logger.Store(l)
	return l, nil
}

func newLogger(level zapcore.Level, format string) (*zap.Logger, error) {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = levelEncoder

	var enc zapcore.Encoder
	switch strings.ToLower(format) {
	case "", "console":
		enc = zapcore.NewConsoleEncoder(encCfg)
	case "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	default:
		return nil, fmt.Errorf("unknown log format %q (valid: console, json)", format)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(os.Stderr), level)
	return zap.New(core), nil
}

// levelEncoder renders LevelTrace as "TRACE" and other levels in capitals.
func levelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	if l == LevelTrace {
		enc.AppendString("TRACE")
		return
	}
	zapcore.CapitalLevelEncoder(l, enc)
}

// Logger returns the process logger. Before Init it is a no-op logger.
func Logger() *zap.Logger {
	return logger.Load()
}

// SetLogger replaces the process logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l)
}

// Enabled reports whether debug output is active for the given category.
// This is a constant-time map lookup with zero allocation.
func Enabled(category string) bool {
	return categories["all"] || categories[category]
}

// Log emits a debug message for the given category.
// If the category is not enabled, this is a no-op.
func Log(category string, msg string, fields ...zap.Field) {
	if !Enabled(category) {
		return
	}
	Logger().Debug(msg, append(fields, zap.String("debug", category))...)
}

// Trace emits a trace-level message for the given category.
// Only visible when PROMPTLY_LOG_LEVEL=TRACE.
func Trace(category string, msg string, fields ...zap.Field) {
	if !Enabled(category) {
		return
	}
	if ce := Logger().Check(LevelTrace, msg); ce != nil {
		ce.Write(append(fields, zap.String("debug", category))...)
	}
}

// TraceIsEnabled reports whether TRACE level is active for the given category.
func TraceIsEnabled(category string) bool {
	if !Enabled(category) {
		return false
	}
	return Logger().Core().Enabled(LevelTrace)
}

// Raw writes plain text to stderr without any log formatting.
// Use this for copy-paste-ready output (full HTTP bodies).
// Only emitted when category is enabled AND level is TRACE.
func Raw(category string, text string) {
	if !TraceIsEnabled(category) {
		return
	}
	fmt.Fprintln(os.Stderr, text)
}

// ParseLevel converts a level string to a zapcore.Level.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return LevelTrace
	case "DEBUG":
		return zapcore.DebugLevel
	case "INFO", "":
		return zapcore.InfoLevel
	case "WARN", "WARNING":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Categories returns the sorted list of enabled categories.
func Categories() []string {
	result := make([]string, 0, len(categories))
	for k := range categories {
		result = append(result, k)
	}
	slices.Sort(result)
	return result
}

// Truncate returns s cut to at most maxLen bytes, with "..." appended if
// truncated. The cut never splits a UTF-8 sequence.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := max(maxLen, 0)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func parseCategories(s string) map[string]bool {
	m := make(map[string]bool)
	if s == "" {
		return m
	}
	for _, cat := range strings.Split(s, ",") {
		cat = strings.TrimSpace(strings.ToLower(cat))
		if cat != "" {
			m[cat] = true
		}
	}
	return m
}
