// Package telemetry provides the structured logger used throughout taskflow.
//
// It wraps zap the same way the rest of this codebase's lineage does: a thin
// Logger type over a SugaredLogger, with key/value redaction for fields that
// look like secrets. Handler authors can log arbitrary payload data through
// the executor's logger without worrying about leaking a credential a
// payload happened to carry.
package telemetry

import (
	"strings"

	"go.uber.org/zap"
)

// Logger is a structured, leveled logger with automatic redaction of
// sensitive key/value pairs.
type Logger struct {
	sugar *zap.SugaredLogger
}

// New builds a Logger. mode selects the zap preset: "prod"/"production"
// yields a production config (JSON, info+), anything else (including "")
// yields a development config (console, debug+).
func New(mode string) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{sugar: z.Sugar()}, nil
}

// Noop returns a Logger that discards everything. Useful as a default so
// callers never need a nil check.
func Noop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

func (l *Logger) Sync() {
	if l == nil || l.sugar == nil {
		return
	}
	_ = l.sugar.Sync()
}

func (l *Logger) Debug(msg string, kv ...interface{}) { l.log(l.sugar.Debugw, msg, kv) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.log(l.sugar.Infow, msg, kv) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.log(l.sugar.Warnw, msg, kv) }
func (l *Logger) Error(msg string, kv ...interface{}) { l.log(l.sugar.Errorw, msg, kv) }

func (l *Logger) log(fn func(string, ...interface{}), msg string, kv []interface{}) {
	if l == nil || l.sugar == nil {
		return
	}
	fn(msg, sanitize(kv)...)
}

// With returns a child Logger carrying the given key/value pairs on every
// subsequent log call.
func (l *Logger) With(kv ...interface{}) *Logger {
	if l == nil || l.sugar == nil {
		return Noop()
	}
	return &Logger{sugar: l.sugar.With(sanitize(kv)...)}
}

// sanitize redacts values whose key looks like a secret. Keys are matched
// case-insensitively by substring, not exact name, since payload fields are
// caller-defined and can't be enumerated in advance.
func sanitize(kv []interface{}) []interface{} {
	if len(kv) == 0 {
		return kv
	}
	out := make([]interface{}, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i == len(kv)-1 {
			out = append(out, kv[i])
			break
		}
		key := strings.ToLower(strings.TrimSpace(toString(kv[i])))
		out = append(out, kv[i], redactIfSecret(key, kv[i+1]))
	}
	return out
}

func redactIfSecret(key string, val interface{}) interface{} {
	if key == "" {
		return val
	}
	switch {
	case strings.Contains(key, "token"),
		strings.Contains(key, "secret"),
		strings.Contains(key, "password"),
		strings.Contains(key, "authorization"),
		strings.Contains(key, "cookie"),
		strings.Contains(key, "api_key"),
		strings.Contains(key, "apikey"):
		return "[REDACTED]"
	default:
		return val
	}
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return ""
	}
}
