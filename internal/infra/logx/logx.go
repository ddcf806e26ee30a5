package logx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "debug"
	}
}

func (l Level) slog() slog.Level {
	switch l {
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}

// ParseLevel maps a textual level to a Level; unknown values yield LevelWarn.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "error":
		return LevelError
	default:
		return LevelWarn
	}
}

const maxFieldLen = 2 * 1024

var (
	mu       sync.RWMutex
	minLevel           = LevelWarn
	out      io.Writer = io.Discard
	secrets            = make([]string, 0)
	verbose  bool
)

// SetOutput sets the destination for logs. A nil writer discards output.
func SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	mu.Lock()
	out = w
	mu.Unlock()
}

// SetMinLevel sets the minimum level to emit.
func SetMinLevel(l Level) { mu.Lock(); minLevel = l; mu.Unlock() }

// SetVerbose toggles verbose output (no truncation of large fields/messages).
func SetVerbose(v bool) { mu.Lock(); verbose = v; mu.Unlock() }

// Verbose returns whether verbose output is enabled.
func Verbose() bool { mu.RLock(); defer mu.RUnlock(); return verbose }

// RegisterSecret adds a string to be redacted in outputs.
func RegisterSecret(s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	mu.Lock()
	secrets = append(secrets, s)
	mu.Unlock()
}

// Fields are structured key/value pairs attached to a log line.
type Fields map[string]any

// Entry is a logger carrying fixed fields.
type Entry struct {
	fields Fields
}

// With returns an Entry that attaches f to every line it logs.
func With(f Fields) *Entry {
	cp := make(Fields, len(f))
	for k, v := range f {
		cp[k] = v
	}
	return &Entry{fields: cp}
}

// With merges additional fields into a copy of the entry.
func (e *Entry) With(f Fields) *Entry {
	merged := make(Fields, len(e.fields)+len(f))
	for k, v := range e.fields {
		merged[k] = v
	}
	for k, v := range f {
		merged[k] = v
	}
	return &Entry{fields: merged}
}

func (e *Entry) Debugf(format string, args ...any) { e.log(LevelDebug, format, args...) }
func (e *Entry) Infof(format string, args ...any)  { e.log(LevelInfo, format, args...) }
func (e *Entry) Warnf(format string, args ...any)  { e.log(LevelWarn, format, args...) }
func (e *Entry) Errorf(format string, args ...any) { e.log(LevelError, format, args...) }

func (e *Entry) log(lvl Level, format string, args ...any) {
	_ = emit(currentOutput(), lvl, fmt.Sprintf(format, args...), e.fields)
}

// Debugf logs a debug message.
func Debugf(format string, args ...any) {
	_ = emit(currentOutput(), LevelDebug, fmt.Sprintf(format, args...), nil)
}

// Infof logs an info message.
func Infof(format string, args ...any) {
	_ = emit(currentOutput(), LevelInfo, fmt.Sprintf(format, args...), nil)
}

// Warnf logs a warning message.
func Warnf(format string, args ...any) {
	_ = emit(currentOutput(), LevelWarn, fmt.Sprintf(format, args...), nil)
}

// Errorf logs an error message.
func Errorf(format string, args ...any) {
	_ = emit(currentOutput(), LevelError, fmt.Sprintf(format, args...), nil)
}

// StdlogWriter adapts the standard library logger: every written line becomes
// one structured entry at the given level.
func StdlogWriter(level Level, w io.Writer) io.Writer {
	if w == nil {
		w = os.Stderr
	}
	return &stdlogWriter{level: level, w: w}
}

type stdlogWriter struct {
	level Level
	w     io.Writer
}

func (sw *stdlogWriter) Write(p []byte) (int, error) {
	for _, line := range bytes.Split(p, []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		if err := emit(sw.w, sw.level, string(line), nil); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

func currentOutput() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return out
}

func emit(w io.Writer, lvl Level, msg string, fields Fields) error {
	mu.RLock()
	ml := minLevel
	mu.RUnlock()
	if lvl < ml || w == io.Discard {
		return nil
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	attrs := make([]slog.Attr, 0, len(keys))
	for _, k := range keys {
		v := fields[k]
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		attrs = append(attrs, slog.Any(k, v))
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       slog.LevelDebug,
		ReplaceAttr: replaceAttr,
	})
	slog.New(h).LogAttrs(context.Background(), lvl.slog(), msg, attrs...)
	return nil
}

// replaceAttr renames the time key, lowercases levels and scrubs strings.
func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		a.Key = "ts"
		return a
	case slog.LevelKey:
		return slog.String(a.Key, strings.ToLower(a.Value.String()))
	}
	if a.Value.Kind() == slog.KindString {
		return slog.String(a.Key, scrub(a.Value.String()))
	}
	return a
}

func scrub(s string) string {
	s = redact(s)
	if !Verbose() {
		s = truncate(s, maxFieldLen)
	}
	return s
}

func redact(s string) string {
	mu.RLock()
	defer mu.RUnlock()
	for _, sec := range secrets {
		s = strings.ReplaceAll(s, sec, "[REDACTED]")
	}
	return s
}

func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	// keep the last 10 bytes for context
	suffix := "… [truncated]"
	if limit > len(suffix)+10 {
		return s[:limit-len(suffix)-10] + suffix + s[len(s)-10:]
	}
	return s[:limit]
}
