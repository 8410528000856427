package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorPurple = "\033[35m"
	colorCyan   = "\033[36m"
	colorWhite  = "\033[37m"
)

type LogType string

const (
	TypeCommand LogType = "CMD"
	TypeDB      LogType = "DB"
	TypeSystem  LogType = "SYS"
	TypeExp     LogType = "EXP"
	TypeError   LogType = "ERR"
)

// Options configures the console handler.
type Options struct {
	Level     slog.Leveler
	AddSource bool
	NoColor   bool
	Writer    io.Writer
}

type CustomHandler struct {
	opts   Options
	mu     *sync.Mutex
	attrs  []slog.Attr
	groups []string
}

func NewHandler() *CustomHandler {
	return NewHandlerWithOptions(Options{Level: slog.LevelDebug})
}

func NewHandlerWithOptions(opts Options) *CustomHandler {
	if opts.Level == nil {
		opts.Level = slog.LevelInfo
	}
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}
	return &CustomHandler{opts: opts, mu: &sync.Mutex{}}
}

// Setup installs the console handler, or slog's JSON handler when format is "json", as the default logger.
func Setup(level slog.Level, format string, addSource bool) {
	var h slog.Handler
	if strings.EqualFold(format, "json") {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level, AddSource: addSource})
	} else {
		h = NewHandlerWithOptions(Options{Level: level, AddSource: addSource})
	}
	slog.SetDefault(slog.New(h))
}

func (h *CustomHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *CustomHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &CustomHandler{opts: h.opts, mu: h.mu, attrs: merged, groups: h.groups}
}

func (h *CustomHandler) WithGroup(name string) slog.Handler {
	groups := make([]string, 0, len(h.groups)+1)
	groups = append(groups, h.groups...)
	groups = append(groups, name)
	return &CustomHandler{opts: h.opts, mu: h.mu, attrs: h.attrs, groups: groups}
}

func (h *CustomHandler) Handle(_ context.Context, r slog.Record) error {
	levelColor, levelText := levelStyle(r.Level)

	message := r.Message
	if r.Level >= slog.LevelError {
		if loc := errorLocation(&r, h.opts.AddSource); loc != "" {
			message = fmt.Sprintf("%s (%s)", message, loc)
		}
		if details := attrString(&r, "error"); details != "" {
			message = fmt.Sprintf("%s: %s", message, details)
		}
	}

	if cmd, user := attrString(&r, "name"), attrString(&r, "user_name"); cmd != "" && user != "" {
		message = fmt.Sprintf("%s [%s by %s]", message, cmd, user)
	}
	if status := attrString(&r, "status"); status != "" {
		message = fmt.Sprintf("%s [Status: %s]", message, status)
	}

	var b strings.Builder
	prefix := strings.Join(h.groups, ".")
	if prefix != "" {
		prefix += "."
	}
	for _, attr := range h.attrs {
		if !isInternalAttr(attr.Key) {
			fmt.Fprintf(&b, " %s%s=%v", prefix, attr.Key, attr.Value)
		}
	}
	r.Attrs(func(a slog.Attr) bool {
		if !isInternalAttr(a.Key) && a.Key != "error" {
			fmt.Fprintf(&b, " %s%s=%v", prefix, a.Key, a.Value)
		}
		return true
	})

	timestamp := r.Time
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	line := fmt.Sprintf("[ExpBot] [%s] [%s] [%s] %s%s",
		timestamp.Format("15:04:05"), levelText, logType(&r, h.attrs), message, b.String())
	if !h.opts.NoColor {
		line = fmt.Sprintf("%s[ExpBot] [%s] [%s%s%s] [%s%s%s] %s%s%s",
			colorWhite, timestamp.Format("15:04:05"),
			levelColor, levelText, colorWhite,
			colorCyan, logType(&r, h.attrs), colorWhite,
			message, b.String(), colorReset)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(h.opts.Writer, line)
	return err
}

func levelStyle(level slog.Level) (string, string) {
	switch {
	case level >= slog.LevelError:
		return colorRed, "ERROR"
	case level >= slog.LevelWarn:
		return colorYellow, "WARN"
	case level >= slog.LevelInfo:
		return colorGreen, "INFO"
	default:
		return colorPurple, "DEBUG"
	}
}

func logType(r *slog.Record, handlerAttrs []slog.Attr) LogType {
	value := attrString(r, "type")
	if value == "" {
		for _, a := range handlerAttrs {
			if a.Key == "type" {
				value = a.Value.String()
			}
		}
	}
	switch value {
	case "cmd":
		return TypeCommand
	case "db":
		return TypeDB
	case "exp":
		return TypeExp
	case "error":
		return TypeError
	default:
		return TypeSystem
	}
}

func isInternalAttr(key string) bool {
	switch key {
	case "type", "name", "user_name", "status", "error_location":
		return true
	}
	return false
}

func attrString(r *slog.Record, key string) string {
	var value string
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == key {
			value = a.Value.String()
			return false
		}
		return true
	})
	return value
}

func errorLocation(r *slog.Record, addSource bool) string {
	if loc := attrString(r, "error_location"); loc != "" {
		return loc
	}
	if !addSource || r.PC == 0 {
		return ""
	}
	frames := runtime.CallersFrames([]uintptr{r.PC})
	frame, _ := frames.Next()
	if frame.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(frame.File), frame.Line)
}
