package logger

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// Output formats.
const (
	FormatText    = "text"
	FormatJSON    = "json"
	FormatConsole = "console"
)

type options struct {
	format string
	writer io.Writer
	level  string
}

// Option configures Init.
type Option func(*options)

// WithFormat selects the output format (text, json or console).
func WithFormat(format string) Option {
	return func(o *options) {
		if format != "" {
			o.format = strings.ToLower(format)
		}
	}
}

// WithWriter redirects log output.
func WithWriter(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.writer = w
		}
	}
}

// WithLevel sets the initial level.
func WithLevel(level string) Option {
	return func(o *options) { o.level = level }
}

var (
	consoleMu sync.Mutex
	console   *log.Logger
)

func newHandler(o *options) (slog.Handler, error) {
	switch o.format {
	case FormatText:
		return slog.NewTextHandler(o.writer, &slog.HandlerOptions{Level: &levelVar}), nil
	case FormatJSON:
		return slog.NewJSONHandler(o.writer, &slog.HandlerOptions{Level: &levelVar}), nil
	case FormatConsole:
		l := log.NewWithOptions(o.writer, log.Options{
			ReportTimestamp: true,
			Level:           log.Level(levelVar.Level()),
		})
		consoleMu.Lock()
		console = l
		consoleMu.Unlock()
		return l, nil
	default:
		return nil, fmt.Errorf("unknown log format: %s", o.format)
	}
}

// syncConsoleLevel keeps the charm logger level aligned with levelVar; slog and charm share level values.
func syncConsoleLevel(level slog.Level) {
	consoleMu.Lock()
	defer consoleMu.Unlock()
	if console != nil {
		console.SetLevel(log.Level(level))
	}
}
