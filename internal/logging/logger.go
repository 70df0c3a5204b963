// Package logging provides structured logging for both CLI and GUI modes.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log output formats accepted by NewLogger.
const (
	FormatAuto    = "auto"
	FormatConsole = "console"
	FormatJSON    = "json"
)

// LogFileName is the GUI log file inside the log directory.
const LogFileName = "algokit-lora.log"

// Logger wraps zerolog with mode-specific behavior.
type Logger struct {
	zlog   zerolog.Logger
	mode   string // "cli" or "gui"
	format string
	sink   *sink // shared with Named children
}

// sink writes every record to the console writer and, once TeeToFile was
// called, to the log file as well.
type sink struct {
	mu      sync.RWMutex
	console io.Writer
	file    io.Writer
}

func (s *sink) Write(p []byte) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, err := s.console.Write(p)
	if s.file != nil {
		if _, ferr := s.file.Write(p); err == nil {
			err = ferr
		}
	}
	return len(p), err
}

// NewLogger creates a new logger for the specified mode writing to stderr.
// With FormatAuto, console formatting is used when stderr is a terminal and
// JSON lines otherwise.
func NewLogger(mode, format string) *Logger {
	l := &Logger{mode: mode, format: format}
	l.SetOutput(os.Stderr)
	return l
}

// NewDefaultCLILogger creates a default CLI logger.
func NewDefaultCLILogger() *Logger {
	return NewLogger("cli", FormatAuto)
}

// Nop returns a logger that discards everything. Used by tests.
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop(), mode: "nop", sink: &sink{console: io.Discard}}
}

// Info returns an info level event.
func (l *Logger) Info() *zerolog.Event {
	return l.zlog.Info()
}

// Error returns an error level event.
func (l *Logger) Error() *zerolog.Event {
	return l.zlog.Error()
}

// Debug returns a debug level event.
func (l *Logger) Debug() *zerolog.Event {
	return l.zlog.Debug()
}

// Warn returns a warn level event.
func (l *Logger) Warn() *zerolog.Event {
	return l.zlog.Warn()
}

// Named returns a child logger tagged with a component name. The child
// shares the parent's outputs, including a file tee added later.
func (l *Logger) Named(component string) *Logger {
	return &Logger{
		zlog:   l.zlog.With().Str("component", component).Logger(),
		mode:   l.mode,
		format: l.format,
		sink:   l.sink,
	}
}

// SetOutput changes the output writer for the logger, rebuilding the
// formatter for the new destination. Children created earlier keep the
// previous output.
func (l *Logger) SetOutput(w io.Writer) {
	l.sink = &sink{console: l.writerFor(w)}
	l.zlog = zerolog.New(l.sink).With().Timestamp().Logger()
}

// TeeToFile additionally writes JSON lines to dir/LogFileName, rotated by
// lumberjack, for this logger and every child. Closing the returned closer
// stops the tee and releases the file.
func (l *Logger) TeeToFile(dir string) (io.Closer, error) {
	if l.mode == "nop" {
		return nopCloser{}, nil
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f := &lumberjack.Logger{
		Filename:   filepath.Join(dir, LogFileName),
		MaxSize:    10, // MB per file
		MaxBackups: 3,
		MaxAge:     30, // days
		Compress:   true,
	}

	l.sink.mu.Lock()
	l.sink.file = f
	l.sink.mu.Unlock()
	return &fileTee{sink: l.sink, file: f}, nil
}

type fileTee struct {
	sink *sink
	file *lumberjack.Logger
}

func (t *fileTee) Close() error {
	t.sink.mu.Lock()
	if t.sink.file == t.file {
		t.sink.file = nil
	}
	t.sink.mu.Unlock()
	return t.file.Close()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func (l *Logger) writerFor(w io.Writer) io.Writer {
	if l.useConsole(w) {
		return zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: "15:04:05",
		}
	}
	return w
}

func (l *Logger) useConsole(w io.Writer) bool {
	switch l.format {
	case FormatConsole:
		return true
	case FormatJSON:
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// SetGlobalLevel sets the global log level.
func SetGlobalLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}

func init() {
	// Set default log level to info
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	// Configure global logger
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	})
}
