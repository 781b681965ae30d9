package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	charmLog "github.com/charmbracelet/log"

	"github.com/hylla/tavla/internal/config"
)

// defaultLogStem names dev log files when the app name is unusable.
const defaultLogStem = "tavla"

// runtimeLogger fans log events out to a styled console sink and an optional dev-file sink.
type runtimeLogger struct {
	sinks          []*charmLog.Logger
	consoleSink    *charmLog.Logger
	consoleEnabled bool
	closeFile      func() error
	devLog         string
}

// newRuntimeLogger builds the sinks for one process run.
func newRuntimeLogger(stderr io.Writer, appName string, devMode bool, cfg config.LoggingConfig, now func() time.Time) (*runtimeLogger, error) {
	rawLevel := strings.TrimSpace(cfg.Level)
	if rawLevel == "" {
		rawLevel = "info"
	}
	level, err := charmLog.ParseLevel(rawLevel)
	if err != nil {
		return nil, fmt.Errorf("parse logging level %q: %w", cfg.Level, err)
	}
	if now == nil {
		now = time.Now
	}
	if stderr == nil {
		stderr = io.Discard
	}

	console := charmLog.NewWithOptions(stderr, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Formatter:       charmLog.TextFormatter,
	})
	logger := &runtimeLogger{
		sinks:          []*charmLog.Logger{console},
		consoleSink:    console,
		consoleEnabled: true,
	}
	if !devMode || !cfg.DevFile.Enabled {
		return logger, nil
	}

	path, err := devLogFilePath(cfg.DevFile.Dir, appName, now().UTC())
	if err != nil {
		return nil, fmt.Errorf("resolve dev log file path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create dev log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open dev log file: %w", err)
	}
	logger.sinks = append(logger.sinks, charmLog.NewWithOptions(f, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.LogfmtFormatter,
	}))
	logger.closeFile = f.Close
	logger.devLog = path
	return logger, nil
}

// DevLogPath returns the dev log file, or "" when file logging is off.
func (l *runtimeLogger) DevLogPath() string {
	if l == nil {
		return ""
	}
	return l.devLog
}

// Close releases the dev-file sink.
func (l *runtimeLogger) Close() error {
	if l == nil || l.closeFile == nil {
		return nil
	}
	err := l.closeFile()
	l.closeFile = nil
	return err
}

// SetConsoleEnabled mutes or restores the console sink. The TUI owns the
// terminal while it runs, so it mutes the console.
func (l *runtimeLogger) SetConsoleEnabled(enabled bool) {
	if l == nil {
		return
	}
	l.consoleEnabled = enabled
}

func (l *runtimeLogger) shouldLogToSink(sink *charmLog.Logger) bool {
	if l == nil || sink == nil {
		return false
	}
	return sink != l.consoleSink || l.consoleEnabled
}

func (l *runtimeLogger) emit(level charmLog.Level, msg any, keyvals ...any) {
	if l == nil {
		return
	}
	for _, sink := range l.sinks {
		if !l.shouldLogToSink(sink) {
			continue
		}
		sink.Log(level, msg, keyvals...)
	}
}

// Debug logs a debug event. It also satisfies the server request logger.
func (l *runtimeLogger) Debug(msg any, keyvals ...any) {
	l.emit(charmLog.DebugLevel, msg, keyvals...)
}

// Info logs an informational event.
func (l *runtimeLogger) Info(msg any, keyvals ...any) {
	l.emit(charmLog.InfoLevel, msg, keyvals...)
}

// Warn logs a warning.
func (l *runtimeLogger) Warn(msg any, keyvals ...any) {
	l.emit(charmLog.WarnLevel, msg, keyvals...)
}

// Error logs an error event.
func (l *runtimeLogger) Error(msg any, keyvals ...any) {
	l.emit(charmLog.ErrorLevel, msg, keyvals...)
}

// devLogFilePath resolves <workspace>/<dir>/<app>-YYYYMMDD.log. Relative dirs
// are anchored at the nearest workspace root so logs land in one place no
// matter which subdirectory tavla was started from.
func devLogFilePath(dir, appName string, now time.Time) (string, error) {
	base := strings.TrimSpace(dir)
	if base == "" {
		base = ".tavla/log"
	}
	if !filepath.IsAbs(base) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve working dir: %w", err)
		}
		base = filepath.Join(workspaceRootFrom(cwd), base)
	}
	name := fmt.Sprintf("%s-%s.log", sanitizeLogFileStem(appName), now.Format("20060102"))
	return filepath.Join(filepath.Clean(base), name), nil
}

// workspaceRootFrom walks up from start to the first directory holding go.mod or .git.
func workspaceRootFrom(start string) string {
	start = filepath.Clean(strings.TrimSpace(start))
	if start == "" || start == "." {
		return "."
	}
	for dir := start; ; {
		if hasWorkspaceMarker(dir) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}

func hasWorkspaceMarker(dir string) bool {
	for _, marker := range []string{"go.mod", ".git"} {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}

// sanitizeLogFileStem turns an app name into a file-name segment.
func sanitizeLogFileStem(appName string) string {
	replacer := strings.NewReplacer("/", "-", "\\", "-", ":", "-", " ", "-")
	stem := strings.Trim(replacer.Replace(strings.TrimSpace(appName)), "-")
	if stem == "" {
		return defaultLogStem
	}
	return stem
}
