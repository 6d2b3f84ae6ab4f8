package mcp

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DiagnosticLogger handles all diagnostic output for the MCP server.
// In MCP mode stdout carries the protocol, so output goes to a file and
// never to stdout or stderr.
type DiagnosticLogger struct {
	mu       sync.Mutex
	file     *os.File
	logger   zerolog.Logger
	filePath string
}

// NewDiagnosticLogger creates a logger that writes to a timestamped file
// in MCP mode and to stderr otherwise. Failing to create the file disables
// logging rather than the server.
func NewDiagnosticLogger(isMCP bool) *DiagnosticLogger {
	dl := &DiagnosticLogger{}
	if !isMCP {
		dl.logger = newLogger(os.Stderr)
		return dl
	}

	logDir := filepath.Join(os.TempDir(), "codenav-mcp-logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			home = "."
		}
		logDir = filepath.Join(home, ".codenav-mcp-logs")
		_ = os.MkdirAll(logDir, 0755)
	}

	logPath := filepath.Join(logDir, fmt.Sprintf("mcp-%s.log", time.Now().Format("2006-01-02T150405")))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		dl.logger = zerolog.Nop()
		return dl
	}
	dl.file = file
	dl.filePath = logPath
	dl.logger = newLogger(file)
	return dl
}

func newLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Str("component", "mcp").Logger()
}

// Printf logs a diagnostic message.
func (dl *DiagnosticLogger) Printf(format string, v ...interface{}) {
	if dl == nil {
		return
	}
	dl.mu.Lock()
	defer dl.mu.Unlock()
	dl.logger.Info().Msgf(format, v...)
}

// Errorf logs an error.
func (dl *DiagnosticLogger) Errorf(format string, v ...interface{}) {
	if dl == nil {
		return
	}
	dl.mu.Lock()
	defer dl.mu.Unlock()
	dl.logger.Error().Msgf(format, v...)
}

// Close closes the log file if one is open.
func (dl *DiagnosticLogger) Close() error {
	if dl == nil {
		return nil
	}
	dl.mu.Lock()
	defer dl.mu.Unlock()
	if dl.file == nil {
		return nil
	}
	err := dl.file.Close()
	dl.file = nil
	dl.logger = zerolog.Nop()
	return err
}

// GetLogPath returns the path of the log file, empty outside MCP mode.
func (dl *DiagnosticLogger) GetLogPath() string {
	if dl == nil {
		return ""
	}
	return dl.filePath
}

// NoOpLogger discards everything.
var NoOpLogger = &DiagnosticLogger{logger: zerolog.Nop()}
