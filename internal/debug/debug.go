package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Build flag for debug mode - can be overridden at build time
// go build -ldflags "-X github.com/standardbeagle/codenav/internal/debug.EnableDebug=true"
var EnableDebug = "false"

// MCPMode tracks if we're running in MCP mode (set by main)
var MCPMode = false

// debugOutput is the writer for debug output (defaults to nil, meaning no output)
var debugOutput io.Writer

// debugFile holds the open file handle if debug output goes to a file
var debugFile *os.File

// logger writes to debugOutput; rebuilt whenever the output changes
var logger = zerolog.Nop()

// debugMutex protects access to debug output
var debugMutex sync.Mutex

// SetMCPMode enables MCP mode which suppresses all debug output to stdio
func SetMCPMode(enabled bool) {
	MCPMode = enabled
}

// SetDebugOutput sets a custom writer for debug output.
// Pass nil to disable debug output entirely.
func SetDebugOutput(w io.Writer) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	setOutputLocked(w)
}

func setOutputLocked(w io.Writer) {
	debugOutput = w
	if w == nil {
		logger = zerolog.Nop()
		return
	}
	logger = zerolog.New(zerolog.SyncWriter(w)).Level(zerolog.DebugLevel).With().Timestamp().Logger()
}

// InitDebugLogFile initializes debug logging to a file.
// Returns the path to the log file, or an error if initialization fails.
// Call CloseDebugLog when done to ensure the file is properly closed.
func InitDebugLogFile() (string, error) {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	logDir := filepath.Join(os.TempDir(), "codenav-debug-logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create debug log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02T150405")
	logPath := filepath.Join(logDir, fmt.Sprintf("debug-%s.log", timestamp))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create debug log file: %w", err)
	}

	debugFile = file
	setOutputLocked(file)
	return logPath, nil
}

// CloseDebugLog closes the debug log file if one is open.
func CloseDebugLog() error {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	if debugFile != nil {
		err := debugFile.Close()
		debugFile = nil
		setOutputLocked(nil)
		return err
	}
	return nil
}

// IsDebugEnabled returns true if debug mode is enabled and we're not in MCP mode
func IsDebugEnabled() bool {
	// Never output debug info in MCP mode
	if MCPMode {
		return false
	}

	if EnableDebug == "true" {
		return true
	}

	// Allow runtime override via environment variable
	if os.Getenv("DEBUG") == "1" || os.Getenv("DEBUG") == "true" {
		return true
	}

	return false
}

// currentLogger returns the logger, or nil if no output is configured
func currentLogger() *zerolog.Logger {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	if debugOutput == nil {
		return nil
	}
	l := logger
	return &l
}

// Printf prints debug information only when debug mode is enabled and output is configured
func Printf(format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	if l := currentLogger(); l != nil {
		l.Debug().Msg(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
	}
}

// Log provides structured debug logging with component names
func Log(component, format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	if l := currentLogger(); l != nil {
		l.Debug().Str("component", component).Msg(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
	}
}

// LogError logs err with a component name and message
func LogError(component string, err error, msg string) {
	if !IsDebugEnabled() || err == nil {
		return
	}
	if l := currentLogger(); l != nil {
		l.Error().Str("component", component).Err(err).Msg(msg)
	}
}

// LogModel provides debug logging for source model operations
func LogModel(format string, args ...interface{}) {
	Log("MODEL", format, args...)
}

// LogAnalyzer provides debug logging for engine operations
func LogAnalyzer(format string, args ...interface{}) {
	Log("ANALYZER", format, args...)
}

// LogMCP provides debug logging specifically for MCP operations
func LogMCP(format string, args ...interface{}) {
	Log("MCP", format, args...)
}

// Fatal outputs a catastrophic error message to the debug log and returns a fatal error.
// In MCP mode, output is suppressed entirely.
func Fatal(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if !MCPMode {
		if l := currentLogger(); l != nil {
			l.Error().Str("severity", "fatal").Msg(msg)
		}
	}
	return fmt.Errorf("fatal error: %s", msg)
}
