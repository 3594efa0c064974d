package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	styles "github.com/ryanwalloh/assetkit/constants/lipgloss"
	"gopkg.in/natefinch/lumberjack.v2"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	SUCCESS
	WARN
	ERROR
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case SUCCESS:
		return "OK"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// marker is the severity prefix operators see on the terminal.
func (l LogLevel) marker() string {
	switch l {
	case SUCCESS:
		return "✅ "
	case WARN:
		return "⚠️  "
	case ERROR:
		return "❌ "
	default:
		return ""
	}
}

func (l LogLevel) style() lipgloss.Style {
	switch l {
	case DEBUG:
		return styles.Gray
	case SUCCESS:
		return styles.Green
	case WARN:
		return styles.Yellow
	case ERROR:
		return styles.Red
	default:
		return lipgloss.NewStyle()
	}
}

// ColoredLogger writes styled lines to the terminal and, optionally, plain
// timestamped lines to a rotating log file.
type ColoredLogger struct {
	mu      sync.RWMutex
	verbose bool
	out     io.Writer
	file    io.WriteCloser
}

var globalLogger = &ColoredLogger{out: os.Stdout}

func SetVerbose(verbose bool) {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()
	globalLogger.verbose = verbose
}

// SetOutput replaces the terminal writer. Tests use it to capture output.
func SetOutput(w io.Writer) {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()
	globalLogger.out = w
}

// SetLogFile mirrors every message into path, rotated by lumberjack.
// An empty path disables the file sink.
func SetLogFile(path string) {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()

	if globalLogger.file != nil {
		_ = globalLogger.file.Close()
		globalLogger.file = nil
	}
	if path == "" {
		return
	}
	globalLogger.file = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
}

// Close flushes and closes the file sink, if any.
func Close() error {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()
	if globalLogger.file == nil {
		return nil
	}
	err := globalLogger.file.Close()
	globalLogger.file = nil
	return err
}

func (cl *ColoredLogger) log(level LogLevel, format string, args ...interface{}) {
	cl.mu.RLock()
	defer cl.mu.RUnlock()

	if level == DEBUG && !cl.verbose {
		return
	}

	message := fmt.Sprintf(format, args...)
	fmt.Fprintln(cl.out, level.style().Render(level.marker()+message))

	if cl.file != nil {
		timestamp := time.Now().Format("06-01-02 15:04:05")
		fmt.Fprintf(cl.file, "[%s] %-5s %s\n", timestamp, level.String(), message)
	}
}

func Debug(format string, args ...interface{}) {
	globalLogger.log(DEBUG, format, args...)
}

func Info(format string, args ...interface{}) {
	globalLogger.log(INFO, format, args...)
}

func Success(format string, args ...interface{}) {
	globalLogger.log(SUCCESS, format, args...)
}

func Warn(format string, args ...interface{}) {
	globalLogger.log(WARN, format, args...)
}

func Error(format string, args ...interface{}) {
	globalLogger.log(ERROR, format, args...)
}
