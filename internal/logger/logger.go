package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Logger is a tagged view of the process-wide sink.
type Logger struct {
	tag string
}

var (
	root    atomic.Pointer[zerolog.Logger]
	logFile *os.File
	once    sync.Once
)

func init() {
	nop := zerolog.Nop()
	root.Store(&nop)
}

// InitLogger sets up the shared sink once. In dev mode entries go to console
// in human readable form; with a logPath they are also appended as JSON lines
// to a timestamped file in that directory.
func InitLogger(dev bool, logPath string, console io.Writer) error {
	var initErr error
	once.Do(func() {
		var writers []io.Writer
		if dev && console != nil {
			writers = append(writers, zerolog.ConsoleWriter{
				Out:        console,
				TimeFormat: "15:04:05",
			})
		}

		if logPath != "" {
			fileName := fmt.Sprintf("parley_log_%s.log", time.Now().Format("20060102_150405"))
			file, err := os.OpenFile(filepath.Join(logPath, fileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
			if err != nil {
				initErr = fmt.Errorf("open log file: %w", err)
				return
			}
			logFile = file
			writers = append(writers, file)
		}

		if len(writers) == 0 {
			return
		}

		level := zerolog.InfoLevel
		if dev {
			level = zerolog.DebugLevel
		}
		l := zerolog.New(zerolog.MultiLevelWriter(writers...)).
			Level(level).
			With().
			Timestamp().
			Logger()
		root.Store(&l)
	})
	return initErr
}

func NewLogger(tag string) *Logger {
	return &Logger{tag: tag}
}

// Zerolog returns the shared sink with the tag attached, for libraries that
// take a zerolog.Logger directly.
func (l *Logger) Zerolog() zerolog.Logger {
	return root.Load().With().Str("tag", l.tag).Logger()
}

func (l *Logger) Debug(msg string, fields ...any) {
	l.write(root.Load().Debug(), msg, fields)
}

func (l *Logger) Info(msg string, fields ...any) {
	l.write(root.Load().Info(), msg, fields)
}

func (l *Logger) Warn(msg string, fields ...any) {
	l.write(root.Load().Warn(), msg, fields)
}

func (l *Logger) Error(msg string, fields ...any) {
	l.write(root.Load().Error(), msg, fields)
}

// Fatal logs and exits the process.
func (l *Logger) Fatal(msg string, fields ...any) {
	l.write(root.Load().WithLevel(zerolog.FatalLevel), msg, fields)
	Close()
	os.Exit(1)
}

func (l *Logger) write(ev *zerolog.Event, msg string, fields []any) {
	if ev == nil {
		return
	}
	ev.Str("tag", l.tag).Fields(fields).Msg(msg)
}

// Close flushes and closes the log file, if one was opened.
func Close() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// setOutput replaces the sink; tests use it to capture entries.
func setOutput(w io.Writer, level zerolog.Level) {
	l := zerolog.New(w).Level(level)
	root.Store(&l)
}
