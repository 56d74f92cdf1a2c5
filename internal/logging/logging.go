// Package logging provides the levelled logger used by the morphoseg
// pipeline and command. Messages go to the standard log package, optionally
// through a rotating log file.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/natefinch/lumberjack"
)

// Level is the minimum severity a logger writes.
type Level uint

const (
	DebugLevel Level = iota
	InfoLevel
	WarningLevel
	ErrorLevel
	SilentLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarningLevel:
		return "WARNING"
	case ErrorLevel:
		return "ERROR"
	case SilentLevel:
		return "SILENT"
	}
	return fmt.Sprintf("Level(%d)", uint(l))
}

// ParseLevel accepts the names returned by Level.String, case-insensitively.
func ParseLevel(s string) (Level, error) {
	for l := DebugLevel; l <= SilentLevel; l++ {
		if strings.EqualFold(s, l.String()) {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// Logger logs messages at different severities.
type Logger interface {
	// Debugf formats its arguments analogous to fmt.Printf and records the
	// text at Debug level.
	Debugf(format string, args ...interface{})

	// Infof is like Debugf, but at Info level.
	Infof(format string, args ...interface{})

	// Warningf is like Debugf, but at Warning level.
	Warningf(format string, args ...interface{})

	// Errorf is like Debugf, but at Error level.
	Errorf(format string, args ...interface{})

	// Shutdown makes sure logs are closed.
	Shutdown()
}

// Config selects where log messages go.
type Config struct {
	// File is the rotating log file; empty logs to stderr.
	File string
	// MaxSizeMB is the size in megabytes at which the file is rotated.
	MaxSizeMB int
	// MaxAgeDays is how long rotated files are kept.
	MaxAgeDays int
	Level      Level
}

type stdLogger struct {
	l     *log.Logger
	level Level
	file  *lumberjack.Logger
}

// New returns a logger for c.
func New(c Config) Logger {
	if c.File == "" {
		return NewWriter(os.Stderr, c.Level)
	}
	f := &lumberjack.Logger{
		Filename: c.File,
		MaxSize:  c.MaxSizeMB, // megabytes
		MaxAge:   c.MaxAgeDays, // days
	}
	return &stdLogger{l: log.New(f, "", log.LstdFlags), level: c.Level, file: f}
}

// NewWriter returns a logger writing to w.
func NewWriter(w io.Writer, level Level) Logger {
	return &stdLogger{l: log.New(w, "", log.LstdFlags), level: level}
}

// Discard returns a logger that drops everything.
func Discard() Logger {
	return NewWriter(io.Discard, SilentLevel)
}

func (s *stdLogger) printf(level Level, format string, args ...interface{}) {
	if level < s.level {
		return
	}
	s.l.Printf(" "+level.String()+" "+format, args...)
}

func (s *stdLogger) Debugf(format string, args ...interface{}) {
	s.printf(DebugLevel, format, args...)
}

func (s *stdLogger) Infof(format string, args ...interface{}) {
	s.printf(InfoLevel, format, args...)
}

func (s *stdLogger) Warningf(format string, args ...interface{}) {
	s.printf(WarningLevel, format, args...)
}

func (s *stdLogger) Errorf(format string, args ...interface{}) {
	s.printf(ErrorLevel, format, args...)
}

func (s *stdLogger) Shutdown() {
	if s.file != nil {
		s.file.Close()
	}
}

// TimeLog appends the time elapsed since its creation to every message.
//
//	tlog := logging.NewTimeLog(logger)
//	...
//	tlog.Infof("watershed 3d")  // "watershed 3d: 1.2s"
type TimeLog struct {
	logger Logger
	start  time.Time
}

func NewTimeLog(l Logger) TimeLog {
	return TimeLog{l, time.Now()}
}

// Elapsed returns the time since the TimeLog was created.
func (t TimeLog) Elapsed() time.Duration {
	return time.Since(t.start)
}

func (t TimeLog) Debugf(format string, args ...interface{}) {
	t.logger.Debugf(format+": %s", append(args, t.Elapsed())...)
}

func (t TimeLog) Infof(format string, args ...interface{}) {
	t.logger.Infof(format+": %s", append(args, t.Elapsed())...)
}

// Voxels formats a voxel count with thousands separators.
func Voxels(n int) string {
	return humanize.Comma(int64(n))
}

// Bytes formats a memory size, e.g. "12 MB".
func Bytes(n uint64) string {
	return humanize.Bytes(n)
}
