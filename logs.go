package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const timeFormat = "2006-01-02 15:04:05"

var (
	standardOut = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: timeFormat}
	errorOut    = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: timeFormat}
)

// logSplitter implements zerolog.LevelWriter
type logSplitter struct{}

// Write should not be called
func (l logSplitter) Write(p []byte) (n int, err error) {
	return os.Stdout.Write(p)
}

// WriteLevel write to the appropriate output
func (l logSplitter) WriteLevel(level zerolog.Level, p []byte) (n int, err error) {
	if level <= zerolog.WarnLevel {
		return standardOut.Write(p)
	}
	return errorOut.Write(p)
}

// badgerZerologLogger forwards badger's printf-style logs into zerolog, dropping
// anything below its level.
type badgerZerologLogger struct {
	level zerolog.Level
}

func newBadgerLogger(level zerolog.Level) badgerZerologLogger {
	// badger's info output is startup noise
	if level == zerolog.InfoLevel {
		level = zerolog.WarnLevel
	}
	return badgerZerologLogger{level: level}
}

func (l badgerZerologLogger) emit(level zerolog.Level, format string, args ...interface{}) {
	if level < l.level {
		return
	}
	log.WithLevel(level).Str("component", "badger").Msg(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}

func (l badgerZerologLogger) Errorf(format string, args ...interface{}) {
	l.emit(zerolog.ErrorLevel, format, args...)
}

func (l badgerZerologLogger) Warningf(format string, args ...interface{}) {
	l.emit(zerolog.WarnLevel, format, args...)
}

func (l badgerZerologLogger) Infof(format string, args ...interface{}) {
	l.emit(zerolog.InfoLevel, format, args...)
}

func (l badgerZerologLogger) Debugf(format string, args ...interface{}) {
	l.emit(zerolog.DebugLevel, format, args...)
}
