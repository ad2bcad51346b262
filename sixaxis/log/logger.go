package log

import (
	"fmt"
	golog "log"
	"os"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelError
)

// ParseLevel maps a config string to a Level; unknown strings fall back to
// debug so misconfiguration never hides output.
func ParseLevel(s string) Level {
	switch s {
	case "info":
		return LevelInfo
	case "error":
		return LevelError
	default:
		return LevelDebug
	}
}

var l logger

func init() {
	debugLog := golog.New(os.Stdout, "DEBUG - ", golog.Ltime|golog.Lshortfile)
	infoLog := golog.New(os.Stdout, "INFO  - ", golog.Ltime|golog.Lshortfile)
	errorLog := golog.New(os.Stderr, "ERROR - ", golog.Ltime|golog.Lshortfile)

	l = logger{LevelDebug, debugLog, infoLog, errorLog}
}

type logger struct {
	level    Level
	debugLog *golog.Logger
	infoLog  *golog.Logger
	errorLog *golog.Logger
}

func SetLevel(level Level) {
	l.level = level
}

func Debug(msg any) {
	if l.level > LevelDebug {
		return
	}
	l.debugLog.Output(2, fmt.Sprintf("%s", msg))
}

func DebugF(format string, a ...any) {
	if l.level > LevelDebug {
		return
	}
	l.debugLog.Output(2, fmt.Sprintf(format, a...))
}

func Info(msg any) {
	if l.level > LevelInfo {
		return
	}
	l.infoLog.Output(2, fmt.Sprintf("%s", msg))
}

func InfoF(format string, a ...any) {
	if l.level > LevelInfo {
		return
	}
	l.infoLog.Output(2, fmt.Sprintf(format, a...))
}

func Error(msg any) {
	l.errorLog.Output(2, fmt.Sprintf("%s", msg))
}

func ErrorF(format string, a ...any) {
	l.errorLog.Output(2, fmt.Sprintf(format, a...))
}

func Fatal(msg any) {
	l.errorLog.Output(2, fmt.Sprintf("%s", msg))
	os.Exit(1)
}

func FatalF(format string, a ...any) {
	l.errorLog.Output(2, fmt.Sprintf(format, a...))
	os.Exit(1)
}
