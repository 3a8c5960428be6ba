package utils

import (
	"log"
	"os"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

// Logger is a leveled logger with an optional component tag, so request
// boundary errors can be attributed to the subsystem that raised them.
type Logger struct {
	level     LogLevel
	component string
	logger    *log.Logger
}

func NewLogger(levelStr string) *Logger {
	var level LogLevel
	switch levelStr {
	case "debug":
		level = DEBUG
	case "info":
		level = INFO
	case "warn":
		level = WARN
	case "error":
		level = ERROR
	default:
		level = INFO
	}

	return &Logger{
		level:  level,
		logger: log.New(os.Stdout, "", log.LstdFlags),
	}
}

// Component returns a child logger that tags every line with the given
// component name.
func (l *Logger) Component(name string) *Logger {
	return &Logger{
		level:     l.level,
		component: name,
		logger:    l.logger,
	}
}

func (l *Logger) Debug(format string, v ...interface{}) {
	if l.level <= DEBUG {
		l.logger.Printf("[DEBUG] "+l.tag()+format, v...)
	}
}

func (l *Logger) Info(format string, v ...interface{}) {
	if l.level <= INFO {
		l.logger.Printf("[INFO] "+l.tag()+format, v...)
	}
}

func (l *Logger) Warn(format string, v ...interface{}) {
	if l.level <= WARN {
		l.logger.Printf("[WARN] "+l.tag()+format, v...)
	}
}

func (l *Logger) Error(format string, v ...interface{}) {
	if l.level <= ERROR {
		l.logger.Printf("[ERROR] "+l.tag()+format, v...)
	}
}

func (l *Logger) tag() string {
	if l.component == "" {
		return ""
	}
	return "[" + l.component + "] "
}
