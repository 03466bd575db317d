// ABOUTME: Process-wide logrus setup with optional rotating log file.
// ABOUTME: Console output goes to stderr so stdio transports stay clean.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Params controls Setup.
type Params struct {
	FileName   string
	ToConsole  bool
	Level      string
	FormatJSON bool
	Console    io.Writer
}

// Setup configures the standard logrus logger. The returned closer
// releases the log file, if one was opened.
func Setup(params Params) io.Closer {
	if params.FormatJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	logrus.SetLevel(GetLevel(params.Level))

	console := params.Console
	if console == nil {
		console = os.Stderr
	}

	if params.FileName == "" {
		logrus.SetOutput(console)
		return nopCloser{}
	}

	if !strings.HasSuffix(params.FileName, ".log") {
		params.FileName += ".log"
	}

	rotating := &lumberjack.Logger{
		Filename:  params.FileName,
		MaxSize:   50, // megabytes
		LocalTime: false,
		Compress:  true,
	}

	if params.ToConsole {
		logrus.SetOutput(NewCombinedWriter(console, rotating))
	} else {
		logrus.SetOutput(rotating)
	}
	return rotating
}

// GetLevel maps a level name to a logrus level, defaulting to info.
func GetLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
