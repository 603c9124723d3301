package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	log "github.com/sirupsen/logrus"
)

var logger = log.New()

func init() {
	logger.Out = os.Stdout

	// LOG_TO_FILE=true redirects output to logs/<date><env>.log; stdout
	// stays the default so container and systemd deployments collect
	// everything without extra volumes.
	if os.Getenv("LOG_TO_FILE") == "true" {
		env := os.Getenv("ENV")
		logsDir := "logs"
		if cwd, err := os.Getwd(); err == nil {
			logsDir = filepath.Join(cwd, "logs")
		}
		if err := os.MkdirAll(logsDir, 0o755); err != nil {
			log.Warnf("Failed to create logs directory %s: %v, keeping stdout", logsDir, err)
		} else {
			name := fmt.Sprintf("%s%s.log", time.Now().Format("2006-01-02"), env)
			f, err := os.OpenFile(filepath.Join(logsDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
			if err != nil {
				log.Warnf("Failed to open log file %s: %v, keeping stdout", name, err)
			} else {
				logger.Out = f
			}
		}
	}

	if os.Getenv("LOG_FORMAT") == "text" {
		logger.Formatter = &log.TextFormatter{
			TimestampFormat: time.RFC3339Nano,
			FullTimestamp:   true,
		}
	} else {
		logger.Formatter = &log.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		}
	}

	level := log.DebugLevel
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if parsed, err := log.ParseLevel(v); err == nil {
			level = parsed
		}
	}
	logger.SetLevel(level)
}

// GetLogger returns an entry annotated with the caller's location so
// every line can be traced back to the code that emitted it.
func GetLogger() *log.Entry {
	pc, file, line, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)

	return logger.WithFields(log.Fields{
		"function": fn.Name(),
		"file":     file,
		"line":     line,
	})
}
