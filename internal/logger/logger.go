// Package logger configures the standard logger for policy runs: output goes
// to stdout, which the policy runner captures into its own policy log, and to
// a rotating file under /var/log for on-endpoint troubleshooting.
package logger

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

type PolicyLogger struct {
	logFile *lumberjack.Logger
}

func New() *PolicyLogger {
	logger := PolicyLogger{}

	log.SetPrefix("printer-policy: ")
	log.SetFlags(log.Ldate | log.Ltime)

	wd := "/var/log/printer-policy"
	if _, err := os.Stat(wd); os.IsNotExist(err) {
		if err := os.MkdirAll(wd, 0755); err != nil {
			// A printer action must not fail because the log path is
			// unwritable, keep stdout only.
			log.SetOutput(os.Stdout)
			log.Printf("[ERROR]: could not create log directory, logging to stdout only, reason: %v", err)
			return &logger
		}
	}

	logger.logFile = &lumberjack.Logger{
		Filename:   filepath.Join(wd, "printer-policy.log"),
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		MaxAge:     90, // days
	}

	log.SetOutput(io.MultiWriter(os.Stdout, logger.logFile))
	return &logger
}

func (l *PolicyLogger) Close() {
	if l.logFile != nil {
		l.logFile.Close()
	}
}
