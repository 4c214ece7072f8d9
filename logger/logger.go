// Package logger provides centralized logging for the application.
// File: logger/logger.go
package logger

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// ------------------- global loggers -------------------

// L is the structured logger behind the level loggers. Use it for WithFields.
var L = logrus.New()

// four logger levels accessible throughout the application
var (
	Info  *log.Logger
	Warn  *log.Logger
	Error *log.Logger
	Debug *log.Logger
)

// ------------------- logger initialization -------------------

// InitLogger creates or reinitializes the logging system. It:
// - Ensures logDir exists.
// - Creates a timestamped log file in logDir.
// - Writes logs to both the file and stdout.
// An empty logDir keeps output on stdout only.
func InitLogger(logDir string) error {
	var out io.Writer = os.Stdout
	if logDir != "" {
		if err := os.MkdirAll(logDir, 0700); err != nil {
			return err
		}

		logFileName := filepath.Join(logDir, time.Now().Format("2006-01-02_15-04-05")+".log")
		file, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) // #nosec
		if err != nil {
			return err
		}
		out = io.MultiWriter(os.Stdout, file)
	}

	L.SetOutput(out)
	L.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	L.SetLevel(logrus.DebugLevel)
	bindLevels()
	return nil
}

// bindLevels points the printf-style loggers at logrus so both styles share one sink.
func bindLevels() {
	Info = log.New(L.WriterLevel(logrus.InfoLevel), "", 0)
	Warn = log.New(L.WriterLevel(logrus.WarnLevel), "", 0)
	Error = log.New(L.WriterLevel(logrus.ErrorLevel), "", 0)
	Debug = log.New(L.WriterLevel(logrus.DebugLevel), "", 0)
}

// SetLogLevel adjusts verbosity depending on environment.
// Production drops debug output; everything else keeps it.
func SetLogLevel(env string) {
	if env == "production" {
		L.SetLevel(logrus.InfoLevel)
		return
	}
	L.SetLevel(logrus.DebugLevel)
}

// init gives packages usable loggers before main calls InitLogger.
func init() {
	if err := InitLogger(""); err != nil {
		log.Fatalf("Failed to initialise custom logger: %v", err)
	}
}
