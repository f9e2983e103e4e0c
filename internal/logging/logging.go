// Package logging builds the process-wide logrus logger.
package logging

import (
    "io"
    "os"
    "strings"

    "github.com/sirupsen/logrus"
)

// Config selects the log level ("debug", "info", ...) and output format
// ("json" or "text").
type Config struct {
    Level  string
    Format string
}

// New returns a logger writing to stdout.  Unknown levels fall back to info.
func New(cfg Config) *logrus.Logger {
    return NewWithWriter(cfg, os.Stdout)
}

func NewWithWriter(cfg Config, w io.Writer) *logrus.Logger {
    logger := logrus.New()
    logger.SetOutput(w)

    level, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
    if err != nil {
        level = logrus.InfoLevel
    }
    logger.SetLevel(level)

    if strings.EqualFold(cfg.Format, "text") {
        logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
    } else {
        logger.SetFormatter(&logrus.JSONFormatter{})
    }
    return logger
}

// Discard returns a logger that drops everything.  Used by tests.
func Discard() *logrus.Logger {
    logger := logrus.New()
    logger.SetOutput(io.Discard)
    return logger
}
