// Package monitor forwards warning/error level log lines to Sentry when
// enabled. It is off by default; the CLI turns it on when a DSN is
// configured.
package monitor

import (
	"flag"
	"fmt"
	"time"

	sentry "github.com/getsentry/sentry-go"
)

const (
	LevelPanic = iota
	LevelError
	LevelWarn
	LevelInfo
	LevelDebug
)

var isOn bool

// InitErrorMonitor configures Sentry with the given DSN and release version.
// It is a no-op if dsn is empty.
func InitErrorMonitor(dsn, version string) error {
	if dsn == "" {
		return nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		AttachStacktrace: true,
		TracesSampleRate: 1,
		Release:          version,
	}); err != nil {
		return err
	}
	isOn = true
	CaptureMessage("Session:Started")
	return nil
}

// CaptureMessage sends a message to Sentry.
func CaptureMessage(message string) {
	if !isOn || isTest() {
		return
	}
	sentry.CaptureMessage(message)
	defer sentry.Flush(2 * time.Second)
}

// CaptureException sends an error to Sentry. Only warning-and-above levels
// are forwarded.
func CaptureException(level int, format string, v ...interface{}) {
	if !isOn || isTest() {
		return
	}
	if level > LevelWarn {
		return
	}
	err := fmt.Errorf(format, v...)

	sentry.CaptureException(err)
	defer sentry.Flush(2 * time.Second)
}

// IsOn returns true if the monitor is enabled.
func IsOn() bool {
	return isOn
}

func isTest() bool {
	return flag.Lookup("test.v") != nil
}
