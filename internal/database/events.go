package database

import (
	"log/slog"
	"time"

	"github.com/gocraft/dbr/v2"
)

// EventLogger forwards dbr instrumentation to slog. Errors are logged at
// error level, timings and plain events at debug.
type EventLogger struct {
	logger *slog.Logger
}

var _ dbr.EventReceiver = (*EventLogger)(nil)

func NewEventLogger(logger *slog.Logger) *EventLogger {
	return &EventLogger{logger: logger}
}

func (e *EventLogger) Event(eventName string) {
	e.logger.Debug(eventName)
}

func (e *EventLogger) EventKv(eventName string, kvs map[string]string) {
	e.logger.Debug(eventName, kvAttrs(kvs)...)
}

func (e *EventLogger) EventErr(eventName string, err error) error {
	e.logger.Error(eventName, "error", err)
	return err
}

func (e *EventLogger) EventErrKv(eventName string, err error, kvs map[string]string) error {
	e.logger.Error(eventName, append(kvAttrs(kvs), "error", err)...)
	return err
}

func (e *EventLogger) Timing(eventName string, nanoseconds int64) {
	e.logger.Debug(eventName, "duration", time.Duration(nanoseconds))
}

func (e *EventLogger) TimingKv(eventName string, nanoseconds int64, kvs map[string]string) {
	e.logger.Debug(eventName, append(kvAttrs(kvs), "duration", time.Duration(nanoseconds))...)
}

func kvAttrs(kvs map[string]string) []any {
	args := make([]any, 0, len(kvs)*2)
	for k, v := range kvs {
		args = append(args, k, v)
	}
	return args
}
