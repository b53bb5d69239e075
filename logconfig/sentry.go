package logconfig

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	myLogger "github.com/sirupsen/logrus"
)

const sentryFlushTimeout = 2 * time.Second

// fields promoted to sentry tags so issues group per pipeline
var sentryTagFields = []string{"monitor", "observer", "phase"}

// SentryHook forwards error level log entries to sentry.
type SentryHook struct {
	hub    *sentry.Hub
	levels []myLogger.Level
}

func NewSentryHook(hub *sentry.Hub) *SentryHook {
	return &SentryHook{
		hub: hub,
		levels: []myLogger.Level{
			myLogger.PanicLevel,
			myLogger.FatalLevel,
			myLogger.ErrorLevel,
		},
	}
}

func (h *SentryHook) Levels() []myLogger.Level {
	return h.levels
}

func (h *SentryHook) Fire(entry *myLogger.Entry) error {
	event := sentry.NewEvent()
	event.Level = sentryLevel(entry.Level)
	event.Message = entry.Message
	event.Timestamp = entry.Time

	for k, v := range entry.Data {
		if k == myLogger.ErrorKey {
			continue
		}
		event.Extra[k] = v
	}
	for _, k := range sentryTagFields {
		if v, ok := entry.Data[k]; ok {
			event.Tags[k] = fmt.Sprint(v)
		}
	}

	if err, ok := entry.Data[myLogger.ErrorKey].(error); ok && err != nil {
		event.Exception = []sentry.Exception{{
			Type:  fmt.Sprintf("%T", err),
			Value: err.Error(),
		}}
	}

	h.hub.CaptureEvent(event)
	return nil
}

func sentryLevel(level myLogger.Level) sentry.Level {
	switch level {
	case myLogger.PanicLevel, myLogger.FatalLevel:
		return sentry.LevelFatal
	case myLogger.ErrorLevel:
		return sentry.LevelError
	case myLogger.WarnLevel:
		return sentry.LevelWarning
	case myLogger.InfoLevel:
		return sentry.LevelInfo
	default:
		return sentry.LevelDebug
	}
}

// ConfigSentry reports error logs to sentry. An empty dsn disables it.
// The returned func flushes pending events and shall be called before exit.
func ConfigSentry(dsn string, environment string) (func(), error) {
	if dsn == "" {
		return func() {}, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
	})
	if err != nil {
		return nil, err
	}

	myLogger.AddHook(NewSentryHook(sentry.CurrentHub()))
	myLogger.Info("sentry enabled")

	return func() {
		sentry.Flush(sentryFlushTimeout)
	}, nil
}
