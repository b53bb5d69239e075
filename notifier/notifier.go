// Package notifier tells operators what the bridge settled.
package notifier

import (
	"context"

	logger "github.com/sirupsen/logrus"
)

const (
	ColorGood    = "good"
	ColorWarning = "warning"
	ColorDanger  = "danger"
)

type Field struct {
	Title string
	Value string
}

type Message struct {
	Title  string
	Text   string
	Color  string
	Fields []Field
}

// Notifier delivers messages on a best-effort basis.
// Delivery failures are logged, never returned.
type Notifier interface {
	Notify(ctx context.Context, msg *Message)
}

// LogNotifier writes messages to the log only.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, msg *Message) {
	fields := logger.Fields{"color": msg.Color}
	for _, f := range msg.Fields {
		fields[f.Title] = f.Value
	}
	logger.WithFields(fields).Info(msg.Title)
}
