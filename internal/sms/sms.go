package sms

import (
	"context"
	"log"
)

// Sender delivers a text message to a phone number given in canonical digit
// form (country code followed by national number).
type Sender interface {
	Send(ctx context.Context, to, text string) error
}

type logSender struct{}

// NewLogSender returns a Sender that writes messages to the log instead of
// dispatching them. Used when no SMS credentials are configured.
func NewLogSender() Sender {
	return logSender{}
}

func (logSender) Send(_ context.Context, to, text string) error {
	log.Printf("sms (not sent) to +%s: %s", to, text)
	return nil
}
