package sms

import (
	"context"
	"fmt"

	"github.com/sfreiberg/gotwilio"
)

type twilioSender struct {
	client *gotwilio.Twilio
	from   string
}

// NewTwilioSender returns a Sender backed by the Twilio messaging API
func NewTwilioSender(accountSID, authToken, from string) Sender {
	return &twilioSender{
		client: gotwilio.NewTwilioClient(accountSID, authToken),
		from:   from,
	}
}

func (s *twilioSender) Send(_ context.Context, to, text string) error {
	// Canonical digit form becomes E.164 by prefixing "+".
	_, exception, err := s.client.SendSMS(s.from, "+"+to, text, "", "")
	if err != nil {
		return fmt.Errorf("failed to send sms: %w", err)
	}
	if exception != nil {
		return fmt.Errorf("failed to send sms: %s (code %d)", exception.Message, exception.Code)
	}
	return nil
}
