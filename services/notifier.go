package services

import (
	"fmt"

	"github.com/satyasricomputers/servicecenter/utils"
)

type Channel string

const (
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
)

func ValidChannel(channel Channel) bool {
	return channel == ChannelSMS || channel == ChannelWhatsApp
}

// Notifier delivers a customer-facing message over SMS or WhatsApp.
// Real delivery is an external collaborator; this interface is the
// boundary.
type Notifier interface {
	Send(phone string, channel Channel, text string) error
}

// LogNotifier writes the message to the log instead of delivering it.
type LogNotifier struct{}

func (LogNotifier) Send(phone string, channel Channel, text string) error {
	if !ValidChannel(channel) {
		return fmt.Errorf("unknown channel %q", channel)
	}
	utils.InfoLogger.Printf("Sending %s to %s: %s", channel, phone, text)
	return nil
}
