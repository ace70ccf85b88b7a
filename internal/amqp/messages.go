package amqp

import (
	"encoding/json"
	"time"
)

// Email kinds carried over the queue.
const (
	KindWelcome      = "welcome"
	KindBillReminder = "bill_reminder"
	KindTest         = "test"
)

// EmailMessage is the unit of work on the email queue: who to write to,
// which template, and the template's payload. The worker renders and
// delivers it.
type EmailMessage struct {
	To        string    `json:"to"`
	Kind      string    `json:"kind"`
	Payload   Payload   `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Payload holds template variables as flat string pairs.
type Payload map[string]string

// NewEmailMessage creates a message stamped with the current time.
func NewEmailMessage(to, kind string, payload Payload) *EmailMessage {
	return &EmailMessage{
		To:        to,
		Kind:      kind,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *EmailMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EmailMessageFromJSON creates a message from JSON bytes.
func EmailMessageFromJSON(data []byte) (*EmailMessage, error) {
	var msg EmailMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
