// Package email renders transactional messages and hands them to a delivery backend.
package email

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message kinds.
const (
	KindWelcome       = "welcome"
	KindPasswordReset = "password_reset"
)

// Message is the payload handed to a delivery backend.
type Message struct {
	Kind      string    `json:"kind"`
	To        string    `json:"to"`
	Name      string    `json:"name"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	ResetURL  string    `json:"resetUrl,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewWelcomeMessage builds the sign-up greeting.
func NewWelcomeMessage(to, name string) *Message {
	return &Message{
		Kind:      KindWelcome,
		To:        to,
		Name:      name,
		Subject:   "Welcome to Expense Tracker",
		Body:      fmt.Sprintf("Hi %s,\n\nYour account is ready. Start by adding an account and a few categories.\n", displayName(name)),
		Timestamp: time.Now().UTC(),
	}
}

// NewPasswordResetMessage builds the reset link email.
func NewPasswordResetMessage(to, name, resetURL string) *Message {
	return &Message{
		Kind:      KindPasswordReset,
		To:        to,
		Name:      name,
		Subject:   "Reset your Expense Tracker password",
		Body:      fmt.Sprintf("Hi %s,\n\nUse the link below to choose a new password. It expires soon and works once.\n\n%s\n", displayName(name), resetURL),
		ResetURL:  resetURL,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MessageFromJSON decodes a message published by AMQPSender.
func MessageFromJSON(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func displayName(name string) string {
	if name == "" {
		return "there"
	}
	return name
}
