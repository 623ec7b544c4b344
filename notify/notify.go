// Package notify delivers listing alerts. Messages are built once as a
// backend-neutral structure, then rendered by whichever backend is
// configured: Discord (webhook broadcast plus bot DMs) or Telegram.
package notify

import "time"

// Field is a labeled value inside a message.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Message is one rich notification.
type Message struct {
	Title       string
	URL         string
	Description string
	Color       int
	Fields      []Field
	ImageURL    string
	FooterText  string
	Timestamp   time.Time
}

// Broadcaster sends to the shared channel everyone sees.
type Broadcaster interface {
	Send(msg Message) error
}

// Messenger delivers to a single user.
type Messenger interface {
	SendTo(userID string, msg Message) error
}
