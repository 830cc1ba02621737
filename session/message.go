package session

import (
	"time"

	"github.com/google/uuid"
)

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one transcript entry. Messages are never modified once
// appended; a bot message's displayed HTML grows while it is revealed.
type Message struct {
	ID        string
	Text      string
	Sender    Sender
	Timestamp time.Time
}

func newMessage(text string, sender Sender, now time.Time) Message {
	return Message{
		ID:        uuid.NewString(),
		Text:      text,
		Sender:    sender,
		Timestamp: now,
	}
}
