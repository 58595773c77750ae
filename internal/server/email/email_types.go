package email

import "context"

// Message is a single transactional email
type Message struct {
	From     string   // Sender address, optionally "Name <addr>"
	To       []string // Recipient addresses
	Subject  string   // Subject line
	HTMLBody string   // HTML body
}

// Sender delivers one message through an email provider and returns the
// provider's message id. Implementations are safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, msg *Message) (string, error)
}
