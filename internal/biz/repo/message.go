package repo

import "context"

// MessageRepo is the message repository interface
// Responsible for delivering outbound text through the chat platform
type MessageRepo interface {
	// SendText sends a text message to a conversation
	SendText(ctx context.Context, chatID, text string) error

	// SendTextToUser sends a text message directly to a user (maintainer heartbeat)
	SendTextToUser(ctx context.Context, userID, text string) error
}
