package types

import "github.com/google/uuid"

// RunID is a UUID-based identifier for a research run
type RunID string

// NewRunID generates a new time-ordered RunID
func NewRunID() RunID {
	return RunID(uuid.Must(uuid.NewV7()).String())
}

// String returns the string representation of the run ID
func (id RunID) String() string {
	return string(id)
}

// UserID is the owning-user identity supplied by the auth layer
type UserID string

// String returns the string representation of the user ID
func (id UserID) String() string {
	return string(id)
}

// MessageID is a UUID-based identifier for a follow-up message
type MessageID string

// NewMessageID generates a new time-ordered MessageID
func NewMessageID() MessageID {
	return MessageID(uuid.Must(uuid.NewV7()).String())
}

// String returns the string representation of the message ID
func (id MessageID) String() string {
	return string(id)
}
