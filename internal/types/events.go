package types

import "time"

// EventType represents the type of real-time event
type EventType string

const (
	EventMediaStored  EventType = "media.stored"
	EventMediaRemoved EventType = "media.removed"
)

// Event represents a real-time event that can be sent over WebSocket
type Event struct {
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

// MediaStoredEvent represents a new media record entering a collection
type MediaStoredEvent struct {
	MediaID        string `json:"media_id"`
	CollectionName string `json:"collection_name"`
	FileName       string `json:"file_name"`
	Disk           string `json:"disk"`
	StoredAt       string `json:"stored_at"`
}

// MediaRemovedEvent represents a media record leaving a collection
type MediaRemovedEvent struct {
	MediaID        string `json:"media_id"`
	CollectionName string `json:"collection_name"`
	RemovedAt      string `json:"removed_at"`
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
