package events

import (
	"time"

	"github.com/princekumarofficial/media-service/internal/types"
)

// Publisher interface for publishing media lifecycle events
type Publisher interface {
	PublishMediaStored(record *types.MediaRecord) error
	PublishMediaRemoved(record *types.MediaRecord) error
}

// EventPublisher implements the Publisher interface
type EventPublisher struct {
	hub WebSocketHub
}

// WebSocketHub interface for the WebSocket hub
type WebSocketHub interface {
	BroadcastToCurator(curatorKey string, event *types.Event)
	IsCuratorConnected(curatorKey string) bool
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(hub WebSocketHub) *EventPublisher {
	return &EventPublisher{
		hub: hub,
	}
}

// PublishMediaStored notifies the owning curator that a record entered a collection
func (p *EventPublisher) PublishMediaStored(record *types.MediaRecord) error {
	// Anonymous records have nobody to notify
	if !record.Curated() {
		return nil
	}

	curatorKey := types.CuratorKey(record.CuratorID, record.CuratorType)

	// Only send if the curator is connected
	if !p.hub.IsCuratorConnected(curatorKey) {
		return nil
	}

	eventData := &types.MediaStoredEvent{
		MediaID:        record.ID,
		CollectionName: record.CollectionName,
		FileName:       record.FileName,
		Disk:           record.Disk,
		StoredAt:       time.Now().UTC().Format(time.RFC3339),
	}

	event := types.NewEvent(types.EventMediaStored, eventData)
	p.hub.BroadcastToCurator(curatorKey, event)

	return nil
}

// PublishMediaRemoved notifies the owning curator that a record was removed
func (p *EventPublisher) PublishMediaRemoved(record *types.MediaRecord) error {
	if !record.Curated() {
		return nil
	}

	curatorKey := types.CuratorKey(record.CuratorID, record.CuratorType)

	if !p.hub.IsCuratorConnected(curatorKey) {
		return nil
	}

	eventData := &types.MediaRemovedEvent{
		MediaID:        record.ID,
		CollectionName: record.CollectionName,
		RemovedAt:      time.Now().UTC().Format(time.RFC3339),
	}

	event := types.NewEvent(types.EventMediaRemoved, eventData)
	p.hub.BroadcastToCurator(curatorKey, event)

	return nil
}
