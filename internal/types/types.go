package types

import "time"

// MediaRecord represents one stored file and its metadata in the database
type MediaRecord struct {
	ID               string         `json:"id" db:"id"`
	Name             string         `json:"name" db:"name"`
	FileName         string         `json:"file_name" db:"file_name"`
	CollectionName   string         `json:"collection_name" db:"collection_name"`
	Disk             string         `json:"disk" db:"disk"`
	MimeType         string         `json:"mime_type" db:"mime_type"`
	Size             int64          `json:"size" db:"size"`
	CustomProperties map[string]any `json:"custom_properties" db:"custom_properties"`
	OrderColumn      *int           `json:"order_column,omitempty" db:"order_column"`
	CuratorID        string         `json:"curator_id,omitempty" db:"curator_id"`
	CuratorType      string         `json:"curator_type,omitempty" db:"curator_type"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at" db:"updated_at"`
}

// Curated reports whether the record is owned by a curator.
// CuratorID and CuratorType are always set or cleared together.
func (m *MediaRecord) Curated() bool {
	return m.CuratorID != "" && m.CuratorType != ""
}

// Curator is the entity that owns a media record. Any application type
// can act as a curator by exposing its identifier and type name.
type Curator interface {
	CuratorID() string
	CuratorType() string
}

// CuratorRef is a plain value implementation of Curator
type CuratorRef struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

func (c CuratorRef) CuratorID() string   { return c.ID }
func (c CuratorRef) CuratorType() string { return c.Type }

// CuratorKey returns the hub/cache key for a curator identity
func CuratorKey(curatorID, curatorType string) string {
	return curatorType + ":" + curatorID
}
