package pathgen

import (
	"strings"

	"github.com/princekumarofficial/media-service/internal/types"
)

// Generator maps a media record to its relative storage path. The result
// must be deterministic for a given record so the path can be re-derived
// at delete and URL time without a side table.
type Generator interface {
	Path(record *types.MediaRecord) string
}

// Default generates paths as {prefix}/{id}/{file_name}, omitting the
// prefix segment entirely when it is empty
type Default struct {
	Prefix string
}

// Path returns the storage path for the record
func (g Default) Path(record *types.MediaRecord) string {
	prefix := strings.Trim(g.Prefix, "/")
	if prefix == "" {
		return record.ID + "/" + record.FileName
	}
	return prefix + "/" + record.ID + "/" + record.FileName
}
