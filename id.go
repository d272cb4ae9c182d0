package flatdoc

import (
	"github.com/google/uuid"
)

// NewOperationID generates a UUIDv7 (time-ordered) identifier attached to
// the log fields of each Set/Get call, so a multi-statement write can be
// correlated across log lines.
func NewOperationID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fall back to UUIDv4 if NewV7 fails (extremely rare)
		id = uuid.New()
	}
	return id.String()
}
