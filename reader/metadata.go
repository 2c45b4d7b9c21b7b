package reader

import (
	"time"

	"github.com/osmwrangle/osmwrangle/element"
)

// xmlMetadata returns nil when the element carries none of the
// metadata attributes.
func xmlMetadata(user string, uid int64, version int, changeset int64, ts time.Time) *element.Metadata {
	if user == "" && uid == 0 && version == 0 && changeset == 0 && ts.IsZero() {
		return nil
	}
	return &element.Metadata{
		UserID:    uid,
		UserName:  user,
		Version:   version,
		Changeset: changeset,
		Timestamp: ts,
	}
}
