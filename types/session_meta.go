package types

import (
	"errors"
	"fmt"
)

// Operation selects between creating a listing and updating an existing one.
type Operation string

const (
	// OperationCreate publishes a new listing (POST).
	OperationCreate Operation = "create"
	// OperationUpdate replaces the payload of an existing listing (PUT).
	OperationUpdate Operation = "update"
)

// SessionMeta is the identity attached to every log line and event of a
// session.
type SessionMeta struct {
	// SessionID uniquely identifies one session.
	SessionID string
	// Operation is create or update.
	Operation Operation
	// ItemID is the existing listing id. Nil for create.
	ItemID *string
	// Title is the listing title.
	Title string
}

// Validate checks the identity rules:
//   - session_id is non-empty
//   - operation is create or update
//   - update => item_id present, create => item_id absent
func (m *SessionMeta) Validate() error {
	if m.SessionID == "" {
		return errors.New("session_id must be non-empty")
	}

	switch m.Operation {
	case OperationCreate:
		if m.ItemID != nil {
			return errors.New("create operation must not have item_id")
		}
	case OperationUpdate:
		if m.ItemID == nil || *m.ItemID == "" {
			return errors.New("update operation must have item_id")
		}
	default:
		return fmt.Errorf("unknown operation %q", m.Operation)
	}

	return nil
}
