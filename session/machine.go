package session

import (
	"fmt"

	"github.com/pithecene-io/mpub/archive"
	"github.com/pithecene-io/mpub/types"
)

// Event is an input to the state machine: either the start signal or the
// outcome of an effect.
type Event interface {
	eventName() string
}

// Started is sent once by Send.
type Started struct{}

// CategoryResolved carries the id found in the category list.
type CategoryResolved struct{ ID int }

// ArchiveBuilt carries the finished archive.
type ArchiveBuilt struct{ Archive *archive.Archive }

// UploadFinished carries the listing response body.
type UploadFinished struct{ Body []byte }

// InventorySynced reports that the inventory request returned.
type InventorySynced struct{}

// Failed ends the session with Err.
type Failed struct{ Err *Error }

func (Started) eventName() string          { return "started" }
func (CategoryResolved) eventName() string { return "category_resolved" }
func (ArchiveBuilt) eventName() string     { return "archive_built" }
func (UploadFinished) eventName() string   { return "upload_finished" }
func (InventorySynced) eventName() string  { return "inventory_synced" }
func (Failed) eventName() string           { return "failed" }

// Effect is the work the executor performs after a transition.
type Effect int

const (
	// EffectNone means nothing further to do.
	EffectNone Effect = iota
	// EffectFetchCategory issues the category list request.
	EffectFetchCategory
	// EffectBuildArchive packs the input files.
	EffectBuildArchive
	// EffectUpload submits the listing.
	EffectUpload
	// EffectSyncInventory issues the inventory request.
	EffectSyncInventory
)

// Op names used in errors and logs.
const (
	OpFetchCategory = "fetch_category"
	OpBuildArchive  = "build_archive"
	OpUpload        = "upload"
	OpSyncInventory = "sync_inventory"
)

// Op returns the operation name of the effect.
func (e Effect) Op() string {
	switch e {
	case EffectFetchCategory:
		return OpFetchCategory
	case EffectBuildArchive:
		return OpBuildArchive
	case EffectUpload:
		return OpUpload
	case EffectSyncInventory:
		return OpSyncInventory
	default:
		return "none"
	}
}

func (e Effect) String() string { return e.Op() }

// Transition is the session state machine. It is pure: it only maps the
// current state and an event to the next state and the effect to run.
//
// Every failure converges on StateComplete. Events that do not apply to the
// current state return ErrInvalidTransition and leave the state unchanged.
func Transition(state types.State, ev Event) (types.State, Effect, error) {
	if _, ok := ev.(Failed); ok && !state.IsTerminal() {
		return types.StateComplete, EffectNone, nil
	}

	switch state {
	case types.StateIdle:
		if _, ok := ev.(Started); ok {
			return types.StateFetchingCategory, EffectFetchCategory, nil
		}
	case types.StateFetchingCategory:
		switch ev.(type) {
		case CategoryResolved:
			return types.StateFetchingCategory, EffectBuildArchive, nil
		case ArchiveBuilt:
			return types.StateUploading, EffectUpload, nil
		}
	case types.StateUploading:
		if _, ok := ev.(UploadFinished); ok {
			return types.StateAwaitingInventorySync, EffectSyncInventory, nil
		}
	case types.StateAwaitingInventorySync:
		if _, ok := ev.(InventorySynced); ok {
			return types.StateComplete, EffectNone, nil
		}
	}

	return state, EffectNone, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, eventName(ev), state)
}

func eventName(ev Event) string {
	if ev == nil {
		return "<nil>"
	}
	return ev.eventName()
}
