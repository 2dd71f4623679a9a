package session

import (
	"errors"
	"testing"

	"github.com/pithecene-io/mpub/types"
)

func TestTransition(t *testing.T) {
	fail := Failed{Err: &Error{Kind: types.ErrorNetwork}}

	tests := []struct {
		name    string
		state   types.State
		event   Event
		want    types.State
		effect  Effect
		invalid bool
	}{
		{"start", types.StateIdle, Started{}, types.StateFetchingCategory, EffectFetchCategory, false},
		{"category resolved", types.StateFetchingCategory, CategoryResolved{ID: 5}, types.StateFetchingCategory, EffectBuildArchive, false},
		{"archive built", types.StateFetchingCategory, ArchiveBuilt{}, types.StateUploading, EffectUpload, false},
		{"upload finished", types.StateUploading, UploadFinished{}, types.StateAwaitingInventorySync, EffectSyncInventory, false},
		{"inventory synced", types.StateAwaitingInventorySync, InventorySynced{}, types.StateComplete, EffectNone, false},

		{"fail while idle", types.StateIdle, fail, types.StateComplete, EffectNone, false},
		{"fail while fetching", types.StateFetchingCategory, fail, types.StateComplete, EffectNone, false},
		{"fail while uploading", types.StateUploading, fail, types.StateComplete, EffectNone, false},
		{"fail while syncing", types.StateAwaitingInventorySync, fail, types.StateComplete, EffectNone, false},

		{"restart", types.StateFetchingCategory, Started{}, types.StateFetchingCategory, EffectNone, true},
		{"upload before archive", types.StateFetchingCategory, UploadFinished{}, types.StateFetchingCategory, EffectNone, true},
		{"sync while idle", types.StateIdle, InventorySynced{}, types.StateIdle, EffectNone, true},
		{"start after complete", types.StateComplete, Started{}, types.StateComplete, EffectNone, true},
		{"fail after complete", types.StateComplete, fail, types.StateComplete, EffectNone, true},
		{"nil event", types.StateIdle, nil, types.StateIdle, EffectNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, effect, err := Transition(tt.state, tt.event)
			if tt.invalid {
				if !errors.Is(err, ErrInvalidTransition) {
					t.Errorf("err = %v, want ErrInvalidTransition", err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if next != tt.want {
				t.Errorf("next = %s, want %s", next, tt.want)
			}
			if effect != tt.effect {
				t.Errorf("effect = %s, want %s", effect, tt.effect)
			}
		})
	}
}

func TestTransition_CompleteIsOnlyTerminal(t *testing.T) {
	states := []types.State{
		types.StateIdle,
		types.StateFetchingCategory,
		types.StateUploading,
		types.StateAwaitingInventorySync,
	}
	for _, s := range states {
		next, _, err := Transition(s, Failed{Err: &Error{Kind: types.ErrorUnknown}})
		if err != nil || next != types.StateComplete {
			t.Errorf("Failed from %s -> %s, %v", s, next, err)
		}
	}
}
