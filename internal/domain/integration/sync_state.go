package integration

// SyncState is the derived sync status of one field. It is never persisted.
type SyncState string

const (
	SyncStateLinkedActive   SyncState = "linked-active"
	SyncStateLinkedInactive SyncState = "linked-inactive"
	SyncStateLocallyApplied SyncState = "locally-applied"
	SyncStateNone           SyncState = "none"
)

// String returns the string representation
func (s SyncState) String() string {
	return string(s)
}

// AllSyncStates returns every sync state
func AllSyncStates() []SyncState {
	return []SyncState{
		SyncStateLinkedActive,
		SyncStateLinkedInactive,
		SyncStateLocallyApplied,
		SyncStateNone,
	}
}

// SyncFlags are the five predicates a field's sync state is derived from
type SyncFlags struct {
	HasMapping      bool
	IsLinked        bool
	IsActiveMapping bool
	IsOverridden    bool
	IsSyncDisabled  bool
}

// ClassifySyncState maps predicate flags to exactly one sync state.
//
// A mapped field that is neither overridden nor disabled is linked-active when
// the entity is linked and the mapping is active, and linked-inactive
// otherwise. An overridden or disabled field is locally-applied. Anything
// else has no sync state.
func ClassifySyncState(f SyncFlags) SyncState {
	if f.HasMapping && !f.IsOverridden && !f.IsSyncDisabled {
		if f.IsLinked && f.IsActiveMapping {
			return SyncStateLinkedActive
		}
		return SyncStateLinkedInactive
	}
	if f.IsOverridden || f.IsSyncDisabled {
		return SyncStateLocallyApplied
	}
	return SyncStateNone
}

// FieldSyncStatus projects every sync predicate for one field
type FieldSyncStatus struct {
	Field           string    `json:"field"`
	State           SyncState `json:"state"`
	HasMapping      bool      `json:"has_mapping"`
	IsLinked        bool      `json:"is_linked"`
	IsActiveMapping bool      `json:"is_active_mapping"`
	IsOverridden    bool      `json:"is_overridden"`
	IsSyncDisabled  bool      `json:"is_sync_disabled"`
	CanSync         bool      `json:"can_sync"`
	CanRevertToSync bool      `json:"can_revert_to_sync"`
}
