package integration

import (
	"slices"
	"strings"
)

// FieldMapping binds an entity field to a path in an external record.
// An empty SourceID applies to whichever source the entity is linked to.
type FieldMapping struct {
	SourceID  string `json:"source_id,omitempty"`
	FieldPath string `json:"field_path"`
}

// IsZero reports whether the mapping carries no data
func (m FieldMapping) IsZero() bool {
	return m.SourceID == "" && m.FieldPath == ""
}

// Validate checks the mapping is usable
func (m FieldMapping) Validate() error {
	if strings.TrimSpace(m.FieldPath) == "" {
		return ErrInvalidFieldMapping
	}
	return nil
}

// LinkageState is the sync metadata of one entity. Transitions return a new
// value and never modify the receiver; callers persist the result.
type LinkageState struct {
	MappingID            string
	IntegrationSourceID  string
	ActiveSourceID       string
	FieldMappings        map[string][]FieldMapping
	TemplateMappedFields FieldSet
	LocalFields          FieldSet
	AttributeOverrides   FieldSet
	DisabledSyncFields   FieldSet
}

// ---------------------------------------------------------------------------
// Predicates
// ---------------------------------------------------------------------------

// IsLinked returns true when the entity has both a mapping ID and a source
func (s LinkageState) IsLinked() bool {
	return s.MappingID != "" && s.IntegrationSourceID != ""
}

// HasFieldMapping returns true when the entity itself maps the field
func (s LinkageState) HasFieldMapping(field string) bool {
	return len(s.FieldMappings[field]) > 0
}

// HasMapping returns true when the entity or its template maps the field
func (s LinkageState) HasMapping(field string) bool {
	return s.HasFieldMapping(field) || s.TemplateMappedFields.Contains(field)
}

// IsSyncDisabled returns true when sync is paused for the field
func (s LinkageState) IsSyncDisabled(field string) bool {
	return s.DisabledSyncFields.Contains(field)
}

// IsOverridden returns true when the field is pinned to a local value
func (s LinkageState) IsOverridden(field string) bool {
	return s.LocalFields.Contains(field) || s.AttributeOverrides.Contains(field)
}

// CanSync returns true when the field is mapped and sync is not paused
func (s LinkageState) CanSync(field string) bool {
	return s.HasMapping(field) && !s.IsSyncDisabled(field)
}

// IsActiveMapping returns true when the entity is linked, maps the field
// itself, and its source is the active one (or no active source is set).
func (s LinkageState) IsActiveMapping(field string) bool {
	if !s.IsLinked() || !s.HasFieldMapping(field) {
		return false
	}
	return s.ActiveSourceID == "" || s.ActiveSourceID == s.IntegrationSourceID
}

// CanRevertToSync returns true when a locally controlled field can go back to sync
func (s LinkageState) CanRevertToSync(field string) bool {
	return s.HasMapping(field) && (s.IsSyncDisabled(field) || s.IsOverridden(field))
}

// Flags collects the predicates ClassifySyncState works on
func (s LinkageState) Flags(field string) SyncFlags {
	return SyncFlags{
		HasMapping:      s.HasMapping(field),
		IsLinked:        s.IsLinked(),
		IsActiveMapping: s.IsActiveMapping(field),
		IsOverridden:    s.IsOverridden(field),
		IsSyncDisabled:  s.IsSyncDisabled(field),
	}
}

// SyncState derives the field's sync state
func (s LinkageState) SyncState(field string) SyncState {
	return ClassifySyncState(s.Flags(field))
}

// Describe projects all predicates for one field
func (s LinkageState) Describe(field string) FieldSyncStatus {
	flags := s.Flags(field)
	return FieldSyncStatus{
		Field:           field,
		State:           ClassifySyncState(flags),
		HasMapping:      flags.HasMapping,
		IsLinked:        flags.IsLinked,
		IsActiveMapping: flags.IsActiveMapping,
		IsOverridden:    flags.IsOverridden,
		IsSyncDisabled:  flags.IsSyncDisabled,
		CanSync:         s.CanSync(field),
		CanRevertToSync: s.CanRevertToSync(field),
	}
}

// MappingFor picks the field mapping for the linked source. A mapping bound to
// the linked source wins over an unbound one.
func (s LinkageState) MappingFor(field string) (FieldMapping, bool) {
	var fallback *FieldMapping
	for _, m := range s.FieldMappings[field] {
		if m.SourceID != "" && m.SourceID == s.IntegrationSourceID {
			return m, true
		}
		if m.SourceID == "" && fallback == nil {
			fallback = &m
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return FieldMapping{}, false
}

// ---------------------------------------------------------------------------
// Transitions
// ---------------------------------------------------------------------------

// EnableSync resumes sync for the field and drops it from both override sets
func (s LinkageState) EnableSync(field string) LinkageState {
	next := s.clone()
	next.DisabledSyncFields = next.DisabledSyncFields.Without(field)
	next.AttributeOverrides = next.AttributeOverrides.Without(field)
	next.LocalFields = next.LocalFields.Without(field)
	return next
}

// DisableSync pauses sync for the field and records it as overridden.
// Both sets change together so a disabled field can never read as linked-active.
func (s LinkageState) DisableSync(field string) LinkageState {
	next := s.clone()
	next.DisabledSyncFields = next.DisabledSyncFields.With(field)
	next.AttributeOverrides = next.AttributeOverrides.With(field)
	return next
}

// AddMapping adds a field-level mapping. Adding an existing mapping is a no-op.
func (s LinkageState) AddMapping(field string, m FieldMapping) LinkageState {
	next := s.clone()
	if slices.Contains(next.FieldMappings[field], m) {
		return next
	}
	next.FieldMappings[field] = append(next.FieldMappings[field], m)
	return next
}

// RemoveMapping removes a field-level mapping. A zero mapping removes every
// mapping of the field.
func (s LinkageState) RemoveMapping(field string, m FieldMapping) LinkageState {
	next := s.clone()
	if m.IsZero() {
		delete(next.FieldMappings, field)
		return next
	}
	kept := slices.DeleteFunc(next.FieldMappings[field], func(existing FieldMapping) bool {
		return existing == m
	})
	if len(kept) == 0 {
		delete(next.FieldMappings, field)
	} else {
		next.FieldMappings[field] = kept
	}
	return next
}

// SwitchActiveSource repoints the active integration source. Override and
// disabled sets are left untouched.
func (s LinkageState) SwitchActiveSource(sourceID string) LinkageState {
	next := s.clone()
	next.ActiveSourceID = sourceID
	return next
}

// WithTemplateMappings returns a copy that also treats fields as template mapped
func (s LinkageState) WithTemplateMappings(fields []string) LinkageState {
	next := s.clone()
	next.TemplateMappedFields = next.TemplateMappedFields.Union(fields)
	return next
}

func (s LinkageState) clone() LinkageState {
	next := s
	next.FieldMappings = make(map[string][]FieldMapping, len(s.FieldMappings))
	for field, mappings := range s.FieldMappings {
		next.FieldMappings[field] = slices.Clone(mappings)
	}
	next.TemplateMappedFields = slices.Clone(s.TemplateMappedFields)
	next.LocalFields = slices.Clone(s.LocalFields)
	next.AttributeOverrides = slices.Clone(s.AttributeOverrides)
	next.DisabledSyncFields = slices.Clone(s.DisabledSyncFields)
	return next
}
