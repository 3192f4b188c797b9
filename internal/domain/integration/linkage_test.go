package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linkedState() LinkageState {
	return LinkageState{
		MappingID:           "ext-100",
		IntegrationSourceID: "square-main",
		FieldMappings: map[string][]FieldMapping{
			"price": {{FieldPath: "data.price"}},
			"name":  {{SourceID: "square-main", FieldPath: "name"}},
		},
	}
}

func TestLinkageState_Predicates(t *testing.T) {
	t.Run("linked requires mapping and source", func(t *testing.T) {
		assert.True(t, linkedState().IsLinked())
		assert.False(t, LinkageState{MappingID: "ext-1"}.IsLinked())
		assert.False(t, LinkageState{IntegrationSourceID: "src"}.IsLinked())
	})

	t.Run("template mappings count for HasMapping but not IsActiveMapping", func(t *testing.T) {
		state := linkedState().WithTemplateMappings([]string{"description"})
		assert.True(t, state.HasMapping("description"))
		assert.False(t, state.IsActiveMapping("description"))
		assert.Equal(t, SyncStateLinkedInactive, state.SyncState("description"))
	})

	t.Run("active source gates IsActiveMapping", func(t *testing.T) {
		state := linkedState()
		assert.True(t, state.IsActiveMapping("price"))

		other := state.SwitchActiveSource("toast-backup")
		assert.False(t, other.IsActiveMapping("price"))
		assert.Equal(t, SyncStateLinkedInactive, other.SyncState("price"))

		same := state.SwitchActiveSource("square-main")
		assert.True(t, same.IsActiveMapping("price"))
	})

	t.Run("either override set marks overridden", func(t *testing.T) {
		state := linkedState()
		state.LocalFields = FieldSet{"price"}
		state.AttributeOverrides = FieldSet{"name"}
		assert.True(t, state.IsOverridden("price"))
		assert.True(t, state.IsOverridden("name"))
		assert.False(t, state.IsOverridden("description"))
	})

	t.Run("CanRevertToSync needs mapping and local control", func(t *testing.T) {
		state := linkedState()
		assert.False(t, state.CanRevertToSync("price"))

		disabled := state.DisableSync("price")
		assert.True(t, disabled.CanRevertToSync("price"))

		unmapped := state.DisableSync("color")
		assert.False(t, unmapped.CanRevertToSync("color"))
	})
}

func TestLinkageState_DisableSyncAlwaysLocallyApplied(t *testing.T) {
	fields := []string{"price", "name", "description", "unmapped"}
	states := []LinkageState{
		{},
		linkedState(),
		linkedState().SwitchActiveSource("other"),
		linkedState().WithTemplateMappings([]string{"description"}),
	}

	for _, state := range states {
		for _, field := range fields {
			next := state.DisableSync(field)
			assert.Equal(t, SyncStateLocallyApplied, next.SyncState(field), "field %s", field)
			assert.True(t, next.IsSyncDisabled(field))
			assert.True(t, next.IsOverridden(field))
		}
	}
}

func TestLinkageState_DisableEnableRoundTrip(t *testing.T) {
	states := map[string]LinkageState{
		"unlinked":        {FieldMappings: map[string][]FieldMapping{"price": {{FieldPath: "price"}}}},
		"linked active":   linkedState(),
		"inactive source": linkedState().SwitchActiveSource("other"),
		"template mapped": linkedState().WithTemplateMappings([]string{"description"}),
	}

	for name, state := range states {
		t.Run(name, func(t *testing.T) {
			for _, field := range []string{"price", "name", "description", "color"} {
				before := state.SyncState(field)
				after := state.DisableSync(field).EnableSync(field).SyncState(field)
				assert.Equal(t, before, after, "field %s", field)
			}
		})
	}
}

func TestLinkageState_TransitionsDoNotMutateReceiver(t *testing.T) {
	state := linkedState()
	state.LocalFields = FieldSet{"price"}

	_ = state.DisableSync("name")
	_ = state.EnableSync("price")
	_ = state.AddMapping("color", FieldMapping{FieldPath: "data.color"})
	_ = state.RemoveMapping("price", FieldMapping{})

	assert.Equal(t, FieldSet{"price"}, state.LocalFields)
	assert.Empty(t, state.DisabledSyncFields)
	assert.Empty(t, state.AttributeOverrides)
	assert.False(t, state.HasFieldMapping("color"))
	assert.True(t, state.HasFieldMapping("price"))
}

func TestLinkageState_EnableSyncClearsBothOverrideSets(t *testing.T) {
	state := linkedState()
	state.LocalFields = FieldSet{"price"}
	state.AttributeOverrides = FieldSet{"price", "name"}
	state.DisabledSyncFields = FieldSet{"price"}

	next := state.EnableSync("price")
	assert.False(t, next.IsOverridden("price"))
	assert.False(t, next.IsSyncDisabled("price"))
	assert.True(t, next.IsOverridden("name"))
	assert.Equal(t, SyncStateLinkedActive, next.SyncState("price"))
}

func TestLinkageState_Mappings(t *testing.T) {
	t.Run("AddMapping is idempotent", func(t *testing.T) {
		m := FieldMapping{FieldPath: "data.color"}
		state := linkedState().AddMapping("color", m).AddMapping("color", m)
		assert.Len(t, state.FieldMappings["color"], 1)
	})

	t.Run("RemoveMapping drops the key when empty", func(t *testing.T) {
		state := linkedState().RemoveMapping("price", FieldMapping{FieldPath: "data.price"})
		_, ok := state.FieldMappings["price"]
		assert.False(t, ok)
		assert.Equal(t, SyncStateNone, state.SyncState("price"))
	})

	t.Run("RemoveMapping with unknown mapping keeps others", func(t *testing.T) {
		state := linkedState().RemoveMapping("price", FieldMapping{FieldPath: "data.cost"})
		assert.Len(t, state.FieldMappings["price"], 1)
	})

	t.Run("MappingFor prefers the linked source", func(t *testing.T) {
		state := linkedState().
			AddMapping("name", FieldMapping{FieldPath: "data.title"}).
			AddMapping("name", FieldMapping{SourceID: "other", FieldPath: "data.label"})

		m, ok := state.MappingFor("name")
		require.True(t, ok)
		assert.Equal(t, "name", m.FieldPath)

		state.IntegrationSourceID = "unknown"
		m, ok = state.MappingFor("name")
		require.True(t, ok)
		assert.Equal(t, "data.title", m.FieldPath)

		_, ok = state.MappingFor("missing")
		assert.False(t, ok)
	})
}

func TestLinkageState_Describe(t *testing.T) {
	status := linkedState().DisableSync("price").Describe("price")

	assert.Equal(t, "price", status.Field)
	assert.Equal(t, SyncStateLocallyApplied, status.State)
	assert.True(t, status.HasMapping)
	assert.True(t, status.IsLinked)
	assert.True(t, status.IsSyncDisabled)
	assert.True(t, status.IsOverridden)
	assert.False(t, status.CanSync)
	assert.True(t, status.CanRevertToSync)
}
