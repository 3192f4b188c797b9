package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/signage/backend/internal/domain/catalog"
	"github.com/signage/backend/internal/domain/integration"
	"github.com/signage/backend/internal/domain/shared"
	"github.com/signage/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func linkPath(id uuid.UUID, suffix string) string {
	return "/api/v1/entities/" + id.String() + suffix
}

func optionPath(productID, optionID uuid.UUID, suffix string) string {
	return linkPath(productID, "/options/"+optionID.String()+suffix)
}

func TestLinkHandler_LinkEntity(t *testing.T) {
	links := new(mockLinks)
	r := newTestEngine(NewLinkHandler(links))

	entity := newTestEntity("Burger")
	entity.MappingID = "sq-1"
	entity.IntegrationSourceID = "square"
	entity.IntegrationType = integration.EntityTypeProduct
	links.On("LinkEntity", mock.Anything, entity.ID, "sq-1", "square", integration.EntityTypeProduct).Return(entity, nil)

	w := doRequest(r, http.MethodPost, linkPath(entity.ID, "/link"),
		`{"mapping_id":"sq-1","integration_source_id":"square","entity_type":"product"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "sq-1", data["mapping_id"])
	assert.Equal(t, "square", data["integration_source_id"])
	assert.Equal(t, []any{}, data["local_fields"])
	links.AssertExpectations(t)
}

func TestLinkHandler_LinkEntity_Validation(t *testing.T) {
	links := new(mockLinks)
	r := newTestEngine(NewLinkHandler(links))

	tests := []struct {
		name string
		body string
		code string
	}{
		{"missing mapping id", `{"integration_source_id":"square"}`, dto.ErrCodeValidation},
		{"unknown entity type", `{"mapping_id":"sq-1","integration_source_id":"square","entity_type":"coupon"}`, dto.ErrCodeValidation},
		{"malformed body", `{"mapping_id":`, dto.ErrCodeInvalidJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, http.MethodPost, linkPath(uuid.New(), "/link"), tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeResponse(t, w)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
	links.AssertNotCalled(t, "LinkEntity", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLinkHandler_LinkEntity_RecordMissing(t *testing.T) {
	links := new(mockLinks)
	r := newTestEngine(NewLinkHandler(links))

	id := uuid.New()
	links.On("LinkEntity", mock.Anything, id, "sq-404", "square", integration.EntityType("")).
		Return(nil, fmt.Errorf("%w: square/product/sq-404", integration.ErrMappingNotFound))

	w := doRequest(r, http.MethodPost, linkPath(id, "/link"),
		`{"mapping_id":"sq-404","integration_source_id":"square"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeBusinessRule, resp.Error.Code)
}

func TestLinkHandler_UnlinkEntity(t *testing.T) {
	links := new(mockLinks)
	r := newTestEngine(NewLinkHandler(links))

	entity := newTestEntity("Burger")
	links.On("UnlinkEntity", mock.Anything, entity.ID).Return(entity, nil)

	w := doRequest(r, http.MethodDelete, linkPath(entity.ID, "/link"), "")

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.NotContains(t, data, "mapping_id")
}

func TestLinkHandler_LinkOption_ParentNotLinked(t *testing.T) {
	links := new(mockLinks)
	r := newTestEngine(NewLinkHandler(links))

	productID, optionID := uuid.New(), uuid.New()
	links.On("LinkOption", mock.Anything, productID, optionID, "mod-1", integration.EntityTypeModifier).
		Return(nil, integration.ErrParentNotLinked)

	w := doRequest(r, http.MethodPost, optionPath(productID, optionID, "/link"),
		`{"mapping_id":"mod-1","entity_type":"modifier"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeInvalidState, resp.Error.Code)
}

func TestLinkHandler_UnlinkOption(t *testing.T) {
	links := new(mockLinks)
	r := newTestEngine(NewLinkHandler(links))

	entity := newTestEntity("Burger")
	optionID := uuid.New()
	links.On("UnlinkOption", mock.Anything, entity.ID, optionID).Return(entity, nil)

	w := doRequest(r, http.MethodDelete, optionPath(entity.ID, optionID, "/link"), "")

	assert.Equal(t, http.StatusOK, w.Code)
	links.AssertExpectations(t)
}

func TestLinkHandler_SetCalculation(t *testing.T) {
	links := new(mockLinks)
	r := newTestEngine(NewLinkHandler(links))

	entity := newTestEntity("Combo")
	want := integration.Calculation{
		{
			Reference: integration.ExternalReference{MappingID: "sq-1", EntityType: integration.EntityTypeProduct},
			FieldPath: "price",
			Operation: integration.OperationAdd,
		},
		{
			Reference: integration.ExternalReference{MappingID: "disc-1", EntityType: integration.EntityTypeDiscount},
			FieldPath: "amount",
			Operation: integration.OperationSubtract,
		},
	}
	links.On("SetCalculation", mock.Anything, entity.ID, "price", want).Return(entity, nil)

	w := doRequest(r, http.MethodPut, linkPath(entity.ID, "/calculations/price"), `{"parts":[
		{"mapping_id":"sq-1","entity_type":"product","field_path":"price","operation":"add"},
		{"mapping_id":"disc-1","entity_type":"discount","field_path":"amount","operation":"subtract"}
	]}`)

	assert.Equal(t, http.StatusOK, w.Code)
	links.AssertExpectations(t)
}

func TestLinkHandler_SetCalculation_RejectsEmptyParts(t *testing.T) {
	links := new(mockLinks)
	r := newTestEngine(NewLinkHandler(links))

	w := doRequest(r, http.MethodPut, linkPath(uuid.New(), "/calculations/price"), `{"parts":[]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	links.AssertNotCalled(t, "SetCalculation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLinkHandler_ClearCalculation(t *testing.T) {
	links := new(mockLinks)
	r := newTestEngine(NewLinkHandler(links))

	entity := newTestEntity("Combo")
	links.On("ClearCalculation", mock.Anything, entity.ID, "price").Return(entity, nil)

	w := doRequest(r, http.MethodDelete, linkPath(entity.ID, "/calculations/price"), "")

	assert.Equal(t, http.StatusOK, w.Code)
	links.AssertExpectations(t)
}

func TestLinkHandler_SetOptionCalculation(t *testing.T) {
	links := new(mockLinks)
	r := newTestEngine(NewLinkHandler(links))

	entity := newTestEntity("Burger")
	optionID := uuid.New()
	want := integration.Calculation{{
		Reference: integration.ExternalReference{MappingID: "mod-1", EntityType: integration.EntityTypeModifier},
		FieldPath: "price",
		Operation: integration.OperationAdd,
	}}
	links.On("SetOptionCalculation", mock.Anything, entity.ID, optionID, want).Return(entity, nil)

	w := doRequest(r, http.MethodPut, optionPath(entity.ID, optionID, "/calculation"),
		`{"parts":[{"mapping_id":"mod-1","entity_type":"modifier","field_path":"price","operation":"add"}]}`)

	assert.Equal(t, http.StatusOK, w.Code)
	links.AssertExpectations(t)
}

func TestLinkHandler_CalculationOverride(t *testing.T) {
	links := new(mockLinks)
	r := newTestEngine(NewLinkHandler(links))

	entity := newTestEntity("Burger")
	optionID := uuid.New()
	links.On("SetCalculationOverride", mock.Anything, entity.ID, optionID,
		mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(decimal.RequireFromString("12.5")) }),
	).Return(entity, nil)
	links.On("ClearCalculationOverride", mock.Anything, entity.ID, optionID).Return(entity, nil)

	w := doRequest(r, http.MethodPut, optionPath(entity.ID, optionID, "/calculation-override"), `{"price":"12.50"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodDelete, optionPath(entity.ID, optionID, "/calculation-override"), "")
	assert.Equal(t, http.StatusOK, w.Code)

	links.AssertExpectations(t)
}

func TestLinkHandler_CalculationOverride_MissingPrice(t *testing.T) {
	links := new(mockLinks)
	r := newTestEngine(NewLinkHandler(links))

	w := doRequest(r, http.MethodPut, optionPath(uuid.New(), uuid.New(), "/calculation-override"), `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLinkHandler_LocalOverride(t *testing.T) {
	links := new(mockLinks)
	r := newTestEngine(NewLinkHandler(links))

	entity := newTestEntity("Burger")
	entity.LocalFields = integration.FieldSet{"name"}
	links.On("EnableLocalOverride", mock.Anything, entity.ID, "name",
		mock.MatchedBy(func(v catalog.Value) bool { return v.Equal(catalog.Text("House Burger")) }),
	).Return(entity, nil)
	links.On("ClearLocalOverride", mock.Anything, entity.ID, "name").Return(entity, nil)

	w := doRequest(r, http.MethodPut, linkPath(entity.ID, "/overrides/name"), `{"value":"House Burger"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"name"}, decodeData(t, w)["local_fields"])

	w = doRequest(r, http.MethodDelete, linkPath(entity.ID, "/overrides/name"), "")
	assert.Equal(t, http.StatusOK, w.Code)

	links.AssertExpectations(t)
}

func TestLinkHandler_SyncToggles(t *testing.T) {
	links := new(mockLinks)
	r := newTestEngine(NewLinkHandler(links))

	entity := newTestEntity("Burger")
	links.On("DisableSync", mock.Anything, entity.ID, "description").Return(entity, nil)
	links.On("EnableSync", mock.Anything, entity.ID, "description").Return(entity, nil)

	w := doRequest(r, http.MethodPost, linkPath(entity.ID, "/sync/description/disable"), "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodPost, linkPath(entity.ID, "/sync/description/enable"), "")
	assert.Equal(t, http.StatusOK, w.Code)

	links.AssertExpectations(t)
}

func TestLinkHandler_FieldMappings(t *testing.T) {
	links := new(mockLinks)
	r := newTestEngine(NewLinkHandler(links))

	entity := newTestEntity("Burger")
	mapping := integration.FieldMapping{SourceID: "square", FieldPath: "item_data.name"}
	links.On("AddFieldMapping", mock.Anything, entity.ID, "name", mapping).Return(entity, nil)
	links.On("RemoveFieldMapping", mock.Anything, entity.ID, "name", mapping).Return(entity, nil)
	links.On("RemoveFieldMapping", mock.Anything, entity.ID, "name", integration.FieldMapping{}).Return(entity, nil)

	body := `{"source_id":"square","field_path":"item_data.name"}`

	w := doRequest(r, http.MethodPost, linkPath(entity.ID, "/mappings/name"), body)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodDelete, linkPath(entity.ID, "/mappings/name"), body)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodDelete, linkPath(entity.ID, "/mappings/name"), "")
	assert.Equal(t, http.StatusOK, w.Code)

	links.AssertExpectations(t)
}

func TestLinkHandler_AddFieldMapping_MissingPath(t *testing.T) {
	links := new(mockLinks)
	r := newTestEngine(NewLinkHandler(links))

	w := doRequest(r, http.MethodPost, linkPath(uuid.New(), "/mappings/name"), `{"source_id":"square"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "field_path", resp.Error.Details[0].Field)
}

func TestLinkHandler_SwitchActiveSource(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		links := new(mockLinks)
		r := newTestEngine(NewLinkHandler(links))

		entity := newTestEntity("Burger")
		entity.ActiveSourceID = "toast"
		links.On("SwitchActiveSource", mock.Anything, entity.ID, "toast").Return(entity, nil)

		w := doRequest(r, http.MethodPut, linkPath(entity.ID, "/active-source"), `{"integration_source_id":"toast"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "toast", decodeData(t, w)["active_source_id"])
	})

	t.Run("concurrent modification", func(t *testing.T) {
		links := new(mockLinks)
		r := newTestEngine(NewLinkHandler(links))

		id := uuid.New()
		links.On("SwitchActiveSource", mock.Anything, id, "toast").Return(nil, shared.ErrConcurrencyConflict)

		w := doRequest(r, http.MethodPut, linkPath(id, "/active-source"), `{"integration_source_id":"toast"}`)

		assert.Equal(t, http.StatusConflict, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeConcurrencyConflict, resp.Error.Code)
	})
}
