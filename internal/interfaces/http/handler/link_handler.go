package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	integrationapp "github.com/signage/backend/internal/application/integration"
	"github.com/signage/backend/internal/domain/catalog"
	"github.com/signage/backend/internal/domain/integration"
	"github.com/signage/backend/internal/interfaces/http/dto"
)

// LinkManager mutates the linkage state of entities and options
type LinkManager interface {
	LinkEntity(ctx context.Context, entityID uuid.UUID, mappingID, sourceID string, entityType integration.EntityType) (*catalog.Entity, error)
	UnlinkEntity(ctx context.Context, entityID uuid.UUID) (*catalog.Entity, error)
	LinkOption(ctx context.Context, productID, optionID uuid.UUID, mappingID string, entityType integration.EntityType) (*catalog.Entity, error)
	UnlinkOption(ctx context.Context, productID, optionID uuid.UUID) (*catalog.Entity, error)
	SetCalculation(ctx context.Context, entityID uuid.UUID, field string, calc integration.Calculation) (*catalog.Entity, error)
	ClearCalculation(ctx context.Context, entityID uuid.UUID, field string) (*catalog.Entity, error)
	SetOptionCalculation(ctx context.Context, productID, optionID uuid.UUID, calc integration.Calculation) (*catalog.Entity, error)
	SetCalculationOverride(ctx context.Context, productID, optionID uuid.UUID, fixedPrice decimal.Decimal) (*catalog.Entity, error)
	ClearCalculationOverride(ctx context.Context, productID, optionID uuid.UUID) (*catalog.Entity, error)
	EnableLocalOverride(ctx context.Context, entityID uuid.UUID, field string, value catalog.Value) (*catalog.Entity, error)
	ClearLocalOverride(ctx context.Context, entityID uuid.UUID, field string) (*catalog.Entity, error)
	EnableSync(ctx context.Context, entityID uuid.UUID, field string) (*catalog.Entity, error)
	DisableSync(ctx context.Context, entityID uuid.UUID, field string) (*catalog.Entity, error)
	AddFieldMapping(ctx context.Context, entityID uuid.UUID, field string, mapping integration.FieldMapping) (*catalog.Entity, error)
	RemoveFieldMapping(ctx context.Context, entityID uuid.UUID, field string, mapping integration.FieldMapping) (*catalog.Entity, error)
	SwitchActiveSource(ctx context.Context, entityID uuid.UUID, sourceID string) (*catalog.Entity, error)
}

// LinkHandler serves linkage mutations
type LinkHandler struct {
	BaseHandler
	links LinkManager
}

// NewLinkHandler creates a new LinkHandler
func NewLinkHandler(links LinkManager) *LinkHandler {
	return &LinkHandler{links: links}
}

// RegisterRoutes registers the linkage routes
func (h *LinkHandler) RegisterRoutes(rg *gin.RouterGroup) {
	entities := rg.Group("/entities/:id")
	{
		entities.POST("/link", h.LinkEntity)
		entities.DELETE("/link", h.UnlinkEntity)

		entities.PUT("/calculations/:field", h.SetCalculation)
		entities.DELETE("/calculations/:field", h.ClearCalculation)

		entities.PUT("/overrides/:field", h.EnableLocalOverride)
		entities.DELETE("/overrides/:field", h.ClearLocalOverride)

		entities.POST("/sync/:field/enable", h.EnableSync)
		entities.POST("/sync/:field/disable", h.DisableSync)

		entities.POST("/mappings/:field", h.AddFieldMapping)
		entities.DELETE("/mappings/:field", h.RemoveFieldMapping)

		entities.PUT("/active-source", h.SwitchActiveSource)
	}

	options := entities.Group("/options/:optionId")
	{
		options.POST("/link", h.LinkOption)
		options.DELETE("/link", h.UnlinkOption)
		options.PUT("/calculation", h.SetOptionCalculation)
		options.PUT("/calculation-override", h.SetCalculationOverride)
		options.DELETE("/calculation-override", h.ClearCalculationOverride)
	}
}

// respond writes the updated linkage of an entity or maps the error
func (h *LinkHandler) respond(c *gin.Context, entity *catalog.Entity, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, integrationapp.ToEntityLinkageResponse(entity))
}

// LinkEntity godoc
// @Summary      Link an entity
// @Description  Links an entity to an external record
// @Tags         linkage
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional)"
// @Param        id path string true "Entity ID" format(uuid)
// @Param        request body integrationapp.LinkEntityRequest true "External record to link"
// @Success      200 {object} dto.Response{data=integrationapp.EntityLinkageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/entities/{id}/link [post]
func (h *LinkHandler) LinkEntity(c *gin.Context) {
	id, ok := h.entityID(c)
	if !ok {
		return
	}
	var req integrationapp.LinkEntityRequest
	if !h.bindJSON(c, &req) {
		return
	}

	entity, err := h.links.LinkEntity(c.Request.Context(), id, req.MappingID, req.IntegrationSourceID, integration.EntityType(req.EntityType))
	h.respond(c, entity, err)
}

// UnlinkEntity godoc
// @Summary      Unlink an entity
// @Description  Removes the external link of an entity
// @Tags         linkage
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional)"
// @Param        id path string true "Entity ID" format(uuid)
// @Success      200 {object} dto.Response{data=integrationapp.EntityLinkageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/entities/{id}/link [delete]
func (h *LinkHandler) UnlinkEntity(c *gin.Context) {
	id, ok := h.entityID(c)
	if !ok {
		return
	}
	entity, err := h.links.UnlinkEntity(c.Request.Context(), id)
	h.respond(c, entity, err)
}

// LinkOption godoc
// @Summary      Link an option
// @Description  Links a product option to an external record
// @Tags         linkage
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional)"
// @Param        id path string true "Product ID" format(uuid)
// @Param        optionId path string true "Option ID" format(uuid)
// @Param        request body integrationapp.LinkOptionRequest true "External record to link"
// @Success      200 {object} dto.Response{data=integrationapp.EntityLinkageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/entities/{id}/options/{optionId}/link [post]
func (h *LinkHandler) LinkOption(c *gin.Context) {
	productID, optionID, ok := h.optionIDs(c)
	if !ok {
		return
	}
	var req integrationapp.LinkOptionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	entity, err := h.links.LinkOption(c.Request.Context(), productID, optionID, req.MappingID, integration.EntityType(req.EntityType))
	h.respond(c, entity, err)
}

// UnlinkOption godoc
// @Summary      Unlink an option
// @Description  Removes the link of a product option
// @Tags         linkage
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional)"
// @Param        id path string true "Product ID" format(uuid)
// @Param        optionId path string true "Option ID" format(uuid)
// @Success      200 {object} dto.Response{data=integrationapp.EntityLinkageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/entities/{id}/options/{optionId}/link [delete]
func (h *LinkHandler) UnlinkOption(c *gin.Context) {
	productID, optionID, ok := h.optionIDs(c)
	if !ok {
		return
	}
	entity, err := h.links.UnlinkOption(c.Request.Context(), productID, optionID)
	h.respond(c, entity, err)
}

// SetCalculation godoc
// @Summary      Set a field calculation
// @Description  Registers a calculation for an entity field
// @Tags         linkage
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional)"
// @Param        id path string true "Entity ID" format(uuid)
// @Param        field path string true "Field name"
// @Param        request body integrationapp.SetCalculationRequest true "Ordered calculation parts"
// @Success      200 {object} dto.Response{data=integrationapp.EntityLinkageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/entities/{id}/calculations/{field} [put]
func (h *LinkHandler) SetCalculation(c *gin.Context) {
	id, field, ok := h.entityField(c)
	if !ok {
		return
	}
	var req integrationapp.SetCalculationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	entity, err := h.links.SetCalculation(c.Request.Context(), id, field, req.ToCalculation())
	h.respond(c, entity, err)
}

// ClearCalculation godoc
// @Summary      Clear a field calculation
// @Description  Removes the calculation of an entity field
// @Tags         linkage
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional)"
// @Param        id path string true "Entity ID" format(uuid)
// @Param        field path string true "Field name"
// @Success      200 {object} dto.Response{data=integrationapp.EntityLinkageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/entities/{id}/calculations/{field} [delete]
func (h *LinkHandler) ClearCalculation(c *gin.Context) {
	id, field, ok := h.entityField(c)
	if !ok {
		return
	}
	entity, err := h.links.ClearCalculation(c.Request.Context(), id, field)
	h.respond(c, entity, err)
}

// SetOptionCalculation godoc
// @Summary      Set an option price calculation
// @Description  Registers the price calculation of an option
// @Tags         linkage
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional)"
// @Param        id path string true "Product ID" format(uuid)
// @Param        optionId path string true "Option ID" format(uuid)
// @Param        request body integrationapp.SetCalculationRequest true "Ordered calculation parts"
// @Success      200 {object} dto.Response{data=integrationapp.EntityLinkageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/entities/{id}/options/{optionId}/calculation [put]
func (h *LinkHandler) SetOptionCalculation(c *gin.Context) {
	productID, optionID, ok := h.optionIDs(c)
	if !ok {
		return
	}
	var req integrationapp.SetCalculationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	entity, err := h.links.SetOptionCalculation(c.Request.Context(), productID, optionID, req.ToCalculation())
	h.respond(c, entity, err)
}

// SetCalculationOverride godoc
// @Summary      Freeze an option price
// @Description  Freezes an option price
// @Tags         linkage
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional)"
// @Param        id path string true "Product ID" format(uuid)
// @Param        optionId path string true "Option ID" format(uuid)
// @Param        request body integrationapp.CalculationOverrideRequest true "Fixed price"
// @Success      200 {object} dto.Response{data=integrationapp.EntityLinkageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/entities/{id}/options/{optionId}/calculation-override [put]
func (h *LinkHandler) SetCalculationOverride(c *gin.Context) {
	productID, optionID, ok := h.optionIDs(c)
	if !ok {
		return
	}
	var req integrationapp.CalculationOverrideRequest
	if !h.bindJSON(c, &req) {
		return
	}

	entity, err := h.links.SetCalculationOverride(c.Request.Context(), productID, optionID, *req.Price)
	h.respond(c, entity, err)
}

// ClearCalculationOverride godoc
// @Summary      Release a frozen option price
// @Description  Returns an option price to its formula
// @Tags         linkage
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional)"
// @Param        id path string true "Product ID" format(uuid)
// @Param        optionId path string true "Option ID" format(uuid)
// @Success      200 {object} dto.Response{data=integrationapp.EntityLinkageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/entities/{id}/options/{optionId}/calculation-override [delete]
func (h *LinkHandler) ClearCalculationOverride(c *gin.Context) {
	productID, optionID, ok := h.optionIDs(c)
	if !ok {
		return
	}
	entity, err := h.links.ClearCalculationOverride(c.Request.Context(), productID, optionID)
	h.respond(c, entity, err)
}

// EnableLocalOverride godoc
// @Summary      Pin a field value
// @Description  Pins an entity field to a manual value
// @Tags         linkage
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional)"
// @Param        id path string true "Entity ID" format(uuid)
// @Param        field path string true "Field name"
// @Param        request body integrationapp.LocalOverrideRequest true "Manual value"
// @Success      200 {object} dto.Response{data=integrationapp.EntityLinkageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/entities/{id}/overrides/{field} [put]
func (h *LinkHandler) EnableLocalOverride(c *gin.Context) {
	id, field, ok := h.entityField(c)
	if !ok {
		return
	}
	var req integrationapp.LocalOverrideRequest
	if !h.bindJSON(c, &req) {
		return
	}
	value, err := req.ToValue()
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Value could not be decoded")
		return
	}

	entity, err := h.links.EnableLocalOverride(c.Request.Context(), id, field, value)
	h.respond(c, entity, err)
}

// ClearLocalOverride godoc
// @Summary      Release a pinned field
// @Description  Releases a pinned entity field
// @Tags         linkage
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional)"
// @Param        id path string true "Entity ID" format(uuid)
// @Param        field path string true "Field name"
// @Success      200 {object} dto.Response{data=integrationapp.EntityLinkageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/entities/{id}/overrides/{field} [delete]
func (h *LinkHandler) ClearLocalOverride(c *gin.Context) {
	id, field, ok := h.entityField(c)
	if !ok {
		return
	}
	entity, err := h.links.ClearLocalOverride(c.Request.Context(), id, field)
	h.respond(c, entity, err)
}

// EnableSync godoc
// @Summary      Resume field sync
// @Description  Resumes syncing an entity field
// @Tags         linkage
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional)"
// @Param        id path string true "Entity ID" format(uuid)
// @Param        field path string true "Field name"
// @Success      200 {object} dto.Response{data=integrationapp.EntityLinkageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/entities/{id}/sync/{field}/enable [post]
func (h *LinkHandler) EnableSync(c *gin.Context) {
	id, field, ok := h.entityField(c)
	if !ok {
		return
	}
	entity, err := h.links.EnableSync(c.Request.Context(), id, field)
	h.respond(c, entity, err)
}

// DisableSync godoc
// @Summary      Stop field sync
// @Description  Stops syncing an entity field
// @Tags         linkage
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional)"
// @Param        id path string true "Entity ID" format(uuid)
// @Param        field path string true "Field name"
// @Success      200 {object} dto.Response{data=integrationapp.EntityLinkageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/entities/{id}/sync/{field}/disable [post]
func (h *LinkHandler) DisableSync(c *gin.Context) {
	id, field, ok := h.entityField(c)
	if !ok {
		return
	}
	entity, err := h.links.DisableSync(c.Request.Context(), id, field)
	h.respond(c, entity, err)
}

// AddFieldMapping godoc
// @Summary      Add a field mapping
// @Description  Maps an entity field to an external field path
// @Tags         linkage
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional)"
// @Param        id path string true "Entity ID" format(uuid)
// @Param        field path string true "Field name"
// @Param        request body integrationapp.FieldMappingRequest true "Source and external field path"
// @Success      200 {object} dto.Response{data=integrationapp.EntityLinkageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/entities/{id}/mappings/{field} [post]
func (h *LinkHandler) AddFieldMapping(c *gin.Context) {
	id, field, ok := h.entityField(c)
	if !ok {
		return
	}
	var req integrationapp.FieldMappingRequest
	if !h.bindJSON(c, &req) {
		return
	}

	mapping := integration.FieldMapping{SourceID: req.SourceID, FieldPath: req.FieldPath}
	entity, err := h.links.AddFieldMapping(c.Request.Context(), id, field, mapping)
	h.respond(c, entity, err)
}

// RemoveFieldMapping godoc
// @Summary      Remove field mappings
// @Description  Removes one mapping of an entity field, or all of them when the request has no body
// @Tags         linkage
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional)"
// @Param        id path string true "Entity ID" format(uuid)
// @Param        field path string true "Field name"
// @Param        request body integrationapp.RemoveFieldMappingRequest false "Mapping to remove; omit to remove all"
// @Success      200 {object} dto.Response{data=integrationapp.EntityLinkageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/entities/{id}/mappings/{field} [delete]
func (h *LinkHandler) RemoveFieldMapping(c *gin.Context) {
	id, field, ok := h.entityField(c)
	if !ok {
		return
	}
	var req integrationapp.RemoveFieldMappingRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}

	mapping := integration.FieldMapping{SourceID: req.SourceID, FieldPath: req.FieldPath}
	entity, err := h.links.RemoveFieldMapping(c.Request.Context(), id, field, mapping)
	h.respond(c, entity, err)
}

// SwitchActiveSource godoc
// @Summary      Switch the active source
// @Description  Changes which integration source feeds an entity
// @Tags         linkage
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional)"
// @Param        id path string true "Entity ID" format(uuid)
// @Param        request body integrationapp.SwitchActiveSourceRequest true "Integration source"
// @Success      200 {object} dto.Response{data=integrationapp.EntityLinkageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/entities/{id}/active-source [put]
func (h *LinkHandler) SwitchActiveSource(c *gin.Context) {
	id, ok := h.entityID(c)
	if !ok {
		return
	}
	var req integrationapp.SwitchActiveSourceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	entity, err := h.links.SwitchActiveSource(c.Request.Context(), id, req.IntegrationSourceID)
	h.respond(c, entity, err)
}
