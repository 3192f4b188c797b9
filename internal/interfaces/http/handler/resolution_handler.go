package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	integrationapp "github.com/signage/backend/internal/application/integration"
	"github.com/signage/backend/internal/domain/catalog"
	"github.com/signage/backend/internal/domain/integration"
	"github.com/signage/backend/internal/interfaces/http/dto"
)

// FieldResolver resolves entity and option fields
type FieldResolver interface {
	LoadEntity(ctx context.Context, id uuid.UUID) (*catalog.Entity, error)
	ResolveAllFields(ctx context.Context, entity *catalog.Entity) map[string]integrationapp.ResolvedValue
	ResolveField(ctx context.Context, entity *catalog.Entity, field string) integrationapp.ResolvedValue
	SyncStatus(ctx context.Context, entity *catalog.Entity, field string) integration.FieldSyncStatus
	ResolveOptionByID(ctx context.Context, productID, optionID uuid.UUID, field string) (integrationapp.ResolvedValue, error)
	ClearCache(ctx context.Context) error
}

// ResolutionHandler serves resolved field values
type ResolutionHandler struct {
	BaseHandler
	resolver FieldResolver
}

// NewResolutionHandler creates a new ResolutionHandler
func NewResolutionHandler(resolver FieldResolver) *ResolutionHandler {
	return &ResolutionHandler{resolver: resolver}
}

// RegisterRoutes registers the resolution routes
func (h *ResolutionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	entities := rg.Group("/entities/:id")
	entities.GET("/fields", h.GetFields)
	entities.GET("/fields/:field", h.GetField)
	entities.GET("/options/:optionId/fields/:field", h.GetOptionField)

	rg.POST("/cache/clear", h.ClearCache)
}

// GetFields godoc
// @Summary      Resolve all fields
// @Description  Resolve every field of an entity with its provenance
// @Tags         resolution
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional)"
// @Param        id path string true "Entity ID" format(uuid)
// @Success      200 {object} dto.Response{data=integrationapp.EntityFieldsResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/entities/{id}/fields [get]
func (h *ResolutionHandler) GetFields(c *gin.Context) {
	id, ok := h.entityID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	entity, err := h.resolver.LoadEntity(ctx, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, integrationapp.EntityFieldsResponse{
		EntityID: entity.ID,
		Fields:   h.resolver.ResolveAllFields(ctx, entity),
	})
}

// GetField godoc
// @Summary      Resolve one field
// @Description  Resolve one field together with its sync status
// @Tags         resolution
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional)"
// @Param        id path string true "Entity ID" format(uuid)
// @Param        field path string true "Field name"
// @Success      200 {object} dto.Response{data=integrationapp.ResolvedFieldResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/entities/{id}/fields/{field} [get]
func (h *ResolutionHandler) GetField(c *gin.Context) {
	id, field, ok := h.entityField(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	entity, err := h.resolver.LoadEntity(ctx, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resolved := h.resolver.ResolveField(ctx, entity, field)
	status := h.resolver.SyncStatus(ctx, entity, field)
	resp := integrationapp.NewResolvedFieldResponse(entity.ID, nil, field, resolved)
	resp.SyncStatus = &status
	h.Success(c, resp)
}

// GetOptionField godoc
// @Summary      Resolve an option field
// @Description  Resolve one field of a product option
// @Tags         resolution
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional)"
// @Param        id path string true "Product ID" format(uuid)
// @Param        optionId path string true "Option ID" format(uuid)
// @Param        field path string true "Field name"
// @Success      200 {object} dto.Response{data=integrationapp.ResolvedFieldResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/entities/{id}/options/{optionId}/fields/{field} [get]
func (h *ResolutionHandler) GetOptionField(c *gin.Context) {
	var req dto.OptionFieldRequest
	if !h.bindURI(c, &req) {
		return
	}
	productID := uuid.MustParse(req.ID)
	optionID := uuid.MustParse(req.OptionID)

	resolved, err := h.resolver.ResolveOptionByID(c.Request.Context(), productID, optionID, req.Field)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, integrationapp.NewResolvedFieldResponse(productID, &optionID, req.Field, resolved))
}

// ClearCache godoc
// @Summary      Clear caches
// @Description  Drop every cached external record and entity
// @Tags         resolution
// @Produce      json
// @Success      200 {object} dto.Response
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/cache/clear [post]
func (h *ResolutionHandler) ClearCache(c *gin.Context) {
	if err := h.resolver.ClearCache(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"cleared": true})
}
