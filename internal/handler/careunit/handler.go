package careunit

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meditrack/ward-api/internal/handler"
	"github.com/meditrack/ward-api/internal/model"
	"github.com/meditrack/ward-api/internal/service/careunit"
)

type Handler struct {
	service careunit.Service
}

func NewHandler(service careunit.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	units := r.Group("/care-units")
	{
		units.POST("", h.CreateCareUnit)
		units.GET("", h.ListCareUnits)
		units.GET("/:id", h.GetCareUnit)
		units.PUT("/:id", h.UpdateCareUnit)
		units.DELETE("/:id", h.DeleteCareUnit)

		units.POST("/:id/beds", h.CreateBed)
		units.GET("/:id/beds", h.ListBeds)
		units.DELETE("/:id/beds/:bedId", h.DeleteBed)
	}
}

func (h *Handler) CreateCareUnit(c *gin.Context) {
	var req model.CreateCareUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	unit, err := h.service.Create(c.Request.Context(), &req, handler.ActorID(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(unit))
}

func (h *Handler) ListCareUnits(c *gin.Context) {
	units, err := h.service.List(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(units))
}

func (h *Handler) GetCareUnit(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	unit, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(unit))
}

func (h *Handler) UpdateCareUnit(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateCareUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	unit, err := h.service.Update(c.Request.Context(), id, &req, handler.ActorID(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(unit))
}

func (h *Handler) DeleteCareUnit(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	result, err := h.service.Delete(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
}

func (h *Handler) CreateBed(c *gin.Context) {
	careUnitID, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	var req model.CreateBedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	bed, err := h.service.CreateBed(c.Request.Context(), careUnitID, &req, handler.ActorID(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(bed))
}

func (h *Handler) ListBeds(c *gin.Context) {
	careUnitID, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	beds, err := h.service.ListBeds(c.Request.Context(), careUnitID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(beds))
}

func (h *Handler) DeleteBed(c *gin.Context) {
	careUnitID, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}
	bedID, ok := handler.ParseID(c, "bedId")
	if !ok {
		return
	}

	if err := h.service.DeleteBed(c.Request.Context(), careUnitID, bedID); err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"message": "bed deleted"}))
}
