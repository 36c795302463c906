package logo

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meditrack/ward-api/internal/handler"
	"github.com/meditrack/ward-api/internal/model"
	"github.com/meditrack/ward-api/internal/service/logo"
)

type Handler struct {
	service logo.Service
}

func NewHandler(service logo.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	logos := r.Group("/hospital-logo")
	{
		logos.POST("", h.UploadLogo)
		logos.GET("", h.GetActiveLogo)
		logos.GET("/:id", h.GetLogo)
		logos.PUT("/:id", h.UpdateLogo)
		logos.DELETE("", h.DeleteActiveLogo)
	}
}

func (h *Handler) UploadLogo(c *gin.Context) {
	file, err := c.FormFile("logo")
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("logo file is required"))
		return
	}

	src, err := file.Open()
	if err != nil {
		handler.Error(c, err)
		return
	}
	defer src.Close()

	uploaded, err := h.service.Upload(
		c.Request.Context(),
		file.Filename,
		file.Header.Get("Content-Type"),
		file.Size,
		src,
		handler.ActorID(c),
	)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(uploaded))
}

func (h *Handler) GetActiveLogo(c *gin.Context) {
	active, err := h.service.GetActive(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(active))
}

func (h *Handler) GetLogo(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	found, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(found))
}

func (h *Handler) UpdateLogo(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateLogoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	updated, err := h.service.SetActive(c.Request.Context(), id, req.IsActive, handler.ActorID(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) DeleteActiveLogo(c *gin.Context) {
	if err := h.service.DeleteActive(c.Request.Context()); err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"message": "logo deleted"}))
}
