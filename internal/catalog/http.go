package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/abduss/fieldservice/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RegisterRoutes mounts part and travel endpoints onto the router.
func RegisterRoutes(group *gin.RouterGroup, service *Service, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	handler := &httpHandler{service: service, log: log}

	group.GET("/parts/", handler.searchParts)
	group.POST("/parts/", handler.createPart)
	group.GET("/parts/:id", handler.getPart)
	group.PUT("/parts/:id", handler.updatePart)
	group.DELETE("/parts/:id", handler.deletePart)

	group.GET("/travel-time/", handler.searchTravel)
	group.POST("/travel/", handler.createTravel)
	group.PUT("/travel/:id", handler.updateTravel)
	group.DELETE("/travel/:id", handler.deleteTravel)
}

type httpHandler struct {
	service *Service
	log     *zap.Logger
}

type partForm struct {
	Name       string   `form:"part_name" binding:"required"`
	Number     string   `form:"part_number"`
	UnitCost   *float64 `form:"unit_cost" binding:"required"`
	UnitPrice  *float64 `form:"unit_price" binding:"required"`
	PictureRef string   `form:"part_pic"`
}

func (f partForm) part(id int64) Part {
	return Part{ID: id, Name: f.Name, Number: f.Number, UnitCost: *f.UnitCost, UnitPrice: *f.UnitPrice, PictureRef: f.PictureRef}
}

type travelForm struct {
	Location string   `form:"location" binding:"required"`
	Hours    *float64 `form:"travel_time_hours" binding:"required"`
}

func (f travelForm) travel(id int64) Travel {
	return Travel{ID: id, Location: f.Location, Hours: *f.Hours}
}

func (h *httpHandler) searchParts(c *gin.Context) {
	parts, err := h.service.SearchParts(c.Request.Context(), c.Query("part_name"))
	if err != nil {
		h.fail(c, err, "failed to search parts")
		return
	}
	c.JSON(http.StatusOK, parts)
}

func (h *httpHandler) getPart(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	part, err := h.service.GetPart(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "failed to get part")
		return
	}
	c.JSON(http.StatusOK, part)
}

func (h *httpHandler) createPart(c *gin.Context) {
	var form partForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	part, err := h.service.CreatePart(c.Request.Context(), form.part(0))
	if err != nil {
		h.fail(c, err, "failed to add part")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Part added", "part": part})
}

func (h *httpHandler) updatePart(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var form partForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	part, err := h.service.UpdatePart(c.Request.Context(), form.part(id))
	if err != nil {
		h.fail(c, err, "failed to update part")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Part updated", "part": part})
}

func (h *httpHandler) deletePart(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.DeletePart(c.Request.Context(), id); err != nil {
		h.fail(c, err, "failed to delete part")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Part deleted"})
}

func (h *httpHandler) searchTravel(c *gin.Context) {
	location, ok := c.GetQuery("location")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location query parameter is required"})
		return
	}
	entries, err := h.service.SearchTravel(c.Request.Context(), location)
	if err != nil {
		h.fail(c, err, "failed to search travel times")
		return
	}
	out := make([]gin.H, 0, len(entries))
	for _, t := range entries {
		out = append(out, gin.H{"location": t.Location, "travel_time_hours": t.Hours})
	}
	c.JSON(http.StatusOK, out)
}

func (h *httpHandler) createTravel(c *gin.Context) {
	var form travelForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	entry, err := h.service.CreateTravel(c.Request.Context(), form.travel(0))
	if err != nil {
		h.fail(c, err, "failed to add travel entry")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Travel entry added", "travel": entry})
}

func (h *httpHandler) updateTravel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var form travelForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	entry, err := h.service.UpdateTravel(c.Request.Context(), form.travel(id))
	if err != nil {
		h.fail(c, err, "failed to update travel entry")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Travel entry updated", "travel": entry})
}

func (h *httpHandler) deleteTravel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteTravel(c.Request.Context(), id); err != nil {
		h.fail(c, err, "failed to delete travel entry")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Travel entry deleted"})
}

func (h *httpHandler) fail(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrPartNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Part not found"})
	case errors.Is(err, ErrTravelNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Travel entry not found"})
	case errors.Is(err, ErrTravelExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.FromContext(c, h.log).Error(fallback, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
