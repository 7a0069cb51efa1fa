package partpics

import (
	"errors"
	"net/http"

	"github.com/abduss/fieldservice/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RegisterRoutes mounts part picture endpoints onto the router.
func RegisterRoutes(group *gin.RouterGroup, service *Service, maxUploadBytes int64, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	handler := &httpHandler{service: service, maxUpload: maxUploadBytes, log: log}

	group.POST("/parts-media/", handler.upload)
	group.GET("/parts-media/:file", handler.serve)
	group.GET("/parts-media/:file/url", handler.locate)
	group.DELETE("/parts-media/:file", handler.remove)
}

type httpHandler struct {
	service   *Service
	maxUpload int64
	log       *zap.Logger
}

func (h *httpHandler) upload(c *gin.Context) {
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field is required"})
		return
	}
	f, err := header.Open()
	if err != nil {
		h.fail(c, err, "failed to read upload")
		return
	}
	defer f.Close()

	name := c.PostForm("name")
	if name == "" {
		name = header.Filename
	}

	pic, err := h.service.Upload(c.Request.Context(), name, f, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		h.fail(c, err, "failed to store part picture")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Part picture uploaded", "picture": pic})
}

func (h *httpHandler) serve(c *gin.Context) {
	obj, err := h.service.Open(c.Request.Context(), c.Param("file"))
	if err != nil {
		h.fail(c, err, "failed to read part picture")
		return
	}
	defer obj.Body.Close()
	c.DataFromReader(http.StatusOK, obj.Size, obj.ContentType, obj.Body, nil)
}

func (h *httpHandler) locate(c *gin.Context) {
	pic, err := h.service.Locate(c.Request.Context(), c.Param("file"))
	if err != nil {
		h.fail(c, err, "failed to locate part picture")
		return
	}
	c.JSON(http.StatusOK, pic)
}

func (h *httpHandler) remove(c *gin.Context) {
	if err := h.service.Remove(c.Request.Context(), c.Param("file")); err != nil {
		h.fail(c, err, "failed to delete part picture")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Part picture deleted"})
}

func (h *httpHandler) fail(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Part picture not found"})
	case errors.Is(err, ErrInvalidName):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.FromContext(c, h.log).Error(fallback, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
