package workorder

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/abduss/fieldservice/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AlbumTemplateName is the template rendered by the album route.
const AlbumTemplateName = "album.html"

// AlbumTemplate renders the gallery of a folder.
var AlbumTemplate = template.Must(template.New(AlbumTemplateName).Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>Album: {{.Folder}}</title></head>
<body>
{{if .NotFound}}<h2>Folder '{{.Folder}}' not found.</h2>{{else}}<h2>Album: {{.Folder}}</h2>
<div style="display:flex;flex-wrap:wrap;gap:12px;">
{{range .Items}}<div>{{if eq .Kind "video"}}<video src="{{.URL}}" controls style="max-width:200px"{{if .ThumbnailURL}} poster="{{.ThumbnailURL}}"{{end}}></video>{{else}}<img src="{{.URL}}" style="max-width:200px">{{end}}<p>{{.Name}}</p></div>
{{end}}</div>{{end}}
</body></html>`))

// RegisterRoutes mounts work order and media endpoints under the provided router group.
func RegisterRoutes(group *gin.RouterGroup, service *Service, maxUploadBytes int64, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	handler := &httpHandler{service: service, maxUpload: maxUploadBytes, log: log}

	group.POST("/create-workorder/", handler.createWorkOrder)
	group.GET("/workorders", handler.listWorkOrders)
	group.GET("/workorder/:folder", handler.getWorkOrder)
	group.PUT("/workorder/", handler.replaceWorkOrder)
	group.DELETE("/workorder/:folder", handler.deleteWorkOrder)
	group.GET("/workorder/:folder/document", handler.document)
	group.POST("/workorder/:folder/thumbnails", handler.regenerateThumbnails)

	group.GET("/search-workorders/", handler.searchText)
	group.GET("/search-workorders/week", handler.searchWeek)

	group.POST("/upload-images/", handler.uploadMedia)
	group.GET("/list-Images", handler.listMedia)
	group.DELETE("/delete-Image", handler.removeMedia)
	group.GET("/media/:folder/:file", handler.serveMedia)
	group.GET("/album/:folder", handler.album)
}

type httpHandler struct {
	service   *Service
	maxUpload int64
	log       *zap.Logger
}

func (h *httpHandler) limitBody(c *gin.Context) {
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}
}

func (h *httpHandler) fail(c *gin.Context, err error, notFound, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
	case errors.Is(err, ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrCorruptMetadata):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Workorder metadata is not valid JSON"})
	default:
		logger.FromContext(c, h.log).Error(fallback, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func (h *httpHandler) createWorkOrder(c *gin.Context) {
	h.limitBody(c)

	folder := c.PostForm("folder_name")
	if folder == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "folder_name is required"})
		return
	}

	metadata, err := formPayload(c, "json_data", "json_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pdfHeader, err := c.FormFile("pdf_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pdf_file field is required"})
		return
	}
	pdf, err := pdfHeader.Open()
	if err != nil {
		h.fail(c, fmt.Errorf("open pdf upload: %w", err), "", "failed to create work order")
		return
	}
	defer pdf.Close()

	stored, err := h.service.Create(c.Request.Context(), folder, metadata, pdf)
	if err != nil {
		h.fail(c, err, "work order not found", "failed to create work order")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "workorder files uploaded", "folder": stored})
}

func (h *httpHandler) listWorkOrders(c *gin.Context) {
	folders, err := h.service.List(c.Request.Context())
	if err != nil {
		h.fail(c, err, "", "failed to list work orders")
		return
	}
	c.JSON(http.StatusOK, gin.H{"workorders": folders})
}

func (h *httpHandler) getWorkOrder(c *gin.Context) {
	rec, err := h.service.Read(c.Request.Context(), c.Param("folder"))
	if err != nil {
		h.fail(c, err, "Workorder not found", "failed to read work order")
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", rec.Metadata)
}

func (h *httpHandler) replaceWorkOrder(c *gin.Context) {
	h.limitBody(c)

	folder := c.PostForm("folder_name")
	if folder == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "folder_name is required"})
		return
	}
	metadata, err := formPayload(c, "updated_json", "updated_json")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.Replace(c.Request.Context(), folder, metadata); err != nil {
		h.fail(c, err, "Workorder folder not found", "failed to update work order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Workorder JSON successfully updated", "folder": folder})
}

func (h *httpHandler) deleteWorkOrder(c *gin.Context) {
	folder := c.Param("folder")
	if err := h.service.Delete(c.Request.Context(), folder); err != nil {
		h.fail(c, err, "Workorder not found", "failed to delete work order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Workorder '%s' deleted successfully.", folder)})
}

func (h *httpHandler) document(c *gin.Context) {
	info, err := h.service.Document(c.Request.Context(), c.Param("folder"))
	if err != nil {
		h.fail(c, err, "Document not found", "failed to inspect document")
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *httpHandler) regenerateThumbnails(c *gin.Context) {
	force := c.Query("force") == "true"
	results, err := h.service.RegenerateThumbnails(c.Request.Context(), c.Param("folder"), force)
	if err != nil {
		h.fail(c, err, "Folder not found", "failed to regenerate thumbnails")
		return
	}
	c.JSON(http.StatusOK, gin.H{"thumbnails": results})
}

func (h *httpHandler) searchText(c *gin.Context) {
	matches, err := h.service.SearchByText(c.Request.Context(), c.Query("query"))
	if err != nil {
		h.fail(c, err, "", "failed to search work orders")
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

func (h *httpHandler) searchWeek(c *gin.Context) {
	week, ok := c.GetQuery("week")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "week query parameter is required"})
		return
	}
	folders, err := h.service.SearchByWeek(c.Request.Context(), week)
	if err != nil {
		h.fail(c, err, "", "failed to search work orders")
		return
	}
	c.JSON(http.StatusOK, gin.H{"week": week, "workorders": folders})
}

func (h *httpHandler) uploadMedia(c *gin.Context) {
	h.limitBody(c)

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form is required"})
		return
	}
	folder := firstValue(form, "folder_name")
	if folder == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "folder_name is required"})
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "files field is required"})
		return
	}

	uploads := make([]Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			h.fail(c, fmt.Errorf("open upload %s: %w", fh.Filename, err), "", "failed to upload media")
			return
		}
		defer f.Close()
		uploads = append(uploads, Upload{Filename: fh.Filename, Body: f})
	}

	result, err := h.service.AddMedia(c.Request.Context(), folder, uploads)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) || len(result.Files) == 0 {
			h.fail(c, err, "work order not found", "failed to upload media")
			return
		}
		logger.FromContext(c, h.log).Error("upload partially failed", zap.String("folder", folder), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "some files could not be stored",
			"files":      result.Files,
			"thumbnails": result.Thumbnails,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Images uploaded",
		"files":      result.Files,
		"thumbnails": result.Thumbnails,
	})
}

func (h *httpHandler) listMedia(c *gin.Context) {
	folder := c.Query("folder_name")
	files, err := h.service.ListMedia(c.Request.Context(), folder)
	if err != nil {
		h.fail(c, err, "Folder not found", "failed to list media")
		return
	}
	urls := make([]string, 0, len(files))
	for _, f := range files {
		urls = append(urls, MediaURL(folder, f))
	}
	c.JSON(http.StatusOK, gin.H{"media": urls})
}

func (h *httpHandler) removeMedia(c *gin.Context) {
	folder := c.Query("folder_name")
	filename := c.Query("filename")
	if folder == "" || filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "folder_name and filename are required"})
		return
	}

	removed, err := h.service.RemoveMedia(c.Request.Context(), folder, filename)
	if err != nil {
		h.fail(c, err, "File not found", "failed to delete media")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Media deleted", "removed": removed})
}

func (h *httpHandler) serveMedia(c *gin.Context) {
	path, err := h.service.MediaPath(c.Param("folder"), c.Param("file"))
	if err != nil {
		h.fail(c, err, "file not found", "failed to read media")
		return
	}
	c.File(path)
}

func (h *httpHandler) album(c *gin.Context) {
	folder := c.Param("folder")
	items, err := h.service.Gallery(c.Request.Context(), folder)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidInput) {
			c.HTML(http.StatusNotFound, AlbumTemplateName, gin.H{"Folder": folder, "NotFound": true})
			return
		}
		h.fail(c, err, "", "failed to render album")
		return
	}
	c.HTML(http.StatusOK, AlbumTemplateName, gin.H{"Folder": folder, "Items": items})
}

// formPayload reads a metadata document sent either as a text field or as a file part.
func formPayload(c *gin.Context, textField, fileField string) ([]byte, error) {
	if text, ok := c.GetPostForm(textField); ok && strings.TrimSpace(text) != "" {
		return []byte(text), nil
	}
	fh, err := c.FormFile(fileField)
	if err != nil {
		return nil, fmt.Errorf("%s field is required", textField)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fileField, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fileField, err)
	}
	return data, nil
}

func firstValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}
