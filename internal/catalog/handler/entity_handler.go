package handler

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"medinfo-backend/internal/catalog"
	"medinfo-backend/internal/shared/middleware"
	"medinfo-backend/internal/shared/response"
	"medinfo-backend/internal/shared/utils"
)

// maxUploadMemory bounds the in-memory portion of multipart parsing.
const maxUploadMemory = 32 << 20

// EntityHandler is the one HTTP adapter shared by every catalog entity.
// Route shape and behavior come from the schema descriptor.
type EntityHandler struct {
	service *catalog.Service
	schema  catalog.Schema
}

func NewEntityHandler(service *catalog.Service) *EntityHandler {
	return &EntityHandler{
		service: service,
		schema:  service.Schema(),
	}
}

// RegisterRoutes mounts the entity routes on its API group. Reads are
// public (except where the schema says otherwise); every mutation is
// behind auth + admin.
func (h *EntityHandler) RegisterRoutes(api *gin.RouterGroup, auth, admin gin.HandlerFunc) {
	g := api.Group("/" + h.schema.APIPath)

	g.POST("/create", auth, admin, h.Create)
	g.PUT("/update/:id", auth, admin, h.Update)
	g.DELETE("/delete/:id", auth, admin, h.Delete)

	g.GET("/getAll", h.GetAll)

	if h.schema.HasOptions {
		g.GET("/options", h.Options)
	}
	if h.schema.LimitedDefault > 0 {
		g.GET("/getLimited", h.Limited)
	}
	if h.schema.DiscriminatorField != "" {
		g.GET("/category/:category", h.ByCategory)
	}

	// Registered last so fixed segments above win over the :id param.
	if h.schema.ReadOneRequiresAuth {
		g.GET("/:id", auth, h.GetByID)
	} else {
		g.GET("/:id", h.GetByID)
	}
}

// Create handles POST /api/<entity>/create (multipart form).
func (h *EntityHandler) Create(c *gin.Context) {
	input, files, err := h.parseForm(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	var actor *uuid.UUID
	if u := middleware.CurrentUser(c); u != nil {
		actor = &u.ID
	}

	doc, err := h.service.Create(c.Request.Context(), input, files, actor)
	if err != nil {
		status, msg := catalog.MapErrorToHTTP(err)
		response.Error(c, status, msg)
		return
	}

	response.Success(c, http.StatusCreated, fmt.Sprintf("%s created successfully", h.schema.Name), doc.Flatten())
}

// Update handles PUT /api/<entity>/update/:id (multipart form, partial).
func (h *EntityHandler) Update(c *gin.Context) {
	input, files, err := h.parseForm(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := h.service.Update(c.Request.Context(), c.Param("id"), input, files)
	if err != nil {
		status, msg := catalog.MapErrorToHTTP(err)
		response.Error(c, status, msg)
		return
	}

	response.Success(c, http.StatusOK, fmt.Sprintf("%s updated successfully", h.schema.Name), doc.Flatten())
}

// Delete handles DELETE /api/<entity>/delete/:id.
func (h *EntityHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		status, msg := catalog.MapErrorToHTTP(err)
		response.Error(c, status, msg)
		return
	}

	response.Success(c, http.StatusOK, fmt.Sprintf("%s deleted successfully", h.schema.Name), nil)
}

// GetByID handles GET /api/<entity>/:id.
func (h *EntityHandler) GetByID(c *gin.Context) {
	doc, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		status, msg := catalog.MapErrorToHTTP(err)
		response.Error(c, status, msg)
		return
	}

	response.Success(c, http.StatusOK, fmt.Sprintf("%s fetched successfully", h.schema.Name), doc)
}

// GetAll handles GET /api/<entity>/getAll with optional ?page=&limit=.
func (h *EntityHandler) GetAll(c *gin.Context) {
	opts := catalog.ListOptions{
		Page:  queryInt(c, "page"),
		Limit: queryInt(c, "limit"),
	}

	docs, err := h.service.List(c.Request.Context(), opts)
	if err != nil {
		status, msg := catalog.MapErrorToHTTP(err)
		response.Error(c, status, msg)
		return
	}

	response.Success(c, http.StatusOK, fmt.Sprintf("%s list fetched successfully", h.schema.Name), docs)
}

// ByCategory handles GET /api/<entity>/category/:category.
func (h *EntityHandler) ByCategory(c *gin.Context) {
	docs, err := h.service.List(c.Request.Context(), catalog.ListOptions{
		Category: c.Param("category"),
	})
	if err != nil {
		status, msg := catalog.MapErrorToHTTP(err)
		response.Error(c, status, msg)
		return
	}

	response.Success(c, http.StatusOK, fmt.Sprintf("%s list fetched successfully", h.schema.Name), docs)
}

// Limited handles GET /api/<entity>/getLimited.
func (h *EntityHandler) Limited(c *gin.Context) {
	docs, err := h.service.Limited(c.Request.Context())
	if err != nil {
		status, msg := catalog.MapErrorToHTTP(err)
		response.Error(c, status, msg)
		return
	}

	response.Success(c, http.StatusOK, fmt.Sprintf("%s list fetched successfully", h.schema.Name), docs)
}

// Options handles GET /api/<entity>/options.
func (h *EntityHandler) Options(c *gin.Context) {
	opts, err := h.service.Options(c.Request.Context())
	if err != nil {
		status, msg := catalog.MapErrorToHTTP(err)
		response.Error(c, status, msg)
		return
	}

	response.Success(c, http.StatusOK, fmt.Sprintf("%s options fetched successfully", h.schema.Name), opts)
}

// parseForm turns the request body into the service input map plus the
// uploaded files keyed by asset slot. Multipart is the primary shape;
// a JSON body works for entities without file fields.
func (h *EntityHandler) parseForm(c *gin.Context) (map[string]interface{}, map[string]catalog.FileUpload, error) {
	contentType := c.ContentType()
	if strings.HasPrefix(contentType, "application/json") {
		input := make(map[string]interface{})
		if err := c.ShouldBindJSON(&input); err != nil {
			return nil, nil, fmt.Errorf("invalid request body")
		}
		return input, nil, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid multipart form")
	}

	input := make(map[string]interface{})
	for key, values := range form.Value {
		if len(values) == 0 {
			continue
		}
		raw := values[0]

		if isListField(h.schema, key) {
			items, err := utils.ParseStringList(raw)
			if err != nil {
				return nil, nil, fmt.Errorf("invalid value for %s", key)
			}
			input[key] = items
			continue
		}

		if key == "isActive" {
			if b, err := strconv.ParseBool(raw); err == nil {
				input[key] = b
			}
			continue
		}

		input[key] = raw
	}

	files := make(map[string]catalog.FileUpload)
	for key, headers := range form.File {
		if len(headers) == 0 {
			continue
		}
		f, err := headers[0].Open()
		if err != nil {
			return nil, nil, fmt.Errorf("unable to read uploaded file %s", key)
		}
		data, err := io.ReadAll(io.LimitReader(f, maxUploadMemory))
		f.Close()
		if err != nil {
			return nil, nil, fmt.Errorf("unable to read uploaded file %s", key)
		}
		files[key] = catalog.FileUpload{Data: data, Filename: headers[0].Filename}
	}

	return input, files, nil
}

func isListField(s catalog.Schema, key string) bool {
	for _, f := range s.ListFields {
		if f == key {
			return true
		}
	}
	for _, r := range s.RefFields {
		if r.Many && r.Field == key {
			return true
		}
	}
	return false
}

func queryInt(c *gin.Context, key string) int {
	v := c.Query(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
