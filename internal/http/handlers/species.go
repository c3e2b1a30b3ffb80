package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/aquasync-backend/internal/http/response"
	"github.com/yungbote/aquasync-backend/internal/services"
)

type SpeciesHandler struct {
	speciesService services.SpeciesService
}

func NewSpeciesHandler(speciesService services.SpeciesService) *SpeciesHandler {
	return &SpeciesHandler{speciesService: speciesService}
}

// GET /api/species?water_type=&limit=&offset=
func (sh *SpeciesHandler) List(c *gin.Context) {
	limit, offset := pageParams(c, 50)
	list, total, err := sh.speciesService.List(c.Request.Context(), c.Query("water_type"), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"species": list,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// GET /api/species/:id
func (sh *SpeciesHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_species_id", err)
		return
	}
	sp, err := sh.speciesService.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"species": sp})
}

// POST /api/admin/species
func (sh *SpeciesHandler) Create(c *gin.Context) {
	var req services.SpeciesInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	sp, err := sh.speciesService.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"species": sp})
}

// PUT /api/admin/species/:id
func (sh *SpeciesHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_species_id", err)
		return
	}
	var req services.SpeciesInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	sp, err := sh.speciesService.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"species": sp})
}

// DELETE /api/admin/species/:id
func (sh *SpeciesHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_species_id", err)
		return
	}
	if err := sh.speciesService.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /api/admin/species/:id/image (multipart/form-data, field "file")
func (sh *SpeciesHandler) UploadImage(c *gin.Context) {
	const maxBytes = 15 << 20

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_species_id", err)
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "missing_file", err)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "open_file_failed", err)
		return
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "read_file_failed", err)
		return
	}
	if len(raw) > maxBytes {
		response.RespondError(c, http.StatusBadRequest, "file_too_large", nil)
		return
	}

	sp, err := sh.speciesService.UploadImage(c.Request.Context(), id, fh.Filename, raw)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"species": sp})
}

// POST /api/admin/card-renders
// Queues a sweep that renders placeholder cards for species without imagery.
func (sh *SpeciesHandler) EnqueueCardRender(c *gin.Context) {
	job, err := sh.speciesService.EnqueueCardRender(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"job": job})
}
