package handlers

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/aquasync-backend/internal/http/response"
	"github.com/yungbote/aquasync-backend/internal/services"
)

type CaptureHandler struct {
	captureService services.CaptureService
}

func NewCaptureHandler(captureService services.CaptureService) *CaptureHandler {
	return &CaptureHandler{captureService: captureService}
}

// POST /api/captures (multipart/form-data)
// file field "photo"; optional form fields species_id, notes, location,
// captured_at (RFC 3339).
func (ch *CaptureHandler) Create(c *gin.Context) {
	const maxBytes = 15 << 20

	fh, err := c.FormFile("photo")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "missing_photo", err)
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

	input := services.CaptureInput{
		Notes:    c.PostForm("notes"),
		Location: c.PostForm("location"),
	}
	if v := strings.TrimSpace(c.PostForm("species_id")); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_species_id", err)
			return
		}
		input.SpeciesID = &id
	}
	if v := strings.TrimSpace(c.PostForm("captured_at")); v != "" {
		at, err := time.Parse(time.RFC3339, v)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_captured_at", err)
			return
		}
		input.CapturedAt = &at
	}

	capture, err := ch.captureService.Create(c.Request.Context(), input, fh.Filename, raw)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"capture": capture})
}

// GET /api/captures?limit=&offset=
func (ch *CaptureHandler) List(c *gin.Context) {
	limit, offset := pageParams(c, 50)
	list, total, err := ch.captureService.List(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"captures": list,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

// GET /api/captures/:id
func (ch *CaptureHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_capture_id", err)
		return
	}
	capture, err := ch.captureService.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"capture": capture})
}

// PATCH /api/captures/:id
func (ch *CaptureHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_capture_id", err)
		return
	}
	var req services.CaptureInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	capture, err := ch.captureService.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"capture": capture})
}

// DELETE /api/captures/:id
func (ch *CaptureHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_capture_id", err)
		return
	}
	if err := ch.captureService.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
