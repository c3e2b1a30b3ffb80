package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/aquasync-backend/internal/http/response"
	"github.com/yungbote/aquasync-backend/internal/services"
)

type DatasetHandler struct {
	datasetService services.DatasetService
}

func NewDatasetHandler(datasetService services.DatasetService) *DatasetHandler {
	return &DatasetHandler{datasetService: datasetService}
}

// POST /api/admin/datasets
func (dh *DatasetHandler) Create(c *gin.Context) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	dataset, err := dh.datasetService.Create(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"dataset": dataset})
}

// GET /api/admin/datasets?status=&limit=&offset=
func (dh *DatasetHandler) List(c *gin.Context) {
	limit, offset := pageParams(c, 50)
	list, err := dh.datasetService.List(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"datasets": list})
}

// GET /api/admin/datasets/:id
func (dh *DatasetHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_dataset_id", err)
		return
	}
	detail, err := dh.datasetService.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, detail)
}

// PATCH /api/admin/datasets/:id/status
// body: { "status": "draft" | "ready" | "archived" }
func (dh *DatasetHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_dataset_id", err)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	dataset, err := dh.datasetService.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"dataset": dataset})
}

// DELETE /api/admin/datasets/:id
func (dh *DatasetHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_dataset_id", err)
		return
	}
	if err := dh.datasetService.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /api/admin/datasets/:id/images/from-capture
// body: { "capture_id": "...", "label": "..." }
func (dh *DatasetHandler) AddImageFromCapture(c *gin.Context) {
	datasetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_dataset_id", err)
		return
	}
	var req struct {
		CaptureID string `json:"capture_id"`
		Label     string `json:"label"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	captureID, err := uuid.Parse(req.CaptureID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_capture_id", err)
		return
	}
	img, err := dh.datasetService.AddImageFromCapture(c.Request.Context(), datasetID, captureID, req.Label)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"image": img})
}

// POST /api/admin/datasets/:id/images (multipart/form-data)
// file field "file"; form field "label".
func (dh *DatasetHandler) AddImageDirect(c *gin.Context) {
	const maxBytes = 15 << 20

	datasetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_dataset_id", err)
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

	img, err := dh.datasetService.AddImageDirect(c.Request.Context(), datasetID, c.PostForm("label"), fh.Filename, raw)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"image": img})
}

// GET /api/admin/datasets/:id/images?limit=&offset=
func (dh *DatasetHandler) ListImages(c *gin.Context) {
	datasetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_dataset_id", err)
		return
	}
	limit, offset := pageParams(c, 100)
	images, total, err := dh.datasetService.ListImages(c.Request.Context(), datasetID, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"images": images,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// DELETE /api/admin/datasets/:id/images/:image_id
func (dh *DatasetHandler) RemoveImage(c *gin.Context) {
	datasetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_dataset_id", err)
		return
	}
	imageID, err := uuid.Parse(c.Param("image_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_image_id", err)
		return
	}
	if err := dh.datasetService.RemoveImage(c.Request.Context(), datasetID, imageID); err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
