package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/aquasync-backend/internal/http/response"
	"github.com/yungbote/aquasync-backend/internal/services"
)

type MatrixHandler struct {
	matrixService services.MatrixService
}

func NewMatrixHandler(matrixService services.MatrixService) *MatrixHandler {
	return &MatrixHandler{matrixService: matrixService}
}

// POST /api/admin/matrix-runs
func (mh *MatrixHandler) Trigger(c *gin.Context) {
	job, err := mh.matrixService.Trigger(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"job": job})
}

// GET /api/admin/matrix-runs?status=&limit=&offset=
func (mh *MatrixHandler) Runs(c *gin.Context) {
	limit, offset := pageParams(c, 25)
	runs, err := mh.matrixService.Runs(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"runs": runs})
}

// GET /api/admin/matrix-runs/:id
func (mh *MatrixHandler) Run(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_run_id", err)
		return
	}
	job, err := mh.matrixService.Run(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"run": job})
}

// GET /api/admin/matrix-report
// Serves the report attached to the most recent successful build.
func (mh *MatrixHandler) LatestReport(c *gin.Context) {
	report, err := mh.matrixService.LatestReport(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, report)
}
