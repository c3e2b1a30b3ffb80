package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/aquasync-backend/internal/http/response"
	"github.com/yungbote/aquasync-backend/internal/services"
)

type CompatHandler struct {
	compatService services.CompatService
}

func NewCompatHandler(compatService services.CompatService) *CompatHandler {
	return &CompatHandler{compatService: compatService}
}

// GET /api/species/:id/tankmates
func (ch *CompatHandler) Tankmates(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_species_id", err)
		return
	}
	view, err := ch.compatService.Tankmates(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"tankmates": view})
}

// GET /api/compatibility?a=<name>&b=<name>
func (ch *CompatHandler) VerdictByPair(c *gin.Context) {
	a := strings.TrimSpace(c.Query("a"))
	b := strings.TrimSpace(c.Query("b"))
	if a == "" || b == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_request",
			fmt.Errorf("query parameters a and b are both required"))
		return
	}
	verdict, err := ch.compatService.VerdictByPair(c.Request.Context(), a, b)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"verdict": verdict})
}
