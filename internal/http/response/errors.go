package response

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/aquasync-backend/internal/platform/apierr"
)

// Error writes a service error using the status and code it carries; errors
// without one surface as a 500 internal_error.
func Error(c *gin.Context, err error) {
	ae := apierr.From(err)
	if ae == nil {
		return
	}
	RespondError(c, ae.Status, ae.Code, ae)
}
