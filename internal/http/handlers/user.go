package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/aquasync-backend/internal/http/response"
	"github.com/yungbote/aquasync-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GET /api/users/me
func (uh *UserHandler) GetMe(c *gin.Context) {
	me, err := uh.userService.GetMe(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": me})
}

// PATCH /api/users/me/name
// body: { "first_name": "...", "last_name": "..." }
func (uh *UserHandler) ChangeName(c *gin.Context) {
	var req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	u, err := uh.userService.UpdateName(c.Request.Context(), req.FirstName, req.LastName)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": u})
}

// POST /api/users/me/onboarding/complete
func (uh *UserHandler) CompleteOnboarding(c *gin.Context) {
	u, err := uh.userService.CompleteOnboarding(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": u})
}

// PATCH /api/users/me/plan
// body: { "plan": "free" | "premium" }
func (uh *UserHandler) ChangePlan(c *gin.Context) {
	var req struct {
		Plan string `json:"plan"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	u, err := uh.userService.UpdatePlan(c.Request.Context(), req.Plan)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": u})
}

// POST /api/users/me/avatar (multipart/form-data, field "file")
func (uh *UserHandler) UploadAvatar(c *gin.Context) {
	const maxBytes = 10 << 20

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

	u, err := uh.userService.UploadAvatarImage(c.Request.Context(), raw)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": u})
}

// GET /api/admin/users?limit=&offset=
func (uh *UserHandler) List(c *gin.Context) {
	limit, offset := pageParams(c, 50)
	users, err := uh.userService.List(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"users": users})
}

// pageParams reads limit/offset query values, falling back to defaultLimit
// and clamping anything non-positive or absurd.
func pageParams(c *gin.Context, defaultLimit int) (int, int) {
	limit := defaultLimit
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 200 {
		limit = 200
	}
	offset := 0
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			offset = n
		}
	}
	return limit, offset
}
