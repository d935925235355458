package user

import (
	"github.com/gin-gonic/gin"

	"convo/internal/handler"
	"convo/internal/service"
)

// CreateRequest 创建用户请求
type CreateRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`     // 用户名（必填，3-50字符）
	Email    string `json:"email" binding:"required,email,max=100"`       // 邮箱（必填）
	Password string `json:"password,omitempty" binding:"omitempty,min=6"` // 密码（可选，至少6位）
}

// Create 创建用户
// @Summary      创建用户
// @Description  用户名与邮箱全局唯一，冲突时返回 400
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request  body      CreateRequest  true  "创建请求"
// @Success      200      {object}  response.Body[model.User]
// @Failure      400      {object}  response.Body[any]
// @Failure      422      {object}  response.Body[[]handler.FieldError]
// @Router       /api/users/ [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	user, err := h.userService.Create(c.Request.Context(), service.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, user)
}
