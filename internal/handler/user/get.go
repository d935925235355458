package user

import (
	"github.com/gin-gonic/gin"

	"convo/internal/handler"
)

// Get 获取用户
// @Summary  获取用户
// @Tags     users
// @Produce  json
// @Param    id   path      int  true  "用户ID"
// @Success  200  {object}  response.Body[model.User]
// @Failure  404  {object}  response.Body[any]
// @Router   /api/users/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	userID, ok := handler.Int64Param(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.Get(c.Request.Context(), userID)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, user)
}
