package user

import (
	"github.com/gin-gonic/gin"

	"convo/internal/handler"
)

// Delete 删除用户
// @Summary  删除用户
// @Tags     users
// @Produce  json
// @Param    id   path      int  true  "用户ID"
// @Success  200  {object}  response.Body[any]
// @Failure  404  {object}  response.Body[any]
// @Router   /api/users/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	userID, ok := handler.Int64Param(c, "id")
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), userID); err != nil {
		handler.Fail(c, err)
		return
	}
	handler.Empty(c)
}
