package user

import (
	"github.com/gin-gonic/gin"

	"convo/internal/handler"
)

// List 用户列表
// @Summary      用户列表
// @Description  按创建顺序分页，也接受 skip/limit
// @Tags         users
// @Produce      json
// @Param        page       query     int  false  "页码"  default(1)
// @Param        page_size  query     int  false  "每页数量"  default(20)
// @Param        skip       query     int  false  "偏移量"
// @Param        limit      query     int  false  "数量"
// @Success      200        {object}  response.Body[response.Page[model.User]]
// @Router       /api/users/ [get]
func (h *Handler) List(c *gin.Context) {
	p, ok := handler.Pagination(c)
	if !ok {
		return
	}

	page, err := h.userService.List(c.Request.Context(), p)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, page)
}
