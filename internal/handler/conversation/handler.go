package conversation

import (
	"github.com/gin-gonic/gin"

	"convo/internal/handler"
	"convo/internal/model"
	"convo/internal/service"
)

// Handler 对话处理器
type Handler struct {
	conversationService *service.ConversationService
}

// NewHandler 创建对话处理器
func NewHandler(conversationService *service.ConversationService) *Handler {
	return &Handler{
		conversationService: conversationService,
	}
}

// CreateRequest 创建对话请求
type CreateRequest struct {
	UserID    *string        `json:"user_id" binding:"required,max=64"` // 允许空串，只要求字段出现
	Title     *string        `json:"title" binding:"omitempty,max=255"`
	ModelName *string        `json:"model_name" binding:"omitempty,max=50"`
	ExtraData map[string]any `json:"extra_data"`
}

// UpdateRequest 更新对话请求，字段显式传 null 表示清空
type UpdateRequest struct {
	Title     model.Optional[string]         `json:"title" swaggertype:"string"`
	ModelName model.Optional[string]         `json:"model_name" swaggertype:"string"`
	ExtraData model.Optional[map[string]any] `json:"extra_data" swaggertype:"object"`
}

// ListQuery 列表过滤条件
type ListQuery struct {
	UserID *string `form:"user_id" binding:"omitempty,max=64"`
}

// Create 创建对话
// @Summary  创建对话
// @Tags     conversations
// @Accept   json
// @Produce  json
// @Param    request  body      CreateRequest  true  "创建请求"
// @Success  200      {object}  response.Body[model.Conversation]
// @Failure  422      {object}  response.Body[[]handler.FieldError]
// @Router   /api/conversations/ [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	conv, err := h.conversationService.Create(c.Request.Context(), service.CreateConversationInput{
		UserID:    *req.UserID,
		Title:     req.Title,
		ModelName: req.ModelName,
		ExtraData: req.ExtraData,
	})
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, conv)
}

// List 对话列表
// @Summary      对话列表
// @Description  按最近更新倒序，可按 user_id 过滤
// @Tags         conversations
// @Produce      json
// @Param        user_id    query     string  false  "所属用户"
// @Param        page       query     int     false  "页码"  default(1)
// @Param        page_size  query     int     false  "每页数量"  default(20)
// @Success      200        {object}  response.Body[response.Page[model.Conversation]]
// @Router       /api/conversations/ [get]
func (h *Handler) List(c *gin.Context) {
	var q ListQuery
	if !handler.BindQuery(c, &q) {
		return
	}
	p, ok := handler.Pagination(c)
	if !ok {
		return
	}

	page, err := h.conversationService.List(c.Request.Context(), q.UserID, p)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, page)
}

// Get 获取对话
// @Summary  获取对话
// @Tags     conversations
// @Produce  json
// @Param    id   path      string  true  "对话ID"
// @Success  200  {object}  response.Body[model.Conversation]
// @Failure  404  {object}  response.Body[any]
// @Router   /api/conversations/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	convID, ok := handler.UUIDParam(c, "id")
	if !ok {
		return
	}

	conv, err := h.conversationService.Get(c.Request.Context(), convID)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, conv)
}

// Update 部分更新对话
// @Summary  更新对话
// @Tags     conversations
// @Accept   json
// @Produce  json
// @Param    id       path      string         true  "对话ID"
// @Param    request  body      UpdateRequest  true  "更新请求"
// @Success  200      {object}  response.Body[model.Conversation]
// @Failure  404      {object}  response.Body[any]
// @Router   /api/conversations/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	convID, ok := handler.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	if errs := handler.Collect(
		handler.CheckOptional("title", req.Title.Value, req.Title.Set, true, "max=255"),
		handler.CheckOptional("model_name", req.ModelName.Value, req.ModelName.Set, true, "max=50"),
	); len(errs) > 0 {
		handler.ValidationFailed(c, errs...)
		return
	}

	conv, err := h.conversationService.Update(c.Request.Context(), convID, model.ConversationPatch{
		Title:     req.Title,
		ModelName: req.ModelName,
		ExtraData: req.ExtraData,
	})
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, conv)
}

// Delete 删除对话及其消息
// @Summary  删除对话
// @Tags     conversations
// @Produce  json
// @Param    id   path      string  true  "对话ID"
// @Success  200  {object}  response.Body[any]
// @Failure  404  {object}  response.Body[any]
// @Router   /api/conversations/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	convID, ok := handler.UUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.conversationService.Delete(c.Request.Context(), convID); err != nil {
		handler.Fail(c, err)
		return
	}
	handler.Empty(c)
}
