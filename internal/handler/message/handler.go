package message

import (
	"github.com/gin-gonic/gin"

	"convo/internal/handler"
	"convo/internal/model"
	"convo/internal/pkg/id"
	"convo/internal/service"
)

// Handler 消息处理器
type Handler struct {
	messageService *service.MessageService
}

// NewHandler 创建消息处理器
func NewHandler(messageService *service.MessageService) *Handler {
	return &Handler{
		messageService: messageService,
	}
}

// CreateRequest 创建消息请求
type CreateRequest struct {
	ConversationID string              `json:"conversation_id" binding:"required,uuid"`
	Role           model.MessageRole   `json:"role" binding:"required,oneof=system user assistant" enums:"system,user,assistant"`
	Content        *string             `json:"content" binding:"required"` // 允许空串，只要求字段出现
	Status         model.MessageStatus `json:"status" binding:"omitempty,oneof=processing success error" enums:"processing,success,error"`
	ExtraData      map[string]any      `json:"extra_data"`
}

// UpdateRequest 更新消息请求
// content 与 status 不可为 null，extra_data 传 null 表示清空
type UpdateRequest struct {
	Content   model.Optional[string]              `json:"content" swaggertype:"string"`
	Status    model.Optional[model.MessageStatus] `json:"status" swaggertype:"string"`
	ExtraData model.Optional[map[string]any]      `json:"extra_data" swaggertype:"object"`
}

// Create 创建消息
// @Summary      创建消息
// @Description  所属对话不存在时返回 404
// @Tags         messages
// @Accept       json
// @Produce      json
// @Param        request  body      CreateRequest  true  "创建请求"
// @Success      200      {object}  response.Body[model.Message]
// @Failure      404      {object}  response.Body[any]
// @Failure      422      {object}  response.Body[[]handler.FieldError]
// @Router       /api/messages/ [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	convID, _ := id.Normalize(req.ConversationID)

	msg, err := h.messageService.Create(c.Request.Context(), service.CreateMessageInput{
		ConversationID: convID,
		Role:           req.Role,
		Content:        *req.Content,
		Status:         req.Status,
		ExtraData:      req.ExtraData,
	})
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, msg)
}

// ListByConversation 对话消息列表
// @Summary  对话消息列表
// @Tags     messages
// @Produce  json
// @Param    conversation_id  path      string  true   "对话ID"
// @Param    page             query     int     false  "页码"  default(1)
// @Param    page_size        query     int     false  "每页数量"  default(20)
// @Success  200              {object}  response.Body[response.Page[model.Message]]
// @Failure  404              {object}  response.Body[any]
// @Router   /api/messages/conversation/{conversation_id} [get]
func (h *Handler) ListByConversation(c *gin.Context) {
	convID, ok := handler.UUIDParam(c, "conversation_id")
	if !ok {
		return
	}
	p, ok := handler.Pagination(c)
	if !ok {
		return
	}

	page, err := h.messageService.ListByConversation(c.Request.Context(), convID, p)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, page)
}

// Get 获取消息
// @Summary  获取消息
// @Tags     messages
// @Produce  json
// @Param    id   path      string  true  "消息ID"
// @Success  200  {object}  response.Body[model.Message]
// @Failure  404  {object}  response.Body[any]
// @Router   /api/messages/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	msgID, ok := handler.UUIDParam(c, "id")
	if !ok {
		return
	}

	msg, err := h.messageService.Get(c.Request.Context(), msgID)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, msg)
}

// Update 部分更新消息
// @Summary  更新消息
// @Tags     messages
// @Accept   json
// @Produce  json
// @Param    id       path      string         true  "消息ID"
// @Param    request  body      UpdateRequest  true  "更新请求"
// @Success  200      {object}  response.Body[model.Message]
// @Failure  404      {object}  response.Body[any]
// @Router   /api/messages/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	msgID, ok := handler.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	if errs := handler.Collect(
		handler.CheckOptional("content", req.Content.Value, req.Content.Set, false, ""),
		handler.CheckOptional("status", req.Status.Value, req.Status.Set, false, "oneof=processing success error"),
	); len(errs) > 0 {
		handler.ValidationFailed(c, errs...)
		return
	}

	msg, err := h.messageService.Update(c.Request.Context(), msgID, model.MessagePatch{
		Content:   req.Content,
		Status:    req.Status,
		ExtraData: req.ExtraData,
	})
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, msg)
}

// Delete 删除消息
// @Summary  删除消息
// @Tags     messages
// @Produce  json
// @Param    id   path      string  true  "消息ID"
// @Success  200  {object}  response.Body[any]
// @Failure  404  {object}  response.Body[any]
// @Router   /api/messages/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	msgID, ok := handler.UUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.messageService.Delete(c.Request.Context(), msgID); err != nil {
		handler.Fail(c, err)
		return
	}
	handler.Empty(c)
}
