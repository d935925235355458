package user

import (
	"github.com/gin-gonic/gin"

	"convo/internal/handler"
	"convo/internal/model"
)

// UpdateRequest 更新用户请求，只更新出现的字段
type UpdateRequest struct {
	Username model.Optional[string] `json:"username" swaggertype:"string"`
	Email    model.Optional[string] `json:"email" swaggertype:"string"`
}

func (r *UpdateRequest) validate() []handler.FieldError {
	return handler.Collect(
		handler.CheckOptional("username", r.Username.Value, r.Username.Set, false, "min=3,max=50"),
		handler.CheckOptional("email", r.Email.Value, r.Email.Set, false, "email,max=100"),
	)
}

// Update 部分更新用户
// @Summary  更新用户
// @Tags     users
// @Accept   json
// @Produce  json
// @Param    id       path      int            true  "用户ID"
// @Param    request  body      UpdateRequest  true  "更新请求"
// @Success  200      {object}  response.Body[model.User]
// @Failure  400      {object}  response.Body[any]
// @Failure  404      {object}  response.Body[any]
// @Router   /api/users/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	userID, ok := handler.Int64Param(c, "id")
	if !ok {
		return
	}
	var req UpdateRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		handler.ValidationFailed(c, errs...)
		return
	}

	user, err := h.userService.Update(c.Request.Context(), userID, model.UserPatch{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, user)
}
