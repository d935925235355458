package service

import "convo/internal/pkg/bizerr"

// 业务错误，消息文本即响应中的 msg
var (
	ErrUserNotFound         = bizerr.NotFound("User not found")
	ErrConversationNotFound = bizerr.NotFound("Conversation not found")
	ErrMessageNotFound      = bizerr.NotFound("Message not found")
	ErrUsernameExists       = bizerr.BadRequest("Username already exists")
	ErrEmailExists          = bizerr.BadRequest("Email already exists")
	ErrUserExists           = bizerr.BadRequest("User already exists")
)
