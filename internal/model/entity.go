package model

import (
	"time"

	"gorm.io/datatypes"
)

// MessageRole 消息角色
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// IsValid 检查角色是否有效
func (r MessageRole) IsValid() bool {
	return r == RoleSystem || r == RoleUser || r == RoleAssistant
}

// MessageStatus 消息状态，由调用方设置，系统不驱动状态流转
type MessageStatus string

const (
	StatusProcessing MessageStatus = "processing"
	StatusSuccess    MessageStatus = "success"
	StatusError      MessageStatus = "error"
)

// IsValid 检查状态是否有效
func (s MessageStatus) IsValid() bool {
	return s == StatusProcessing || s == StatusSuccess || s == StatusError
}

// Conversation 对话实体
// user_id 由调用方提供，不校验用户是否存在
type Conversation struct {
	ID        string            `gorm:"type:varchar(36);primaryKey" bson:"_id" json:"id"`
	UserID    string            `gorm:"size:64;not null;index:idx_conversations_user_updated,priority:1" bson:"user_id" json:"user_id"`
	Title     *string           `gorm:"size:255" bson:"title" json:"title"`
	ModelName *string           `gorm:"size:50" bson:"model_name" json:"model_name"`
	ExtraData datatypes.JSONMap `bson:"extra_data" json:"extra_data"`
	CreatedAt time.Time         `gorm:"not null" bson:"created_at" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;index:idx_conversations_user_updated,priority:2" bson:"updated_at" json:"updated_at"`

	// 删除对话时级联删除消息
	Messages []Message `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" bson:"-" json:"-"`
}

// TableName GORM 表名
func (Conversation) TableName() string { return "conversations" }

// Collection Mongo 集合名
func (Conversation) Collection() string { return "conversations" }

// Message 消息实体
type Message struct {
	ID             string            `gorm:"type:varchar(36);primaryKey" bson:"_id" json:"id"`
	ConversationID string            `gorm:"type:varchar(36);not null;index:idx_messages_conversation_created,priority:1" bson:"conversation_id" json:"conversation_id"`
	Role           MessageRole       `gorm:"size:20;not null" bson:"role" json:"role"`
	Content        string            `gorm:"type:text;not null" bson:"content" json:"content"`
	Status         MessageStatus     `gorm:"size:20;not null;default:success" bson:"status" json:"status"`
	ExtraData      datatypes.JSONMap `bson:"extra_data" json:"extra_data"`
	CreatedAt      time.Time         `gorm:"not null;index:idx_messages_conversation_created,priority:2" bson:"created_at" json:"created_at"`
}

// TableName GORM 表名
func (Message) TableName() string { return "messages" }

// Collection Mongo 集合名
func (Message) Collection() string { return "messages" }
