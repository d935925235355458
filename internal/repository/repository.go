// Package repository 定义各实体的数据访问接口（供 service 层依赖）
//
// 实现位于 gormrepo（sqlite/postgres）与 mongorepo（MongoDB）。
// 所有操作都是单次往返，不跨语句开启业务事务。
package repository

import (
	"context"
	"errors"

	"convo/internal/model"
)

var (
	// ErrNotFound 记录不存在；消息写入时所属对话不存在也归为此类
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate 违反唯一约束
	ErrDuplicate = errors.New("duplicate key")
)

// UserRepository 用户仓库接口
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// List 按插入顺序（id 升序）分页
	List(ctx context.Context, offset, limit int) ([]*model.User, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User, patch model.UserPatch) error
	Delete(ctx context.Context, user *model.User) error
}

// ConversationFilter 对话列表过滤条件
type ConversationFilter struct {
	UserID *string
}

// ConversationRepository 对话仓库接口
type ConversationRepository interface {
	GetByID(ctx context.Context, id string) (*model.Conversation, error)
	// List 按 updated_at 降序分页
	List(ctx context.Context, filter ConversationFilter, offset, limit int) ([]*model.Conversation, error)
	Count(ctx context.Context, filter ConversationFilter) (int64, error)
	Create(ctx context.Context, conv *model.Conversation) error
	Update(ctx context.Context, conv *model.Conversation, patch model.ConversationPatch) error
	// Delete 删除对话并级联删除其消息
	Delete(ctx context.Context, conv *model.Conversation) error
}

// MessageRepository 消息仓库接口
type MessageRepository interface {
	GetByID(ctx context.Context, id string) (*model.Message, error)
	// ListByConversation 按 created_at 升序分页
	ListByConversation(ctx context.Context, conversationID string, offset, limit int) ([]*model.Message, error)
	CountByConversation(ctx context.Context, conversationID string) (int64, error)
	Create(ctx context.Context, msg *model.Message) error
	Update(ctx context.Context, msg *model.Message, patch model.MessagePatch) error
	Delete(ctx context.Context, msg *model.Message) error
}

// Store 一组共享同一连接池的仓库
type Store interface {
	Users() UserRepository
	Conversations() ConversationRepository
	Messages() MessageRepository

	// Migrate 创建或升级表结构/索引
	Migrate(ctx context.Context) error
	// Ping 检查存储可用（就绪探针）
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
