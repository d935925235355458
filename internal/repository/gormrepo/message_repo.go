package gormrepo

import (
	"context"

	"gorm.io/gorm"

	"convo/internal/model"
	"convo/internal/pkg/id"
)

// MessageRepo 消息仓库
type MessageRepo struct {
	db *gorm.DB
}

// NewMessageRepo 创建消息仓库
func NewMessageRepo(db *gorm.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// GetByID 根据 ID 查询
func (r *MessageRepo) GetByID(ctx context.Context, msgID string) (*model.Message, error) {
	var msg model.Message
	if err := r.db.WithContext(ctx).First(&msg, "id = ?", msgID).Error; err != nil {
		return nil, translateError(err)
	}
	return &msg, nil
}

// ListByConversation 按创建时间正序分页查询对话消息
func (r *MessageRepo) ListByConversation(ctx context.Context, conversationID string, offset, limit int) ([]*model.Message, error) {
	var msgs []*model.Message
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&msgs).Error; err != nil {
		return nil, translateError(err)
	}
	return msgs, nil
}

// CountByConversation 统计对话消息数量
func (r *MessageRepo) CountByConversation(ctx context.Context, conversationID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("conversation_id = ?", conversationID).
		Count(&count).Error; err != nil {
		return 0, translateError(err)
	}
	return count, nil
}

// Create 创建消息，所属对话不存在时外键约束返回 repository.ErrNotFound
func (r *MessageRepo) Create(ctx context.Context, msg *model.Message) error {
	if msg.ID == "" {
		msg.ID = id.New()
	}
	if msg.Status == "" {
		msg.Status = model.StatusSuccess
	}
	msg.CreatedAt = now()
	return translateError(r.db.WithContext(ctx).Create(msg).Error)
}

// Update 部分更新
func (r *MessageRepo) Update(ctx context.Context, msg *model.Message, patch model.MessagePatch) error {
	fields := patch.Apply(msg)
	if len(fields) == 0 {
		return nil
	}
	return translateError(r.db.WithContext(ctx).Model(msg).Select(fields).Updates(msg).Error)
}

// Delete 删除消息
func (r *MessageRepo) Delete(ctx context.Context, msg *model.Message) error {
	return translateError(r.db.WithContext(ctx).Delete(msg).Error)
}
