package gormrepo

import (
	"context"

	"gorm.io/gorm"

	"convo/internal/model"
	"convo/internal/pkg/id"
	"convo/internal/repository"
)

// ConversationRepo 对话仓库
type ConversationRepo struct {
	db *gorm.DB
}

// NewConversationRepo 创建对话仓库
func NewConversationRepo(db *gorm.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// GetByID 根据 ID 查询
func (r *ConversationRepo) GetByID(ctx context.Context, convID string) (*model.Conversation, error) {
	var conv model.Conversation
	if err := r.db.WithContext(ctx).First(&conv, "id = ?", convID).Error; err != nil {
		return nil, translateError(err)
	}
	return &conv, nil
}

func (r *ConversationRepo) filtered(ctx context.Context, filter repository.ConversationFilter) *gorm.DB {
	tx := r.db.WithContext(ctx).Model(&model.Conversation{})
	if filter.UserID != nil {
		tx = tx.Where("user_id = ?", *filter.UserID)
	}
	return tx
}

// List 按最近更新排序分页查询
func (r *ConversationRepo) List(ctx context.Context, filter repository.ConversationFilter, offset, limit int) ([]*model.Conversation, error) {
	var convs []*model.Conversation
	if err := r.filtered(ctx, filter).
		Order("updated_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&convs).Error; err != nil {
		return nil, translateError(err)
	}
	return convs, nil
}

// Count 统计对话数量
func (r *ConversationRepo) Count(ctx context.Context, filter repository.ConversationFilter) (int64, error) {
	var count int64
	if err := r.filtered(ctx, filter).Count(&count).Error; err != nil {
		return 0, translateError(err)
	}
	return count, nil
}

// Create 创建对话
func (r *ConversationRepo) Create(ctx context.Context, conv *model.Conversation) error {
	if conv.ID == "" {
		conv.ID = id.New()
	}
	ts := now()
	conv.CreatedAt = ts
	conv.UpdatedAt = ts
	return translateError(r.db.WithContext(ctx).Omit("Messages").Create(conv).Error)
}

// Update 部分更新
func (r *ConversationRepo) Update(ctx context.Context, conv *model.Conversation, patch model.ConversationPatch) error {
	fields := patch.Apply(conv, now())
	if len(fields) == 0 {
		return nil
	}
	return translateError(r.db.WithContext(ctx).Model(conv).Select(fields).Updates(conv).Error)
}

// Delete 删除对话，消息由关联删除与外键 ON DELETE CASCADE 共同保证清理
func (r *ConversationRepo) Delete(ctx context.Context, conv *model.Conversation) error {
	return translateError(r.db.WithContext(ctx).Select("Messages").Delete(conv).Error)
}
