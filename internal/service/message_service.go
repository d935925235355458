package service

import (
	"context"
	"errors"
	"fmt"

	"convo/internal/model"
	"convo/internal/pkg/response"
	"convo/internal/repository"
)

// MessageService 消息服务
type MessageService struct {
	messages      repository.MessageRepository
	conversations repository.ConversationRepository
}

// NewMessageService 创建消息服务
func NewMessageService(messages repository.MessageRepository, conversations repository.ConversationRepository) *MessageService {
	return &MessageService{messages: messages, conversations: conversations}
}

// CreateMessageInput 创建消息参数
type CreateMessageInput struct {
	ConversationID string
	Role           model.MessageRole
	Content        string
	Status         model.MessageStatus // 为空时默认 success
	ExtraData      map[string]any
}

// Create 创建消息，所属对话必须存在
func (s *MessageService) Create(ctx context.Context, in CreateMessageInput) (*model.Message, error) {
	if err := s.ensureConversation(ctx, in.ConversationID); err != nil {
		return nil, err
	}

	msg := &model.Message{
		ConversationID: in.ConversationID,
		Role:           in.Role,
		Content:        in.Content,
		Status:         in.Status,
		ExtraData:      in.ExtraData,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		// 检查与写入之间对话被删除
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("create message: %w", err)
	}
	return msg, nil
}

// Get 获取消息
func (s *MessageService) Get(ctx context.Context, id string) (*model.Message, error) {
	msg, err := s.messages.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}
	return msg, nil
}

// ListByConversation 分页查询对话消息，对话不存在返回 404
func (s *MessageService) ListByConversation(ctx context.Context, conversationID string, p Pagination) (response.Page[*model.Message], error) {
	if err := s.ensureConversation(ctx, conversationID); err != nil {
		return response.Page[*model.Message]{}, err
	}
	msgs, err := s.messages.ListByConversation(ctx, conversationID, p.Offset, p.PageSize)
	if err != nil {
		return response.Page[*model.Message]{}, fmt.Errorf("list messages: %w", err)
	}
	total, err := s.messages.CountByConversation(ctx, conversationID)
	if err != nil {
		return response.Page[*model.Message]{}, fmt.Errorf("count messages: %w", err)
	}
	return response.NewPage(msgs, total, p.Page, p.PageSize), nil
}

// Update 部分更新消息
func (s *MessageService) Update(ctx context.Context, id string, patch model.MessagePatch) (*model.Message, error) {
	msg, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.messages.Update(ctx, msg, patch); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("update message: %w", err)
	}
	return msg, nil
}

// Delete 删除消息
func (s *MessageService) Delete(ctx context.Context, id string) error {
	msg, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.messages.Delete(ctx, msg); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

func (s *MessageService) ensureConversation(ctx context.Context, conversationID string) error {
	_, err := s.conversations.GetByID(ctx, conversationID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrConversationNotFound
	}
	if err != nil {
		return fmt.Errorf("get conversation: %w", err)
	}
	return nil
}
