package service

import (
	"context"
	"errors"
	"fmt"

	"convo/internal/model"
	"convo/internal/pkg/cache"
	"convo/internal/pkg/logger"
	"convo/internal/pkg/response"
	"convo/internal/repository"
)

// ConversationService 对话服务
type ConversationService struct {
	conversations repository.ConversationRepository
	cache         *cache.ConversationCache // 可选，nil 时不缓存
}

// NewConversationService 创建对话服务
func NewConversationService(conversations repository.ConversationRepository, cc *cache.ConversationCache) *ConversationService {
	return &ConversationService{conversations: conversations, cache: cc}
}

// CreateConversationInput 创建对话参数
type CreateConversationInput struct {
	UserID    string
	Title     *string
	ModelName *string
	ExtraData map[string]any
}

// Create 创建对话，不校验 user_id 对应的用户是否存在
func (s *ConversationService) Create(ctx context.Context, in CreateConversationInput) (*model.Conversation, error) {
	conv := &model.Conversation{
		UserID:    in.UserID,
		Title:     in.Title,
		ModelName: in.ModelName,
		ExtraData: in.ExtraData,
	}
	if err := s.conversations.Create(ctx, conv); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	logger.Ctx(ctx).Info().Str("conversation_id", conv.ID).Str("user_id", conv.UserID).Msg("conversation created")
	return conv, nil
}

// Get 获取对话，启用缓存时先读缓存
func (s *ConversationService) Get(ctx context.Context, id string) (*model.Conversation, error) {
	if s.cache != nil {
		conv, err := s.cache.Get(ctx, id)
		if err == nil {
			return conv, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.Ctx(ctx).Warn().Err(err).Str("conversation_id", id).Msg("read conversation cache failed")
		}
	}

	conv, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, conv); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("conversation_id", id).Msg("write conversation cache failed")
		}
	}
	return conv, nil
}

// List 分页查询对话，userID 非空时只返回该用户的对话
func (s *ConversationService) List(ctx context.Context, userID *string, p Pagination) (response.Page[*model.Conversation], error) {
	filter := repository.ConversationFilter{UserID: userID}
	convs, err := s.conversations.List(ctx, filter, p.Offset, p.PageSize)
	if err != nil {
		return response.Page[*model.Conversation]{}, fmt.Errorf("list conversations: %w", err)
	}
	total, err := s.conversations.Count(ctx, filter)
	if err != nil {
		return response.Page[*model.Conversation]{}, fmt.Errorf("count conversations: %w", err)
	}
	return response.NewPage(convs, total, p.Page, p.PageSize), nil
}

// Update 部分更新对话
func (s *ConversationService) Update(ctx context.Context, id string, patch model.ConversationPatch) (*model.Conversation, error) {
	conv, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.conversations.Update(ctx, conv, patch); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("update conversation: %w", err)
	}
	s.refresh(ctx, conv)
	return conv, nil
}

// Delete 删除对话及其全部消息
func (s *ConversationService) Delete(ctx context.Context, id string) error {
	conv, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.conversations.Delete(ctx, conv); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	s.invalidate(ctx, id)
	logger.Ctx(ctx).Info().Str("conversation_id", id).Msg("conversation deleted")
	return nil
}

// load 绕过缓存直接读库
func (s *ConversationService) load(ctx context.Context, id string) (*model.Conversation, error) {
	conv, err := s.conversations.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return conv, nil
}

// refresh 用更新后的值覆盖缓存，写失败时退回删除
// 与之并发的 Get 仍可能写回旧值，最长保留一个 TTL
func (s *ConversationService) refresh(ctx context.Context, conv *model.Conversation) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, conv); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("conversation_id", conv.ID).Msg("refresh conversation cache failed")
		s.invalidate(ctx, conv.ID)
	}
}

func (s *ConversationService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("conversation_id", id).Msg("invalidate conversation cache failed")
	}
}
