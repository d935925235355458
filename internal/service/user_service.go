package service

import (
	"context"
	"errors"
	"fmt"

	"convo/internal/model"
	"convo/internal/pkg/logger"
	"convo/internal/pkg/password"
	"convo/internal/pkg/response"
	"convo/internal/repository"
)

// UserService 用户服务
type UserService struct {
	users repository.UserRepository
}

// NewUserService 创建用户服务
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// CreateUserInput 创建用户参数
type CreateUserInput struct {
	Username string
	Email    string
	Password string
}

// Create 创建用户
// 唯一性由存储层约束保证，插入失败后再判断冲突字段
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*model.User, error) {
	hashed, err := password.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:       in.Username,
		Email:          in.Email,
		HashedPassword: hashed,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, s.duplicateError(ctx, 0, user)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	logger.Ctx(ctx).Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user created")
	return user, nil
}

// Get 获取用户
func (s *UserService) Get(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// List 分页查询用户
func (s *UserService) List(ctx context.Context, p Pagination) (response.Page[*model.User], error) {
	users, err := s.users.List(ctx, p.Offset, p.PageSize)
	if err != nil {
		return response.Page[*model.User]{}, fmt.Errorf("list users: %w", err)
	}
	total, err := s.users.Count(ctx)
	if err != nil {
		return response.Page[*model.User]{}, fmt.Errorf("count users: %w", err)
	}
	return response.NewPage(users, total, p.Page, p.PageSize), nil
}

// Update 部分更新用户
func (s *UserService) Update(ctx context.Context, id int64, patch model.UserPatch) (*model.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, user, patch); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, s.duplicateError(ctx, id, user)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// Delete 删除用户
func (s *UserService) Delete(ctx context.Context, id int64) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, user); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	logger.Ctx(ctx).Info().Int64("user_id", id).Msg("user deleted")
	return nil
}

// duplicateError 判断唯一约束冲突来自用户名还是邮箱
// selfID 为更新中的用户自身 ID，创建时为 0
// 两者都查不到占用者时（冲突行已被并发删除）返回 ErrUserExists
func (s *UserService) duplicateError(ctx context.Context, selfID int64, user *model.User) error {
	if existing, err := s.users.GetByUsername(ctx, user.Username); err == nil && existing.ID != selfID {
		return ErrUsernameExists
	}
	if existing, err := s.users.GetByEmail(ctx, user.Email); err == nil && existing.ID != selfID {
		return ErrEmailExists
	}
	return ErrUserExists
}
