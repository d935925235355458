package gormrepo

import (
	"context"

	"gorm.io/gorm"

	"convo/internal/model"
)

// UserRepo 用户仓库
type UserRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建用户仓库
func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// GetByID 根据 ID 查询
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// GetByUsername 根据用户名查询
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// GetByEmail 根据邮箱查询
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// List 按插入顺序分页查询
func (r *UserRepo) List(ctx context.Context, offset, limit int) ([]*model.User, error) {
	var users []*model.User
	if err := r.db.WithContext(ctx).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, translateError(err)
	}
	return users, nil
}

// Count 统计用户数量
func (r *UserRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Count(&count).Error; err != nil {
		return 0, translateError(err)
	}
	return count, nil
}

// Create 创建用户，唯一约束冲突返回 repository.ErrDuplicate
func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	ts := now()
	user.CreatedAt = ts
	user.UpdatedAt = ts
	return translateError(r.db.WithContext(ctx).Create(user).Error)
}

// Update 部分更新，只写入补丁中出现的列
func (r *UserRepo) Update(ctx context.Context, user *model.User, patch model.UserPatch) error {
	fields := patch.Apply(user, now())
	if len(fields) == 0 {
		return nil
	}
	return translateError(r.db.WithContext(ctx).Model(user).Select(fields).Updates(user).Error)
}

// Delete 删除用户
func (r *UserRepo) Delete(ctx context.Context, user *model.User) error {
	return translateError(r.db.WithContext(ctx).Delete(user).Error)
}
