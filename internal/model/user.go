package model

import (
	"time"
)

// User 用户实体
// username 与 email 在存储层有唯一约束
type User struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" bson:"_id" json:"id"`
	Username       string    `gorm:"size:50;not null;uniqueIndex:idx_users_username" bson:"username" json:"username"`
	Email          string    `gorm:"size:100;not null;uniqueIndex:idx_users_email" bson:"email" json:"email"`
	HashedPassword string    `gorm:"size:255;not null;default:''" bson:"hashed_password" json:"-"` // 密码（加密存储，不返回）
	CreatedAt      time.Time `gorm:"not null" bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" bson:"updated_at" json:"updated_at"`
}

// TableName GORM 表名
func (User) TableName() string { return "users" }

// Collection Mongo 集合名
func (User) Collection() string { return "users" }
