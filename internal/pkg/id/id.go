package id

import (
	"github.com/google/uuid"
)

// New 生成新的 UUID（string 格式）
// 使用 UUIDv7，按生成时间单调递增，同一毫秒内插入的记录仍能按 ID 排序
func New() string {
	u, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return u.String()
}

// IsValid 验证UUID格式是否有效
func IsValid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Normalize 将合法 UUID 统一为小写带连字符格式
func Normalize(id string) (string, bool) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return u.String(), true
}
