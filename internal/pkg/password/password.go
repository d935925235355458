package password

import (
	"golang.org/x/crypto/bcrypt"
)

// MinLength 明文密码最小长度
const MinLength = 6

// Hash 加密密码，空密码返回空串（用户未设置密码）
func Hash(password string) (string, error) {
	if password == "" {
		return "", nil
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify 验证密码
func Verify(password, hash string) bool {
	if hash == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
