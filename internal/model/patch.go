package model

import (
	"bytes"
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Optional 可选字段：Set 表示请求体中出现了该字段，Value 为 nil 表示显式传入 null
type Optional[T any] struct {
	Set   bool
	Value *T
}

// Some 构造已设置的可选值
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// Null 构造显式为 null 的可选值
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// IsNull 字段出现且为 null
func (o Optional[T]) IsNull() bool {
	return o.Set && o.Value == nil
}

// UnmarshalJSON 仅在字段出现时被调用，据此记录 Set
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// MarshalJSON 未设置或 null 均输出 null
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

// UserPatch 用户部分更新
type UserPatch struct {
	Username Optional[string] `json:"username"`
	Email    Optional[string] `json:"email"`
}

// Apply 将出现的字段合并到 u，返回被修改的列名
func (p UserPatch) Apply(u *User, now time.Time) []string {
	var fields []string
	if p.Username.Set && p.Username.Value != nil {
		u.Username = *p.Username.Value
		fields = append(fields, "username")
	}
	if p.Email.Set && p.Email.Value != nil {
		u.Email = *p.Email.Value
		fields = append(fields, "email")
	}
	if len(fields) > 0 {
		u.UpdatedAt = now
		fields = append(fields, "updated_at")
	}
	return fields
}

// ConversationPatch 对话部分更新，title/model_name/extra_data 可显式置空
type ConversationPatch struct {
	Title     Optional[string]         `json:"title"`
	ModelName Optional[string]         `json:"model_name"`
	ExtraData Optional[map[string]any] `json:"extra_data"`
}

// Apply 将出现的字段合并到 c，返回被修改的列名
func (p ConversationPatch) Apply(c *Conversation, now time.Time) []string {
	var fields []string
	if p.Title.Set {
		c.Title = p.Title.Value
		fields = append(fields, "title")
	}
	if p.ModelName.Set {
		c.ModelName = p.ModelName.Value
		fields = append(fields, "model_name")
	}
	if p.ExtraData.Set {
		c.ExtraData = jsonMap(p.ExtraData.Value)
		fields = append(fields, "extra_data")
	}
	if len(fields) > 0 {
		c.UpdatedAt = now
		fields = append(fields, "updated_at")
	}
	return fields
}

// MessagePatch 消息部分更新
type MessagePatch struct {
	Content   Optional[string]         `json:"content"`
	Status    Optional[MessageStatus]  `json:"status"`
	ExtraData Optional[map[string]any] `json:"extra_data"`
}

// Apply 将出现的字段合并到 m，返回被修改的列名
// 消息没有 updated_at 列
func (p MessagePatch) Apply(m *Message) []string {
	var fields []string
	if p.Content.Set && p.Content.Value != nil {
		m.Content = *p.Content.Value
		fields = append(fields, "content")
	}
	if p.Status.Set && p.Status.Value != nil {
		m.Status = *p.Status.Value
		fields = append(fields, "status")
	}
	if p.ExtraData.Set {
		m.ExtraData = jsonMap(p.ExtraData.Value)
		fields = append(fields, "extra_data")
	}
	return fields
}

func jsonMap(v *map[string]any) datatypes.JSONMap {
	if v == nil || *v == nil {
		return nil
	}
	return datatypes.JSONMap(*v)
}
