// Package mongorepo 基于 MongoDB 的存储实现
//
// MongoDB 没有外键，消息写入前检查所属对话，删除对话时显式删除其消息。
package mongorepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"convo/internal/model"
	"convo/internal/pkg/mongodb"
	"convo/internal/repository"
)

const countersCollection = "counters"

// Store MongoDB 仓库集合
type Store struct {
	client        *mongodb.Client
	users         *UserRepo
	conversations *ConversationRepo
	messages      *MessageRepo
}

var _ repository.Store = (*Store)(nil)

// NewStore 创建 MongoDB 仓库集合
func NewStore(client *mongodb.Client) *Store {
	db := client.Database()
	return &Store{
		client:        client,
		users:         NewUserRepo(db),
		conversations: NewConversationRepo(db),
		messages:      NewMessageRepo(db),
	}
}

// Users 用户仓库
func (s *Store) Users() repository.UserRepository { return s.users }

// Conversations 对话仓库
func (s *Store) Conversations() repository.ConversationRepository { return s.conversations }

// Messages 消息仓库
func (s *Store) Messages() repository.MessageRepository { return s.messages }

// Migrate 创建索引
func (s *Store) Migrate(ctx context.Context) error {
	return mongodb.EnsureAllIndexes(ctx, s.client.Database(),
		userIndexes{}, conversationIndexes{}, messageIndexes{})
}

// Ping 检查连接
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

// Close 断开连接
func (s *Store) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

type userIndexes struct{ model.User }

func (userIndexes) Indexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetName("idx_users_username").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_users_email").SetUnique(true),
		},
	}
}

type conversationIndexes struct{ model.Conversation }

func (conversationIndexes) Indexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "updated_at", Value: -1}},
			Options: options.Index().SetName("idx_conversations_user_updated"),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("idx_conversations_updated"),
		},
	}
}

type messageIndexes struct{ model.Message }

func (messageIndexes) Indexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "conversation_id", Value: 1}, {Key: "created_at", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_messages_conversation_created"),
		},
	}
}

// translateError 将驱动错误归一为 repository 哨兵错误
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", repository.ErrDuplicate, err)
	}
	return err
}

// now BSON 日期只保留毫秒
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// setDoc 按 Apply 返回的列名构造 $set 文档
func setDoc(fields []string, values map[string]any) bson.M {
	set := bson.M{}
	for _, f := range fields {
		set[f] = values[f]
	}
	return set
}
