package mongorepo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"convo/internal/model"
	"convo/internal/pkg/id"
	"convo/internal/repository"
)

// MessageRepo 消息仓库
type MessageRepo struct {
	collection    *mongo.Collection
	conversations *mongo.Collection
}

// NewMessageRepo 创建消息仓库
func NewMessageRepo(db *mongo.Database) *MessageRepo {
	return &MessageRepo{
		collection:    db.Collection(model.Message{}.Collection()),
		conversations: db.Collection(model.Conversation{}.Collection()),
	}
}

// GetByID 根据 ID 查询
func (r *MessageRepo) GetByID(ctx context.Context, msgID string) (*model.Message, error) {
	var msg model.Message
	if err := r.collection.FindOne(ctx, bson.M{"_id": msgID}).Decode(&msg); err != nil {
		return nil, translateError(err)
	}
	return &msg, nil
}

// ListByConversation 按创建时间正序分页查询对话消息
func (r *MessageRepo) ListByConversation(ctx context.Context, conversationID string, offset, limit int) ([]*model.Message, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"conversation_id": conversationID}, opts)
	if err != nil {
		return nil, translateError(err)
	}
	defer cursor.Close(ctx)

	var msgs []*model.Message
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, translateError(err)
	}
	return msgs, nil
}

// CountByConversation 统计对话消息数量
func (r *MessageRepo) CountByConversation(ctx context.Context, conversationID string) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"conversation_id": conversationID})
	return n, translateError(err)
}

// Create 创建消息，所属对话不存在返回 repository.ErrNotFound
func (r *MessageRepo) Create(ctx context.Context, msg *model.Message) error {
	n, err := r.conversations.CountDocuments(ctx, bson.M{"_id": msg.ConversationID}, options.Count().SetLimit(1))
	if err != nil {
		return translateError(err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}

	if msg.ID == "" {
		msg.ID = id.New()
	}
	if msg.Status == "" {
		msg.Status = model.StatusSuccess
	}
	msg.CreatedAt = now()
	_, err = r.collection.InsertOne(ctx, msg)
	return translateError(err)
}

// Update 部分更新
func (r *MessageRepo) Update(ctx context.Context, msg *model.Message, patch model.MessagePatch) error {
	fields := patch.Apply(msg)
	if len(fields) == 0 {
		return nil
	}
	set := setDoc(fields, map[string]any{
		"content":    msg.Content,
		"status":     msg.Status,
		"extra_data": msg.ExtraData,
	})
	res, err := r.collection.UpdateByID(ctx, msg.ID, bson.M{"$set": set})
	if err != nil {
		return translateError(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete 删除消息
func (r *MessageRepo) Delete(ctx context.Context, msg *model.Message) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": msg.ID})
	return translateError(err)
}
