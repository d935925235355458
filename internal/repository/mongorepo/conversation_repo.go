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

// ConversationRepo 对话仓库
type ConversationRepo struct {
	collection *mongo.Collection
	messages   *mongo.Collection
}

// NewConversationRepo 创建对话仓库
func NewConversationRepo(db *mongo.Database) *ConversationRepo {
	return &ConversationRepo{
		collection: db.Collection(model.Conversation{}.Collection()),
		messages:   db.Collection(model.Message{}.Collection()),
	}
}

func conversationFilter(filter repository.ConversationFilter) bson.M {
	f := bson.M{}
	if filter.UserID != nil {
		f["user_id"] = *filter.UserID
	}
	return f
}

// GetByID 根据 ID 查询
func (r *ConversationRepo) GetByID(ctx context.Context, convID string) (*model.Conversation, error) {
	var conv model.Conversation
	if err := r.collection.FindOne(ctx, bson.M{"_id": convID}).Decode(&conv); err != nil {
		return nil, translateError(err)
	}
	return &conv, nil
}

// List 按最近更新排序分页查询
func (r *ConversationRepo) List(ctx context.Context, filter repository.ConversationFilter, offset, limit int) ([]*model.Conversation, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, conversationFilter(filter), opts)
	if err != nil {
		return nil, translateError(err)
	}
	defer cursor.Close(ctx)

	var convs []*model.Conversation
	if err := cursor.All(ctx, &convs); err != nil {
		return nil, translateError(err)
	}
	return convs, nil
}

// Count 统计对话数量
func (r *ConversationRepo) Count(ctx context.Context, filter repository.ConversationFilter) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, conversationFilter(filter))
	return n, translateError(err)
}

// Create 创建对话
func (r *ConversationRepo) Create(ctx context.Context, conv *model.Conversation) error {
	if conv.ID == "" {
		conv.ID = id.New()
	}
	ts := now()
	conv.CreatedAt = ts
	conv.UpdatedAt = ts
	_, err := r.collection.InsertOne(ctx, conv)
	return translateError(err)
}

// Update 部分更新
func (r *ConversationRepo) Update(ctx context.Context, conv *model.Conversation, patch model.ConversationPatch) error {
	fields := patch.Apply(conv, now())
	if len(fields) == 0 {
		return nil
	}
	set := setDoc(fields, map[string]any{
		"title":      conv.Title,
		"model_name": conv.ModelName,
		"extra_data": conv.ExtraData,
		"updated_at": conv.UpdatedAt,
	})
	res, err := r.collection.UpdateByID(ctx, conv.ID, bson.M{"$set": set})
	if err != nil {
		return translateError(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete 删除对话并删除其全部消息
// 先删消息再删对话，中途失败时重试即可收敛
func (r *ConversationRepo) Delete(ctx context.Context, conv *model.Conversation) error {
	if _, err := r.messages.DeleteMany(ctx, bson.M{"conversation_id": conv.ID}); err != nil {
		return translateError(err)
	}
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": conv.ID})
	return translateError(err)
}
