package mongorepo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"convo/internal/model"
)

// UserRepo 用户仓库
type UserRepo struct {
	collection *mongo.Collection
	counters   *mongo.Collection
}

// NewUserRepo 创建用户仓库
func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{
		collection: db.Collection(model.User{}.Collection()),
		counters:   db.Collection(countersCollection),
	}
}

// nextID 从计数器集合分配自增 ID
func (r *UserRepo) nextID(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": model.User{}.Collection()},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.Seq, nil
}

func (r *UserRepo) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var user model.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// GetByID 根据 ID 查询
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByUsername 根据用户名查询
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

// GetByEmail 根据邮箱查询
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// List 按插入顺序分页查询
func (r *UserRepo) List(ctx context.Context, offset, limit int) ([]*model.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, translateError(err)
	}
	defer cursor.Close(ctx)

	var users []*model.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, translateError(err)
	}
	return users, nil
}

// Count 统计用户数量
func (r *UserRepo) Count(ctx context.Context) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{})
	return n, translateError(err)
}

// Create 创建用户，唯一索引冲突返回 repository.ErrDuplicate
func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	seq, err := r.nextID(ctx)
	if err != nil {
		return translateError(err)
	}
	ts := now()
	user.ID = seq
	user.CreatedAt = ts
	user.UpdatedAt = ts

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		user.ID = 0
		return translateError(err)
	}
	return nil
}

// Update 部分更新
func (r *UserRepo) Update(ctx context.Context, user *model.User, patch model.UserPatch) error {
	fields := patch.Apply(user, now())
	if len(fields) == 0 {
		return nil
	}
	set := setDoc(fields, map[string]any{
		"username":   user.Username,
		"email":      user.Email,
		"updated_at": user.UpdatedAt,
	})
	res, err := r.collection.UpdateByID(ctx, user.ID, bson.M{"$set": set})
	if err != nil {
		return translateError(err)
	}
	if res.MatchedCount == 0 {
		return translateError(mongo.ErrNoDocuments)
	}
	return nil
}

// Delete 删除用户
func (r *UserRepo) Delete(ctx context.Context, user *model.User) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": user.ID})
	return translateError(err)
}
