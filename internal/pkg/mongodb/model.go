package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// Indexed 需要管理索引的集合
type Indexed interface {
	// Collection 返回集合名称
	Collection() string

	// Indexes 返回集合需要的索引
	Indexes() []mongo.IndexModel
}

// EnsureAllIndexes 为所有集合创建索引
// 在应用启动或执行 migrate 时调用，重复执行是幂等的
func EnsureAllIndexes(ctx context.Context, db *mongo.Database, items ...Indexed) error {
	for _, item := range items {
		if err := CreateIndexes(ctx, db.Collection(item.Collection()), item.Indexes()); err != nil {
			return err
		}
	}
	return nil
}

// CreateIndexes 辅助函数：创建索引
func CreateIndexes(ctx context.Context, coll *mongo.Collection, indexes []mongo.IndexModel) error {
	if len(indexes) == 0 {
		return nil
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
