// Package gormrepo 基于 GORM 的关系型存储实现（sqlite / postgres）
package gormrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"convo/internal/model"
	"convo/internal/pkg/database"
	"convo/internal/repository"
)

const migrateLockID int64 = 20240917

// Store GORM 仓库集合，共享同一个 *gorm.DB 连接池
type Store struct {
	db            *gorm.DB
	users         *UserRepo
	conversations *ConversationRepo
	messages      *MessageRepo
}

var _ repository.Store = (*Store)(nil)

// NewStore 创建 GORM 仓库集合
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:            db,
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

// DB 获取原始连接
func (s *Store) DB() *gorm.DB { return s.db }

// Migrate 自动建表，postgres 下持有 advisory lock 防止多实例并发迁移
func (s *Store) Migrate(ctx context.Context) error {
	migrate := func(db *gorm.DB) error {
		if err := db.WithContext(ctx).AutoMigrate(&model.User{}, &model.Conversation{}, &model.Message{}); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		// sqlite 在建表时内联外键，无法事后 ALTER 添加
		if db.Dialector.Name() != "postgres" {
			return nil
		}
		m := db.WithContext(ctx).Migrator()
		if !m.HasConstraint(&model.Conversation{}, "Messages") {
			if err := m.CreateConstraint(&model.Conversation{}, "Messages"); err != nil {
				return fmt.Errorf("ensure messages foreign key: %w", err)
			}
		}
		return nil
	}

	if s.db.Dialector.Name() != "postgres" {
		return migrate(s.db)
	}
	return withMigrationLock(ctx, s.db, migrate)
}

// Ping 检查数据库连接
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close 关闭连接池
func (s *Store) Close(_ context.Context) error {
	return database.Close(s.db)
}

func withMigrationLock(ctx context.Context, db *gorm.DB, fn func(*gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("open sql conn: %w", err)
	}
	defer conn.Close()
	if err := execAdvisory(ctx, conn, "SELECT pg_advisory_lock($1)", migrateLockID); err != nil {
		return fmt.Errorf("acquire migrate lock: %w", err)
	}
	defer func() {
		_ = execAdvisory(context.Background(), conn, "SELECT pg_advisory_unlock($1)", migrateLockID)
	}()
	return fn(db)
}

func execAdvisory(ctx context.Context, conn *sql.Conn, query string, lockID int64) error {
	_, err := conn.ExecContext(ctx, query, lockID)
	return err
}

// translateError 将驱动错误归一为 repository 哨兵错误
func translateError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repository.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", repository.ErrDuplicate, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", repository.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%w: %s", repository.ErrDuplicate, pgErr.ConstraintName)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%w: %s", repository.ErrNotFound, pgErr.ConstraintName)
		}
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %v", repository.ErrDuplicate, err)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: %v", repository.ErrNotFound, err)
	}
	return err
}

// now 统一使用 UTC 并截断到微秒，与 postgres timestamp 精度一致
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
