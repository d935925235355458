package gormrepo

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"convo/internal/config"
	"convo/internal/model"
	"convo/internal/pkg/database"
	"convo/internal/pkg/id"
	"convo/internal/repository"
)

// newTestStore 每个 Convey 叶子路径都会重新执行，得到独立的内存库
func newTestStore(t *testing.T) *Store {
	db, err := database.Open(&config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		DSN:          ":memory:",
		MaxOpenConns: 1,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	store := NewStore(db)
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return store
}

func strPtr(s string) *string { return &s }

func TestUserRepo(t *testing.T) {
	Convey("GORM 用户仓库", t, func() {
		ctx := context.Background()
		repo := newTestStore(t).Users()

		alice := &model.User{Username: "alice", Email: "a@x.com"}
		So(repo.Create(ctx, alice), ShouldBeNil)
		So(alice.ID, ShouldBeGreaterThan, 0)
		So(alice.CreatedAt.IsZero(), ShouldBeFalse)

		Convey("按 ID 与用户名查询", func() {
			got, err := repo.GetByID(ctx, alice.ID)
			So(err, ShouldBeNil)
			So(got.Username, ShouldEqual, "alice")

			got, err = repo.GetByUsername(ctx, "alice")
			So(err, ShouldBeNil)
			So(got.ID, ShouldEqual, alice.ID)

			_, err = repo.GetByID(ctx, alice.ID+100)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("用户名唯一约束", func() {
			err := repo.Create(ctx, &model.User{Username: "alice", Email: "other@x.com"})
			So(errors.Is(err, repository.ErrDuplicate), ShouldBeTrue)

			n, err := repo.Count(ctx)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, int64(1))
		})

		Convey("邮箱唯一约束", func() {
			err := repo.Create(ctx, &model.User{Username: "bob", Email: "a@x.com"})
			So(errors.Is(err, repository.ErrDuplicate), ShouldBeTrue)
		})

		Convey("按插入顺序分页", func() {
			for _, name := range []string{"bob", "carol", "dave"} {
				So(repo.Create(ctx, &model.User{Username: name, Email: name + "@x.com"}), ShouldBeNil)
			}
			page, err := repo.List(ctx, 1, 2)
			So(err, ShouldBeNil)
			So(len(page), ShouldEqual, 2)
			So(page[0].Username, ShouldEqual, "bob")
			So(page[1].Username, ShouldEqual, "carol")

			n, err := repo.Count(ctx)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, int64(4))
		})

		Convey("部分更新与更新冲突", func() {
			So(repo.Update(ctx, alice, model.UserPatch{Email: model.Some("alice@x.com")}), ShouldBeNil)
			got, err := repo.GetByID(ctx, alice.ID)
			So(err, ShouldBeNil)
			So(got.Email, ShouldEqual, "alice@x.com")
			So(got.Username, ShouldEqual, "alice")

			bob := &model.User{Username: "bob", Email: "b@x.com"}
			So(repo.Create(ctx, bob), ShouldBeNil)
			err = repo.Update(ctx, bob, model.UserPatch{Username: model.Some("alice")})
			So(errors.Is(err, repository.ErrDuplicate), ShouldBeTrue)
		})

		Convey("删除", func() {
			So(repo.Delete(ctx, alice), ShouldBeNil)
			_, err := repo.GetByID(ctx, alice.ID)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestConversationRepo(t *testing.T) {
	Convey("GORM 对话仓库", t, func() {
		ctx := context.Background()
		store := newTestStore(t)
		repo := store.Conversations()

		c1 := &model.Conversation{UserID: "user_1", Title: strPtr("Chat 1"), ModelName: strPtr("gpt-4")}
		c2 := &model.Conversation{UserID: "user_1", Title: strPtr("Chat 2")}
		c3 := &model.Conversation{UserID: "user_2", Title: strPtr("Other"), ExtraData: map[string]any{"pinned": true}}
		for _, c := range []*model.Conversation{c1, c2, c3} {
			So(repo.Create(ctx, c), ShouldBeNil)
			So(id.IsValid(c.ID), ShouldBeTrue)
		}

		Convey("按 user_id 过滤并按更新时间倒序", func() {
			owner := "user_1"
			filter := repository.ConversationFilter{UserID: &owner}
			list, err := repo.List(ctx, filter, 0, 10)
			So(err, ShouldBeNil)
			So(len(list), ShouldEqual, 2)
			So(list[0].ID, ShouldEqual, c2.ID)
			So(list[1].ID, ShouldEqual, c1.ID)

			n, err := repo.Count(ctx, filter)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, int64(2))

			all, err := repo.Count(ctx, repository.ConversationFilter{})
			So(err, ShouldBeNil)
			So(all, ShouldEqual, int64(3))
		})

		Convey("extra_data 往返", func() {
			got, err := repo.GetByID(ctx, c3.ID)
			So(err, ShouldBeNil)
			So(got.ExtraData["pinned"], ShouldEqual, true)
		})

		Convey("更新后排到最前，未提供字段保持不变", func() {
			So(repo.Update(ctx, c1, model.ConversationPatch{Title: model.Some("Renamed")}), ShouldBeNil)

			got, err := repo.GetByID(ctx, c1.ID)
			So(err, ShouldBeNil)
			So(*got.Title, ShouldEqual, "Renamed")
			So(*got.ModelName, ShouldEqual, "gpt-4")
			So(got.UserID, ShouldEqual, "user_1")

			list, err := repo.List(ctx, repository.ConversationFilter{}, 0, 1)
			So(err, ShouldBeNil)
			So(list[0].ID, ShouldEqual, c1.ID)
		})

		Convey("删除对话级联删除消息", func() {
			msgs := store.Messages()
			m := &model.Message{ConversationID: c1.ID, Role: model.RoleUser, Content: "hello"}
			So(msgs.Create(ctx, m), ShouldBeNil)

			So(repo.Delete(ctx, c1), ShouldBeNil)

			_, err := repo.GetByID(ctx, c1.ID)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			_, err = msgs.GetByID(ctx, m.ID)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			n, err := msgs.CountByConversation(ctx, c1.ID)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, int64(0))
		})
	})
}

func TestMessageRepo(t *testing.T) {
	Convey("GORM 消息仓库", t, func() {
		ctx := context.Background()
		store := newTestStore(t)
		conv := &model.Conversation{UserID: "user_1"}
		So(store.Conversations().Create(ctx, conv), ShouldBeNil)
		repo := store.Messages()

		Convey("按创建顺序分页，默认状态 success", func() {
			for _, content := range []string{"first", "second", "third"} {
				So(repo.Create(ctx, &model.Message{ConversationID: conv.ID, Role: model.RoleUser, Content: content}), ShouldBeNil)
			}
			list, err := repo.ListByConversation(ctx, conv.ID, 1, 5)
			So(err, ShouldBeNil)
			So(len(list), ShouldEqual, 2)
			So(list[0].Content, ShouldEqual, "second")
			So(list[1].Content, ShouldEqual, "third")
			So(list[0].Status, ShouldEqual, model.StatusSuccess)
		})

		Convey("所属对话不存在时外键拒绝写入", func() {
			err := repo.Create(ctx, &model.Message{ConversationID: id.New(), Role: model.RoleUser, Content: "orphan"})
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("部分更新", func() {
			m := &model.Message{ConversationID: conv.ID, Role: model.RoleAssistant, Content: "draft", Status: model.StatusProcessing}
			So(repo.Create(ctx, m), ShouldBeNil)

			So(repo.Update(ctx, m, model.MessagePatch{Status: model.Some(model.StatusSuccess)}), ShouldBeNil)
			got, err := repo.GetByID(ctx, m.ID)
			So(err, ShouldBeNil)
			So(got.Status, ShouldEqual, model.StatusSuccess)
			So(got.Content, ShouldEqual, "draft")
			So(got.Role, ShouldEqual, model.RoleAssistant)

			So(repo.Delete(ctx, m), ShouldBeNil)
			_, err = repo.GetByID(ctx, m.ID)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}
