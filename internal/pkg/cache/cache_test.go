package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	. "github.com/smartystreets/goconvey/convey"

	"convo/internal/config"
	"convo/internal/model"
)

func newTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rc, err := NewRedisCache(&config.RedisConfig{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("connect miniredis: %v", err)
	}
	t.Cleanup(func() { _ = rc.Close() })
	return rc, mr
}

func TestConversationCache(t *testing.T) {
	Convey("对话缓存", t, func() {
		ctx := context.Background()
		rc, mr := newTestRedis(t)
		cc := NewConversationCache(rc, time.Minute)

		title := "Chat"
		conv := &model.Conversation{
			ID:        "0190a4c8-7a3e-7c1b-9f00-000000000001",
			UserID:    "user_1",
			Title:     &title,
			ExtraData: map[string]any{"k": "v"},
			CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			UpdatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		}

		Convey("未命中", func() {
			_, err := cc.Get(ctx, conv.ID)
			So(errors.Is(err, ErrCacheMiss), ShouldBeTrue)
		})

		Convey("写入后命中并带 TTL", func() {
			So(cc.Set(ctx, conv), ShouldBeNil)
			got, err := cc.Get(ctx, conv.ID)
			So(err, ShouldBeNil)
			So(got.UserID, ShouldEqual, "user_1")
			So(*got.Title, ShouldEqual, "Chat")
			So(got.ExtraData["k"], ShouldEqual, "v")
			So(got.UpdatedAt.Equal(conv.UpdatedAt), ShouldBeTrue)
			So(mr.TTL(ConversationCacheKey(conv.ID)), ShouldEqual, time.Minute)
		})

		Convey("失效", func() {
			So(cc.Set(ctx, conv), ShouldBeNil)
			So(cc.Invalidate(ctx, conv.ID), ShouldBeNil)
			_, err := cc.Get(ctx, conv.ID)
			So(errors.Is(err, ErrCacheMiss), ShouldBeTrue)
		})

		Convey("过期", func() {
			So(cc.Set(ctx, conv), ShouldBeNil)
			mr.FastForward(2 * time.Minute)
			_, err := cc.Get(ctx, conv.ID)
			So(errors.Is(err, ErrCacheMiss), ShouldBeTrue)
		})
	})
}
