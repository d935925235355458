package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	. "github.com/smartystreets/goconvey/convey"

	"convo/internal/config"
	"convo/internal/pkg/cache"
	"convo/internal/pkg/database"
	"convo/internal/pkg/id"
	"convo/internal/repository/gormrepo"
)

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type page struct {
	List     []map[string]any `json:"list"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// newTestServer 内存 sqlite + miniredis，每个 Convey 叶子路径独立
func newTestServer(t *testing.T) *gin.Engine {
	db, err := database.Open(&config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		DSN:          ":memory:",
		MaxOpenConns: 1,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	store := gormrepo.NewStore(db)
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	mr := miniredis.RunT(t)
	rc, err := cache.NewRedisCache(&config.RedisConfig{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("connect miniredis: %v", err)
	}

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "test"},
		Redis:  config.RedisConfig{Addr: mr.Addr(), CacheTTL: time.Minute},
	}
	srv := NewWithStore(cfg, store, rc)
	t.Cleanup(func() { srv.Close(context.Background()) })
	return srv.Engine()
}

func do(engine *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func decode[T any](env envelope) T {
	var v T
	_ = json.Unmarshal(env.Data, &v)
	return v
}

func TestHealth(t *testing.T) {
	Convey("健康检查", t, func() {
		engine := newTestServer(t)

		w, _ := do(engine, http.MethodGet, "/health", nil)
		So(w.Code, ShouldEqual, http.StatusOK)

		w, _ = do(engine, http.MethodGet, "/ready", nil)
		So(w.Code, ShouldEqual, http.StatusOK)
		So(w.Header().Get("X-Request-ID"), ShouldNotBeEmpty)
	})
}

func TestUserAPI(t *testing.T) {
	Convey("用户接口", t, func() {
		engine := newTestServer(t)

		w, env := do(engine, http.MethodPost, "/api/users/", map[string]any{
			"username": "alice", "email": "alice@example.com", "password": "secret1",
		})
		So(w.Code, ShouldEqual, http.StatusOK)
		So(env.Code, ShouldEqual, 200)
		So(env.Msg, ShouldEqual, "success")
		alice := decode[map[string]any](env)
		So(alice["username"], ShouldEqual, "alice")
		So(alice, ShouldNotContainKey, "hashed_password")
		So(alice, ShouldNotContainKey, "password")
		aliceID := int64(alice["id"].(float64))

		Convey("重复用户名返回 400 且原用户不变", func() {
			w, env := do(engine, http.MethodPost, "/api/users", map[string]any{
				"username": "alice", "email": "other@example.com",
			})
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(env.Code, ShouldEqual, 400)
			So(env.Msg, ShouldEqual, "Username already exists")
			So(string(env.Data), ShouldEqual, "null")

			_, env = do(engine, http.MethodGet, fmt.Sprintf("/api/users/%d", aliceID), nil)
			So(decode[map[string]any](env)["email"], ShouldEqual, "alice@example.com")
		})

		Convey("重复邮箱返回 400", func() {
			w, env := do(engine, http.MethodPost, "/api/users/", map[string]any{
				"username": "bob", "email": "alice@example.com",
			})
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(env.Msg, ShouldEqual, "Email already exists")
		})

		Convey("校验失败返回 422", func() {
			w, env := do(engine, http.MethodPost, "/api/users/", map[string]any{
				"username": "ab", "email": "not-an-email",
			})
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			So(env.Code, ShouldEqual, 422)
			So(env.Msg, ShouldEqual, "Validation error")
			errs := decode[[]map[string]string](env)
			So(len(errs), ShouldEqual, 2)
			So(errs[0]["field"], ShouldEqual, "username")
			So(errs[1]["field"], ShouldEqual, "email")

			w, _ = do(engine, http.MethodPost, "/api/users/", "{bad json")
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)

			w, _ = do(engine, http.MethodGet, "/api/users/abc", nil)
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
		})

		Convey("不存在的用户返回 404", func() {
			for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
				w, env := do(engine, method, "/api/users/9999", map[string]any{})
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(env.Code, ShouldEqual, 404)
				So(env.Msg, ShouldEqual, "User not found")
			}
		})

		Convey("部分更新只改动提供的字段", func() {
			path := fmt.Sprintf("/api/users/%d", aliceID)
			w, env := do(engine, http.MethodPut, path, map[string]any{"email": "new@example.com"})
			So(w.Code, ShouldEqual, http.StatusOK)
			got := decode[map[string]any](env)
			So(got["email"], ShouldEqual, "new@example.com")
			So(got["username"], ShouldEqual, "alice")

			w, _ = do(engine, http.MethodPut, path, map[string]any{"username": nil})
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
		})

		Convey("列表 total 与两种分页参数", func() {
			for i := 0; i < 3; i++ {
				w, _ := do(engine, http.MethodPost, "/api/users/", map[string]any{
					"username": fmt.Sprintf("user%d", i), "email": fmt.Sprintf("u%d@example.com", i),
				})
				So(w.Code, ShouldEqual, http.StatusOK)
			}

			_, env := do(engine, http.MethodGet, "/api/users/?page=2&page_size=3", nil)
			p := decode[page](env)
			So(p.Total, ShouldEqual, int64(4))
			So(p.Page, ShouldEqual, 2)
			So(p.PageSize, ShouldEqual, 3)
			So(len(p.List), ShouldEqual, 1)
			So(p.List[0]["username"], ShouldEqual, "user2")

			_, env = do(engine, http.MethodGet, "/api/users?skip=1&limit=2", nil)
			p = decode[page](env)
			So(len(p.List), ShouldEqual, 2)
			So(p.List[0]["username"], ShouldEqual, "user0")
			So(p.Total, ShouldEqual, int64(4))

			w, _ := do(engine, http.MethodGet, "/api/users/?page_size=101", nil)
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
		})

		Convey("超大页码返回 422 而不是回到第一页", func() {
			w, env := do(engine, http.MethodGet, "/api/users/?page=9223372036854775807&page_size=20", nil)
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			errs := decode[[]map[string]string](env)
			So(errs[0]["field"], ShouldEqual, "page")

			w, env = do(engine, http.MethodGet, "/api/users/?page=10000000&page_size=20", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			p := decode[page](env)
			So(p.Page, ShouldEqual, 10000000)
			So(len(p.List), ShouldEqual, 0)
		})

		Convey("删除返回 data null", func() {
			w, env := do(engine, http.MethodDelete, fmt.Sprintf("/api/users/%d", aliceID), nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(string(env.Data), ShouldEqual, "null")

			w, _ = do(engine, http.MethodGet, fmt.Sprintf("/api/users/%d", aliceID), nil)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestConversationAndMessageAPI(t *testing.T) {
	Convey("对话与消息接口", t, func() {
		engine := newTestServer(t)

		create := func(userID, title string) map[string]any {
			w, env := do(engine, http.MethodPost, "/api/conversations/", map[string]any{
				"user_id": userID, "title": title, "model_name": "gpt-4", "extra_data": map[string]any{"k": "v"},
			})
			So(w.Code, ShouldEqual, http.StatusOK)
			return decode[map[string]any](env)
		}
		conv := create("user_1", "First")
		convID := conv["id"].(string)
		So(id.IsValid(convID), ShouldBeTrue)

		Convey("按 user_id 过滤", func() {
			create("user_1", "Second")
			create("user_2", "Other")

			_, env := do(engine, http.MethodGet, "/api/conversations/?user_id=user_1", nil)
			p := decode[page](env)
			So(p.Total, ShouldEqual, int64(2))
			for _, item := range p.List {
				So(item["user_id"], ShouldEqual, "user_1")
			}

			_, env = do(engine, http.MethodGet, "/api/conversations", nil)
			So(decode[page](env).Total, ShouldEqual, int64(3))
		})

		Convey("部分更新与显式置空", func() {
			path := "/api/conversations/" + convID
			_, env := do(engine, http.MethodGet, path, nil)
			So(decode[map[string]any](env)["title"], ShouldEqual, "First")

			w, env := do(engine, http.MethodPut, path, map[string]any{"title": nil})
			So(w.Code, ShouldEqual, http.StatusOK)
			got := decode[map[string]any](env)
			So(got["title"], ShouldBeNil)
			So(got["model_name"], ShouldEqual, "gpt-4")

			// 读取不应命中更新前的缓存
			_, env = do(engine, http.MethodGet, path, nil)
			So(decode[map[string]any](env)["title"], ShouldBeNil)
		})

		Convey("user_id 允许空串但不能缺省", func() {
			w, env := do(engine, http.MethodPost, "/api/conversations/", map[string]any{"user_id": ""})
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode[map[string]any](env)["user_id"], ShouldEqual, "")

			w, env = do(engine, http.MethodPost, "/api/conversations/", map[string]any{"title": "x"})
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			So(decode[[]map[string]string](env)[0]["field"], ShouldEqual, "user_id")
		})

		Convey("列表查询参数错误指向实际字段", func() {
			long := strings.Repeat("u", 65)
			w, env := do(engine, http.MethodGet, "/api/conversations/?user_id="+long, nil)
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			errs := decode[[]map[string]string](env)
			So(errs[0]["field"], ShouldEqual, "user_id")
			So(errs[0]["message"], ShouldEqual, "must be at most 64 characters")

			w, env = do(engine, http.MethodGet, "/api/conversations/?user_id=user_1&page=0", nil)
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			errs = decode[[]map[string]string](env)
			So(errs[0]["field"], ShouldEqual, "page")
			So(errs[0]["message"], ShouldEqual, "must be greater than or equal to 1")
		})

		Convey("不存在或非法的对话 ID", func() {
			w, env := do(engine, http.MethodGet, "/api/conversations/"+id.New(), nil)
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(env.Msg, ShouldEqual, "Conversation not found")

			w, _ = do(engine, http.MethodGet, "/api/conversations/not-a-uuid", nil)
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
		})

		Convey("对话不存在时创建消息返回 404 且不落库", func() {
			missing := id.New()
			w, env := do(engine, http.MethodPost, "/api/messages/", map[string]any{
				"conversation_id": missing, "role": "user", "content": "hi",
			})
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(env.Msg, ShouldEqual, "Conversation not found")

			w, _ = do(engine, http.MethodGet, "/api/messages/conversation/"+missing, nil)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("消息校验", func() {
			w, _ := do(engine, http.MethodPost, "/api/messages/", map[string]any{
				"conversation_id": convID, "role": "robot", "content": "hi",
			})
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)

			w, _ = do(engine, http.MethodPost, "/api/messages/", map[string]any{
				"conversation_id": "nope", "role": "user", "content": "hi",
			})
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)

			w, env := do(engine, http.MethodPost, "/api/messages/", map[string]any{
				"conversation_id": convID, "role": "assistant",
			})
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			So(decode[[]map[string]string](env)[0]["field"], ShouldEqual, "content")
		})

		Convey("消息内容允许空串", func() {
			w, env := do(engine, http.MethodPost, "/api/messages/", map[string]any{
				"conversation_id": convID, "role": "assistant", "content": "",
			})
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode[map[string]any](env)["content"], ShouldEqual, "")
		})

		Convey("消息生命周期与级联删除", func() {
			var msgIDs []string
			for _, content := range []string{"hello", "world"} {
				w, env := do(engine, http.MethodPost, "/api/messages", map[string]any{
					"conversation_id": convID, "role": "user", "content": content,
				})
				So(w.Code, ShouldEqual, http.StatusOK)
				msg := decode[map[string]any](env)
				So(msg["status"], ShouldEqual, "success")
				msgIDs = append(msgIDs, msg["id"].(string))
			}

			_, env := do(engine, http.MethodGet, "/api/messages/conversation/"+convID, nil)
			p := decode[page](env)
			So(p.Total, ShouldEqual, int64(2))
			So(p.List[0]["content"], ShouldEqual, "hello")

			w, env := do(engine, http.MethodPut, "/api/messages/"+msgIDs[0], map[string]any{"status": "error"})
			So(w.Code, ShouldEqual, http.StatusOK)
			got := decode[map[string]any](env)
			So(got["status"], ShouldEqual, "error")
			So(got["content"], ShouldEqual, "hello")

			w, _ = do(engine, http.MethodPut, "/api/messages/"+msgIDs[0], map[string]any{"content": nil})
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)

			w, env = do(engine, http.MethodDelete, "/api/conversations/"+convID, nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(string(env.Data), ShouldEqual, "null")

			for _, msgID := range msgIDs {
				w, env := do(engine, http.MethodGet, "/api/messages/"+msgID, nil)
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(env.Msg, ShouldEqual, "Message not found")
			}
		})
	})
}

func TestRecoveryAndNoRoute(t *testing.T) {
	Convey("异常恢复与未知路由", t, func() {
		engine := newTestServer(t)
		engine.GET("/panic", func(c *gin.Context) { panic("boom") })

		w, env := do(engine, http.MethodGet, "/panic", nil)
		So(w.Code, ShouldEqual, http.StatusInternalServerError)
		So(env.Code, ShouldEqual, 500)
		So(env.Msg, ShouldEqual, "Internal server error")
		So(string(env.Data), ShouldEqual, "null")

		w, env = do(engine, http.MethodGet, "/nope", nil)
		So(w.Code, ShouldEqual, http.StatusNotFound)
		So(env.Code, ShouldEqual, 404)
	})
}
