package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"convo/internal/pkg/logger"
	"convo/internal/pkg/response"
)

// Recovery 异常恢复中间件
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Ctx(c.Request.Context()).Error().
					Interface("error", err).
					Str("path", c.Request.URL.Path).
					Str("method", c.Request.Method).
					Msg("panic recovered")

				c.AbortWithStatusJSON(http.StatusInternalServerError,
					response.Fail(http.StatusInternalServerError, response.MsgInternalError))
			}
		}()
		c.Next()
	}
}
