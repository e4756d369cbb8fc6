package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/go-playground/log"
	"task-tracker-backend/pkg/config"
	"task-tracker-backend/pkg/utils"
)

// Recovery 恢复中间件，处理panic并返回统一的500响应
func Recovery(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				// 记录panic信息
				log.Errorf("panic: %v (%s %s)", rvr, r.Method, r.URL.Path)
				if cfg.Debug || cfg.IsDevelopment() {
					log.Errorf("stack trace:\n%s", debug.Stack())
				}

				// 开发环境返回panic内容，生产环境隐藏细节
				msg := "Internal server error"
				if cfg.IsDevelopment() {
					msg = fmt.Sprintf("Internal server error: %v", rvr)
				}
				utils.WriteInternalServerErrorResponse(w, msg)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
