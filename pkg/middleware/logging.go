package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/log"
	"task-tracker-backend/pkg/config"
)

// Logger 创建日志中间件：开发环境使用Chi的默认日志，其他环境输出结构化日志
func Logger(cfg *config.Config) func(http.Handler) http.Handler {
	if cfg.IsDevelopment() {
		return middleware.Logger
	}
	return CustomLogger(cfg)
}

// requestLog 结构化请求日志
type requestLog struct {
	Time      string `json:"time"`
	RequestID string `json:"request_id,omitempty"`
	Method    string `json:"method"`
	Path      string `json:"path"`
	Status    int    `json:"status"`
	Duration  string `json:"duration"`
	Bytes     int    `json:"bytes"`
	User      string `json:"user"`
	IP        string `json:"ip"`
	UserAgent string `json:"user_agent"`
}

// CustomLogger 自定义日志中间件
func CustomLogger(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// 创建响应写入器包装器来捕获状态码
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			// 用户在认证中间件里才绑定，这里通过指针回填
			var user string
			r = r.WithContext(withUserSlot(r.Context(), &user))

			// 处理请求
			next.ServeHTTP(ww, r)

			if user == "" {
				user = "anonymous"
			}
			entry := requestLog{
				Time:      start.UTC().Format(time.RFC3339),
				RequestID: middleware.GetReqID(r.Context()),
				Method:    r.Method,
				Path:      r.URL.Path,
				Status:    ww.Status(),
				Duration:  time.Since(start).String(),
				Bytes:     ww.BytesWritten(),
				User:      user,
				IP:        r.RemoteAddr,
				UserAgent: r.UserAgent(),
			}
			logRequest(entry)
		})
	}
}

// logRequest 按状态码选择日志级别
func logRequest(entry requestLog) {
	line, err := json.Marshal(entry)
	if err != nil {
		log.Errorf("failed to encode request log: %v", err)
		return
	}

	switch {
	case entry.Status >= 500:
		log.Error(string(line))
	case entry.Status >= 400:
		log.Warn(string(line))
	default:
		log.Info(string(line))
	}
}
