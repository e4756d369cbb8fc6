package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
	"task-tracker-backend/pkg/config"
)

// 路由表中实际使用的方法与请求头
var (
	apiMethods = []string{
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodDelete,
	}
	apiHeaders = []string{"Authorization", "Content-Type", "Accept"}
)

// CORS 创建CORS中间件
// 认证只走 Authorization 头，不开启 AllowCredentials
func CORS(cfg *config.Config) func(http.Handler) http.Handler {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: apiMethods,
		AllowedHeaders: apiHeaders,
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         600, // 10分钟
	})
}
