package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/log"
	"task-tracker-backend/pkg/models"
	"task-tracker-backend/pkg/utils"
)

// ContextKey 用于在context中存储用户信息的键
type ContextKey string

const (
	UserContextKey ContextKey = "user"
)

// TokenValidator 校验访问令牌
type TokenValidator interface {
	ValidateToken(tokenString string) (*models.TokenClaims, error)
}

// UserLookup 根据ID加载用户
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// 认证失败原因，仅用于日志
const (
	causeMissingHeader = "Authorization header missing"
	causeInvalidToken  = "Invalid or expired token"
	causeUnknownUser   = "User not found"
)

// AuthMiddleware JWT认证中间件
// 三种失败原因分别记录日志，但对外统一返回 401 {"error":"Unauthorized"}
func AuthMiddleware(tokens TokenValidator, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 从Authorization头获取token
			authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
			if authHeader == "" {
				reject(w, r, causeMissingHeader)
				return
			}

			// 解析和验证JWT token
			tokenString, ok := bearerToken(authHeader)
			if !ok {
				reject(w, r, causeInvalidToken)
				return
			}
			claims, err := tokens.ValidateToken(tokenString)
			if err != nil {
				reject(w, r, causeInvalidToken)
				return
			}

			// 令牌中的用户必须仍然存在
			user, err := users.GetUserByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, utils.ErrNotFound) {
					reject(w, r, causeUnknownUser)
					return
				}
				log.Errorf("auth: failed to load user %s: %v", claims.UserID, err)
				utils.WriteInternalServerErrorResponse(w, "Internal server error")
				return
			}

			// 将用户信息添加到请求context中
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// bearerToken 解析 "Bearer <token>"，前缀不区分大小写
func bearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// reject 记录失败原因并返回统一的401响应
func reject(w http.ResponseWriter, r *http.Request, cause string) {
	log.Warnf("auth: %s (%s %s)", cause, r.Method, r.URL.Path)
	utils.WriteUnauthorizedResponse(w, "Unauthorized")
}

// userSlotKey 请求日志预留的用户标识位置
type userSlotKey struct{}

func withUserSlot(ctx context.Context, slot *string) context.Context {
	return context.WithValue(ctx, userSlotKey{}, slot)
}

// WithUser 将用户绑定到context
func WithUser(ctx context.Context, user *models.User) context.Context {
	if slot, ok := ctx.Value(userSlotKey{}).(*string); ok && user != nil {
		*slot = user.Email
	}
	return context.WithValue(ctx, UserContextKey, user)
}

// GetUserFromContext 从context中获取用户信息
func GetUserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	return user, ok && user != nil
}

// RequireUser 要求用户必须已认证的辅助函数
func RequireUser(ctx context.Context) (*models.User, error) {
	user, ok := GetUserFromContext(ctx)
	if !ok {
		return nil, utils.ErrUnauthenticated
	}
	return user, nil
}
