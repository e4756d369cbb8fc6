package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/log"
	"golang.org/x/crypto/bcrypt"
	"task-tracker-backend/pkg/config"
	"task-tracker-backend/pkg/database"
	"task-tracker-backend/pkg/models"
	"task-tracker-backend/pkg/utils"
)

// TokenIssuer 签发访问令牌
type TokenIssuer interface {
	GenerateToken(userID string) (string, error)
}

// AuthHandler 认证处理器
type AuthHandler struct {
	config   *config.Config
	db       database.DatabaseInterface
	tokens   TokenIssuer
	hashCost int
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(cfg *config.Config, db database.DatabaseInterface, tokens TokenIssuer) *AuthHandler {
	return &AuthHandler{
		config:   cfg,
		db:       db,
		tokens:   tokens,
		hashCost: bcrypt.DefaultCost,
	}
}

// SetHashCost 设置 bcrypt 代价（测试中使用 bcrypt.MinCost）
func (h *AuthHandler) SetHashCost(cost int) {
	h.hashCost = cost
}

// Register 用户注册
// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.UserRegisterRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteAppError(w, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.hashCost)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	user := &models.User{
		Email:    normalizeEmail(req.Email),
		Name:     strings.TrimSpace(req.Name),
		Password: string(hash),
	}
	if err := h.db.CreateUser(r.Context(), user); err != nil {
		utils.WriteAppError(w, err)
		return
	}

	token, err := h.tokens.GenerateToken(user.ID)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	log.Infof("user registered: %s", user.ID)
	utils.WriteCreatedResponse(w, models.UserLoginResponse{User: user.Summary(), Token: token})
}

// Login 用户登录
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.UserLoginRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteAppError(w, err)
		return
	}

	user, err := h.db.GetUserByEmail(r.Context(), normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			utils.WriteUnauthorizedResponse(w, "Invalid email or password")
			return
		}
		utils.WriteAppError(w, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		utils.WriteUnauthorizedResponse(w, "Invalid email or password")
		return
	}

	token, err := h.tokens.GenerateToken(user.ID)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccessResponse(w, models.UserLoginResponse{User: user.Summary(), Token: token})
}

// Me 返回当前用户
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	utils.WriteSuccessResponse(w, user)
}

// HealthCheck 健康检查
// GET /api
func (h *AuthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	// 测试数据库连接
	dbStatus := "healthy"
	if err := h.db.HealthCheck(r.Context()); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{
		"service":     "task-tracker-backend",
		"version":     "1.0.0",
		"environment": h.config.Environment,
		"database":    h.getDatabaseType(),
		"db_status":   dbStatus,
		"timestamp":   time.Now().Unix(),
		"status":      "healthy",
	})
}

// getDatabaseType 获取数据库类型
func (h *AuthHandler) getDatabaseType() string {
	if s, ok := h.db.(*database.SQLDatabase); ok {
		return string(s.Dialect())
	}
	return "unknown"
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
