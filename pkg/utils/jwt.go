package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"task-tracker-backend/pkg/models"
)

const (
	// TokenIssuer 令牌签发方
	TokenIssuer = "task-tracker-backend"
	// TokenAudience 令牌受众
	TokenAudience = "task-tracker-frontend"
	// TokenLifetime 令牌有效期（90天）
	TokenLifetime = 90 * 24 * time.Hour
)

// ErrInvalidToken 所有令牌校验失败统一返回此错误，不向调用方暴露具体原因
var ErrInvalidToken = errors.New("invalid token")

// JWTService JWT服务
type JWTService struct {
	secretKey []byte
	now       func() time.Time
}

// JWTOption JWT服务选项
type JWTOption func(*JWTService)

// WithClock 注入时间源（测试用）
func WithClock(now func() time.Time) JWTOption {
	return func(j *JWTService) {
		j.now = now
	}
}

// NewJWTService 创建JWT服务
func NewJWTService(secretKey string, opts ...JWTOption) *JWTService {
	j := &JWTService{
		secretKey: []byte(secretKey),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// GenerateToken 为用户生成访问令牌
func (j *JWTService) GenerateToken(userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("failed to generate token: empty user id")
	}

	now := j.now()
	claims := &models.TokenClaims{
		Issuer:   TokenIssuer,
		Audience: TokenAudience,
		Iat:      now.Unix(),
		Exp:      now.Add(TokenLifetime).Unix(),
		UserID:   userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken 验证令牌
// 签名（常量时间比较）、算法、iss、aud、exp 任一不符都返回 ErrInvalidToken
func (j *JWTService) ValidateToken(tokenString string) (*models.TokenClaims, error) {
	claims := &models.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// 验证签名方法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
