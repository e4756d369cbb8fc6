package database

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/log"
)

// DatabasePool 数据库连接池
type DatabasePool struct {
	instance DatabaseInterface
	config   DatabaseConfig
	mu       sync.RWMutex
	lastUsed time.Time
}

var (
	globalPool *DatabasePool
	poolMutex  sync.Mutex
)

// GetDatabase 获取数据库连接（单例模式 + 连接池），首次创建时执行建表
func GetDatabase(config DatabaseConfig) (DatabaseInterface, error) {
	poolMutex.Lock()
	defer poolMutex.Unlock()

	// 检查是否需要创建新的连接池
	if globalPool == nil || shouldRecreateConnection(globalPool, config) {
		log.Info("Creating new database connection pool")

		// 关闭旧连接（如果存在）
		if globalPool != nil && globalPool.instance != nil {
			globalPool.instance.Close()
		}

		// 创建新连接
		instance, err := NewDatabase(config)
		if err != nil {
			globalPool = nil
			return nil, err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := instance.Migrate(ctx); err != nil {
			instance.Close()
			globalPool = nil
			return nil, err
		}

		globalPool = &DatabasePool{
			instance: instance,
			config:   config,
			lastUsed: time.Now(),
		}
	} else {
		// 更新最后使用时间
		globalPool.mu.Lock()
		globalPool.lastUsed = time.Now()
		globalPool.mu.Unlock()
	}

	return globalPool.instance, nil
}

// shouldRecreateConnection 判断是否需要重新创建连接
func shouldRecreateConnection(pool *DatabasePool, newConfig DatabaseConfig) bool {
	if pool == nil || pool.instance == nil {
		return true
	}

	// 检查配置是否发生变化
	if pool.config != newConfig {
		log.Info("Database configuration changed, recreating connection")
		return true
	}

	// 检查连接健康状态
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.instance.HealthCheck(ctx); err != nil {
		log.Warnf("Database health check failed, recreating: %v", err)
		return true
	}

	return false
}

// GetConnectionStats 获取连接池统计信息
func GetConnectionStats() map[string]interface{} {
	poolMutex.Lock()
	defer poolMutex.Unlock()

	if globalPool == nil {
		return map[string]interface{}{
			"status":    "no_connection",
			"last_used": nil,
		}
	}

	globalPool.mu.RLock()
	lastUsed := globalPool.lastUsed
	globalPool.mu.RUnlock()

	driver := "unknown"
	if s, ok := globalPool.instance.(*SQLDatabase); ok {
		driver = string(s.Dialect())
	}

	return map[string]interface{}{
		"status":    "connected",
		"driver":    driver,
		"last_used": lastUsed.Format(time.RFC3339),
		"age":       time.Since(lastUsed).String(),
	}
}
