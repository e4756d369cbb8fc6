package handler

import (
	"fmt"
	"net/http"
	"sync"

	"task-tracker-backend/pkg/access"
	"task-tracker-backend/pkg/config"
	"task-tracker-backend/pkg/database"
	"task-tracker-backend/pkg/handlers"
	"task-tracker-backend/pkg/logging"
	customMiddleware "task-tracker-backend/pkg/middleware"
	"task-tracker-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/log"
)

var (
	routerOnce sync.Once
	router     http.Handler
	routerErr  error
)

// Handler 是无服务器函数的入口点
// 所有API端点集中在一个Chi路由器中管理，路由器在冷启动时构建一次
func Handler(w http.ResponseWriter, r *http.Request) {
	routerOnce.Do(func() {
		router, routerErr = Bootstrap(config.GetCached())
	})
	if routerErr != nil {
		log.Errorf("startup failed: %v", routerErr)
		utils.WriteInternalServerErrorResponse(w, "Configuration error")
		return
	}
	router.ServeHTTP(w, r)
}

// Bootstrap 验证配置、初始化日志与数据库并构建路由器
func Bootstrap(cfg *config.Config) (http.Handler, error) {
	logging.Init(!cfg.IsProduction())

	// 验证配置（JWT_SECRET 为空时拒绝启动）
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// 获取数据库连接（首次连接时自动建表）
	db, err := database.GetDatabase(database.DatabaseConfig{
		PostgresDSN: cfg.PostgresDSN,
		SQLitePath:  cfg.SQLitePath,
		Debug:       cfg.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	return NewRouter(cfg, db), nil
}

// NewRouter 创建Chi路由器
func NewRouter(cfg *config.Config, db database.DatabaseInterface) *chi.Mux {
	router := chi.NewRouter()

	// 设置全局中间件
	setupMiddleware(router, cfg)

	// 设置路由
	setupRoutes(router, cfg, db)

	return router
}

// setupMiddleware 设置全局中间件
func setupMiddleware(router *chi.Mux, cfg *config.Config) {
	// 基础中间件
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	// Normalize path and restore scheme/host before logging and routing
	router.Use(customMiddleware.Normalize())
	router.Use(customMiddleware.Logger(cfg))
	router.Use(customMiddleware.Recovery(cfg))

	// CORS中间件
	router.Use(customMiddleware.CORS(cfg))

	// 超时中间件：请求context到期后数据库查询随之取消
	router.Use(middleware.Timeout(cfg.RequestTimeout))

	// 压缩中间件
	router.Use(middleware.Compress(5))

	// 开发环境额外中间件
	if cfg.IsDevelopment() {
		router.Use(middleware.Heartbeat("/ping"))
	}
}

// setupRoutes 设置所有API路由
func setupRoutes(router *chi.Mux, cfg *config.Config, db database.DatabaseInterface) {
	// 访问控制
	tokens := utils.NewJWTService(cfg.JWTSecret)
	store := access.NewStore(db)
	engine := access.NewEngine(db, store)
	membership := access.NewMembership(db, engine)

	// 创建处理器
	authHandler := handlers.NewAuthHandler(cfg, db, tokens)
	usersHandler := handlers.NewUsersHandler(cfg, db)
	boardsHandler := handlers.NewBoardsHandler(cfg, db, engine)
	membersHandler := handlers.NewMembersHandler(cfg, membership)
	listsHandler := handlers.NewListsHandler(cfg, db, engine)
	cardsHandler := handlers.NewCardsHandler(cfg, db, engine)
	commentsHandler := handlers.NewCommentsHandler(cfg, db, engine)

	// 健康检查端点
	router.Get("/", authHandler.HealthCheck)

	// 数据库连接池状态端点（调试用）
	if cfg.IsDevelopment() {
		router.Get("/debug/db-pool", func(w http.ResponseWriter, r *http.Request) {
			utils.WriteSuccessResponse(w, database.GetConnectionStats())
		})
	}

	// API路由组
	router.Route("/api", func(r chi.Router) {
		r.Use(customMiddleware.MaxBodySize(cfg.MaxBodyBytes))
		r.Use(customMiddleware.ContentTypeJSON)

		r.Get("/", authHandler.HealthCheck)

		// 公开路由（不需要认证）
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		// 需要认证的路由
		r.Group(func(r chi.Router) {
			// 应用认证中间件
			r.Use(customMiddleware.AuthMiddleware(tokens, db))

			r.Get("/auth/me", authHandler.Me)

			r.Route("/users", func(r chi.Router) {
				r.Get("/", usersHandler.ListUsers)
				r.Get("/{id}", usersHandler.GetUser)
			})

			r.Route("/boards", func(r chi.Router) {
				r.Get("/", boardsHandler.ListBoards)
				r.Post("/", boardsHandler.CreateBoard)
				r.Get("/{id}", boardsHandler.GetBoard)
				r.Put("/{id}", boardsHandler.UpdateBoard)
				r.Delete("/{id}", boardsHandler.DeleteBoard)

				// 成员管理
				r.Get("/{id}/members", membersHandler.ListMembers)
				r.Post("/{id}/members", membersHandler.AddMember)
				r.Put("/{id}/members/{memberId}", membersHandler.UpdateMember)
				r.Delete("/{id}/members/{memberId}", membersHandler.RemoveMember)
			})

			r.Route("/lists", func(r chi.Router) {
				r.Get("/", listsHandler.ListLists) // optional ?board=
				r.Post("/", listsHandler.CreateList)
				r.Get("/{id}", listsHandler.GetList)
				r.Put("/{id}", listsHandler.UpdateList)
				r.Delete("/{id}", listsHandler.DeleteList)
			})

			r.Route("/cards", func(r chi.Router) {
				r.Get("/", cardsHandler.ListCards) // optional ?list=
				r.Post("/", cardsHandler.CreateCard)
				r.Get("/{id}", cardsHandler.GetCard)
				r.Put("/{id}", cardsHandler.UpdateCard)
				r.Delete("/{id}", cardsHandler.DeleteCard)
			})

			r.Route("/comments", func(r chi.Router) {
				r.Get("/card/{cardId}", commentsHandler.ListByCard)
				r.Post("/", commentsHandler.CreateComment)
				r.Get("/{id}", commentsHandler.GetComment)
				r.Put("/{id}", commentsHandler.UpdateComment)
				r.Delete("/{id}", commentsHandler.DeleteComment)
			})
		})
	})

	// 404处理
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteNotFoundResponse(w, fmt.Sprintf("Route not found: %s %s", r.Method, r.URL.Path))
	})

	// 405处理
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteErrorResponse(w, http.StatusMethodNotAllowed,
			fmt.Sprintf("Method %s not allowed for %s", r.Method, r.URL.Path))
	})
}
