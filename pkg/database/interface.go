package database

import (
	"context"
	"strings"

	"github.com/go-playground/log"
	"task-tracker-backend/pkg/models"
)

// DatabaseInterface 定义数据库访问接口
// 查询不到记录时返回 utils.ErrNotFound，唯一约束冲突时返回 utils.ErrConflict
type DatabaseInterface interface {
	// 用户管理
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	SearchUsers(ctx context.Context, filter UserFilter) ([]models.User, error)

	// 看板（创建时在同一事务内写入所有者的 admin 授权）
	CreateBoard(ctx context.Context, board *models.Board, ownerAccess *models.BoardAccess) error
	GetBoard(ctx context.Context, id string) (*models.Board, error)
	UpdateBoard(ctx context.Context, board *models.Board) error
	DeleteBoard(ctx context.Context, id string) error
	ListBoardsForUser(ctx context.Context, userID string) ([]BoardWithAccess, error)

	// 看板授权
	CreateBoardAccess(ctx context.Context, access *models.BoardAccess) error
	GetBoardAccess(ctx context.Context, id string) (*models.BoardAccess, error)
	GetBoardAccessByUser(ctx context.Context, boardID, userID string) (*models.BoardAccess, error)
	ListBoardMembers(ctx context.Context, boardID string) ([]models.BoardMember, error)
	UpdateBoardAccessRole(ctx context.Context, id string, role models.Role) error
	DeleteBoardAccess(ctx context.Context, id string) error
	CountBoardAdmins(ctx context.Context, boardID, excludeAccessID string) (int, error)

	// 列表
	CreateList(ctx context.Context, list *models.List) error
	GetList(ctx context.Context, id string) (*models.List, error)
	ListListsByBoard(ctx context.Context, boardID string) ([]models.List, error)
	ListListsForUser(ctx context.Context, userID string) ([]models.List, error)
	UpdateList(ctx context.Context, list *models.List) error
	DeleteList(ctx context.Context, id string) error

	// 卡片（BoardID 通过所属列表关联查询填充）
	CreateCard(ctx context.Context, card *models.Card) error
	GetCard(ctx context.Context, id string) (*models.Card, error)
	ListCardsByList(ctx context.Context, listID string) ([]models.Card, error)
	ListCardsForUser(ctx context.Context, userID string) ([]models.Card, error)
	UpdateCard(ctx context.Context, card *models.Card) error
	DeleteCard(ctx context.Context, id string) error

	// 评论（BoardID 通过卡片与列表关联查询填充）
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, id string) (*models.Comment, error)
	ListCommentsByCard(ctx context.Context, cardID string) ([]models.Comment, error)
	UpdateComment(ctx context.Context, comment *models.Comment) error
	DeleteComment(ctx context.Context, id string) error

	// 建表
	Migrate(ctx context.Context) error

	// 健康检查
	HealthCheck(ctx context.Context) error

	// 关闭连接
	Close() error
}

// UserFilter 用户查询条件，空字段不参与过滤
type UserFilter struct {
	ID    string
	Email string
	Name  string
	Limit uint64
}

// BoardWithAccess 看板及当前用户的授权信息
type BoardWithAccess struct {
	Board    models.Board
	Owner    models.UserSummary
	AccessID *string
	Role     *models.Role
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	PostgresDSN string
	SQLitePath  string
	Debug       bool
}

// NewDatabase 根据配置选择数据库实现：PostgreSQL > SQLite
func NewDatabase(config DatabaseConfig) (DatabaseInterface, error) {
	if dsn := strings.TrimSpace(config.PostgresDSN); dsn != "" {
		log.Info("Using PostgreSQL database")
		return NewPostgresDatabase(dsn)
	}

	path := config.SQLitePath
	if path == "" {
		path = DefaultSQLitePath
	}
	log.Infof("Using SQLite database at %s", path)
	return NewSQLiteDatabase(path)
}
