package handlers

import (
	"context"
	"net/http"

	"tasktracker/internal/domain"
	"tasktracker/internal/logger"
	"tasktracker/internal/repository"
	"tasktracker/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserStore is what the auth handlers need from user persistence.
type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	TouchLastLogin(ctx context.Context, id int64) error
	ClearLastLogin(ctx context.Context, id int64) error
}

// TaskStore is the owner-scoped task persistence contract.
type TaskStore interface {
	ListByOwner(ctx context.Context, ownerID int64, status string) ([]*domain.Task, error)
	Create(ctx context.Context, t *domain.Task) error
	GetOwned(ctx context.Context, id, ownerID int64) (*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
	ToggleCompleted(ctx context.Context, id, ownerID int64) (*domain.Task, error)
	Delete(ctx context.Context, id, ownerID int64) error
}

type Handler struct {
	DB     *pgxpool.Pool
	Users  UserStore
	Tasks  TaskStore
	Events *ws.Hub
}

func NewHandler(db *pgxpool.Pool, hub *ws.Hub) *Handler {
	return &Handler{
		DB:     db,
		Users:  repository.NewUserRepository(db),
		Tasks:  repository.NewTaskRepository(db),
		Events: hub,
	}
}

// serverError hides internals from the client; details go to the log only.
func serverError(c *gin.Context, op string, err error) {
	logger.Error(op+" failed", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
}
