package domain

import "time"

type Task struct {
	ID          int64      `db:"id" json:"id"`
	OwnerID     int64      `db:"owner_id" json:"ownerId"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	Completed   bool       `db:"completed" json:"completed"`
	DueDate     *time.Time `db:"due_date" json:"dueDate,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
}

// Status filter values accepted by task listing.
const (
	StatusAll       = "all"
	StatusPending   = "pending"
	StatusCompleted = "completed"
)
