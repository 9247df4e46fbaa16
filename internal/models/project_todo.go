package models

import "time"

// ProjectTodo: шаг чек-листа стройки. CompletedAt заполнен тогда и только тогда, когда Completed.
type ProjectTodo struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	ProjectID   uint       `gorm:"not null;index:idx_todo_project_order,priority:1" json:"projectId"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Order       int        `gorm:"column:sort_order;not null;index:idx_todo_project_order,priority:2" json:"order"`
	Completed   bool       `gorm:"not null;default:false" json:"completed"`
	CompletedAt *time.Time `json:"completedAt"`
}

func (t *ProjectTodo) MarkCompleted(at time.Time) {
	t.Completed = true
	t.CompletedAt = &at
}

func (t *ProjectTodo) MarkPending() {
	t.Completed = false
	t.CompletedAt = nil
}
