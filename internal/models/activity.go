package models

import (
	"time"

	"gorm.io/datatypes"
)

type ActivityType string

const (
	ActivityProjectCreated  ActivityType = "project_created"
	ActivityProjectUpdated  ActivityType = "project_updated"
	ActivityTaskCompleted   ActivityType = "task_completed"
	ActivityTaskReopened    ActivityType = "task_reopened"
	ActivityStatusChange    ActivityType = "status_change"
	ActivityCustomerCreated ActivityType = "customer_created"
	ActivityCustomerUpdated ActivityType = "customer_updated"
)

func (t ActivityType) Valid() bool {
	switch t {
	case ActivityProjectCreated, ActivityProjectUpdated, ActivityTaskCompleted, ActivityTaskReopened,
		ActivityStatusChange, ActivityCustomerCreated, ActivityCustomerUpdated:
		return true
	}
	return false
}

// Activity: запись журнала, только на добавление.
type Activity struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`

	ProjectID  *uint `gorm:"index" json:"projectId"`
	CustomerID *uint `gorm:"index" json:"customerId"`
	UserID     uint  `json:"userId"` // SystemUserID для системных событий

	Type        ActivityType      `gorm:"type:varchar(30);not null" json:"type"`
	Description string            `gorm:"type:text" json:"description"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty"`
}
