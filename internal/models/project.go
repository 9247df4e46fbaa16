package models

import "time"

type ProjectType string
type ProjectStatus string

const (
	ProjectPool          ProjectType = "pool"
	ProjectSpa           ProjectType = "spa"
	ProjectPoolSpa       ProjectType = "pool_spa"
	ProjectOutdoorLiving ProjectType = "outdoor_living"
	ProjectRenovation    ProjectType = "renovation"

	StatusPlanning     ProjectStatus = "planning"
	StatusPermitting   ProjectStatus = "permitting"
	StatusExcavation   ProjectStatus = "excavation"
	StatusConstruction ProjectStatus = "construction"
	StatusFinishing    ProjectStatus = "finishing"
	StatusCompleted    ProjectStatus = "completed"
	StatusOnHold       ProjectStatus = "on_hold"
	StatusCancelled    ProjectStatus = "cancelled"
)

func (t ProjectType) Valid() bool {
	switch t {
	case ProjectPool, ProjectSpa, ProjectPoolSpa, ProjectOutdoorLiving, ProjectRenovation:
		return true
	}
	return false
}

func (s ProjectStatus) Valid() bool {
	switch s {
	case StatusPlanning, StatusPermitting, StatusExcavation, StatusConstruction,
		StatusFinishing, StatusCompleted, StatusOnHold, StatusCancelled:
		return true
	}
	return false
}

// NextPhase: следующая фаза стройки в штатном порядке; false для финальных и приостановленных.
func (s ProjectStatus) NextPhase() (ProjectStatus, bool) {
	switch s {
	case StatusPlanning:
		return StatusPermitting, true
	case StatusPermitting:
		return StatusExcavation, true
	case StatusExcavation:
		return StatusConstruction, true
	case StatusConstruction:
		return StatusFinishing, true
	case StatusFinishing:
		return StatusCompleted, true
	}
	return "", false
}

func (s ProjectStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Project struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	CustomerID uint      `gorm:"not null;index" json:"customerId"`
	Customer   *Customer `json:"customer,omitempty"`

	Name        string        `gorm:"size:255;not null" json:"name"`
	Type        ProjectType   `gorm:"type:varchar(30);not null" json:"type"`
	Status      ProjectStatus `gorm:"type:varchar(30);not null;index" json:"status"`
	Budget      int64         `json:"budget"` // в центах
	Description string        `gorm:"type:text" json:"description"`

	Address string `gorm:"size:255" json:"address"`
	City    string `gorm:"size:100" json:"city"`
	State   string `gorm:"size:50" json:"state"`
	ZipCode string `gorm:"size:20" json:"zipCode"`

	StartDate   *time.Time `json:"startDate"`
	CompletedAt *time.Time `json:"completedAt"`

	Todos []ProjectTodo `json:"todos,omitempty"`
}
