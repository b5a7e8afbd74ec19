package models

import (
	"time"

	"github.com/Pavitraraman/oneflow/constants"
)

// Task is the unit the status workflow operates on. Status and
// StatusRequest are written only through the transition path in the task
// controller; everything else is ordinary CRUD.
type Task struct {
	ID          uint                 `gorm:"primaryKey" json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Status      constants.TaskStatus `gorm:"default:'TODO'" json:"status"`
	// StatusRequest holds a team member's pending target status. It is
	// always the single forward successor of Status at the time it was
	// recorded, and is cleared whenever a transition applies.
	StatusRequest *constants.TaskStatus  `json:"status_request"`
	Priority      constants.TaskPriority `gorm:"default:'MEDIUM'" json:"priority"`
	Deadline      *time.Time             `json:"deadline"`

	EstimatedHours float64 `gorm:"default:0" json:"estimated_hours"`
	// ActualHours is accumulated from timesheet entries; nothing else
	// writes it.
	ActualHours float64 `gorm:"default:0" json:"actual_hours"`

	ProjectID uint     `json:"project_id"`
	Project   *Project `json:"project,omitempty"`
	// ProjectName is filled on list reads when the caller asks for it;
	// it is not a column.
	ProjectName string `gorm:"-" json:"project_name,omitempty"`

	Assignees []User `gorm:"many2many:task_assignees" json:"assignees,omitempty"`

	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	Events    []TaskEvent `json:"events,omitempty"`
}
